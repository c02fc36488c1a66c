package cache

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/mmcdole/reel/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type item struct{ ID string }

func items(ids ...string) []item {
	out := make([]item, len(ids))
	for i, id := range ids {
		out[i] = item{ID: id}
	}
	return out
}

func page(current, last int, ids ...string) domain.PaginatedList[item] {
	return domain.PaginatedList[item]{
		Items: items(ids...),
		Paginator: domain.PaginatorInfo{
			CurrentPage:  current,
			LastPage:     last,
			HasMorePages: current < last,
			Total:        len(ids),
		},
	}
}

// scriptedFetch serves queued results and records requested pages.
type scriptedFetch struct {
	mu      sync.Mutex
	results []domain.Result[domain.PaginatedList[item]]
	pages   []int

	// gate, when set, holds every call until it is closed; entered
	// receives one value per call before it blocks.
	gate    chan struct{}
	entered chan struct{}
}

func (s *scriptedFetch) push(r domain.Result[domain.PaginatedList[item]]) *scriptedFetch {
	s.results = append(s.results, r)
	return s
}

func (s *scriptedFetch) fetch(ctx context.Context, p, size int) domain.Result[domain.PaginatedList[item]] {
	s.mu.Lock()
	s.pages = append(s.pages, p)
	var r domain.Result[domain.PaginatedList[item]]
	if len(s.results) > 0 {
		r = s.results[0]
		s.results = s.results[1:]
	} else {
		r = domain.Ok(domain.PaginatedList[item]{Paginator: domain.DefaultPaginator()})
	}
	gate, entered := s.gate, s.entered
	s.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return r
}

func (s *scriptedFetch) calls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.pages...)
}

func ids(in []item) []string {
	out := make([]string, len(in))
	for i, it := range in {
		out[i] = it.ID
	}
	return out
}
