package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmcdole/reel/internal/cache"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/search"
)

// maxRecentKeywords caps the recent keyword list.
const maxRecentKeywords = 10

// SearchState is the observable state of a SearchStore apart from results.
type SearchState struct {
	Keyword     string
	Recent      []string // most recent first
	HotKeywords []string
}

// SearchStore runs keyword searches and remembers recent keywords.
type SearchStore struct {
	Results *cache.PaginatedCache[domain.Movie]

	repo   domain.MovieRepository
	state  *cache.State[SearchState]
	logger *slog.Logger
}

// NewSearchStore creates an empty store.
func NewSearchStore(repo domain.MovieRepository, pageSize int, logger *slog.Logger) *SearchStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SearchStore{
		repo:   repo,
		state:  cache.NewState(SearchState{}),
		logger: logger,
	}
	s.Results = cache.NewPaginated[domain.Movie](CacheSearch, s.fetch, pageSize, logger)
	return s
}

func (s *SearchStore) fetch(ctx context.Context, page, pageSize int) domain.Result[domain.PaginatedList[domain.Movie]] {
	return s.repo.SearchMovies(ctx, s.state.Get().Keyword, domain.PageQuery{Page: page, PageSize: pageSize})
}

// Search replaces the results with page 1 for keyword and records it as
// the most recent keyword. A blank keyword clears the results.
func (s *SearchStore) Search(ctx context.Context, keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		s.state.Commit(func(st *SearchState) { st.Keyword = "" })
		s.Results.Reset()
		return nil
	}

	s.state.Commit(func(st *SearchState) {
		st.Keyword = keyword
		st.Recent = remember(st.Recent, keyword)
	})
	s.logger.Debug("searching", "keyword", keyword)
	return s.Results.Load(ctx, 1)
}

// remember puts keyword first, dropping case-insensitive duplicates.
func remember(recent []string, keyword string) []string {
	out := make([]string, 0, min(len(recent)+1, maxRecentKeywords))
	out = append(out, keyword)
	for _, kw := range recent {
		if len(out) == maxRecentKeywords {
			break
		}
		if !strings.EqualFold(kw, keyword) {
			out = append(out, kw)
		}
	}
	return out
}

// LoadMore appends the next page of results.
func (s *SearchStore) LoadMore(ctx context.Context) error { return s.Results.LoadMore(ctx) }

// SetHotKeywords sets the trending keywords offered as suggestions.
func (s *SearchStore) SetHotKeywords(keywords []string) {
	s.state.Commit(func(st *SearchState) { st.HotKeywords = keywords })
}

// ClearRecent forgets the recent keywords.
func (s *SearchStore) ClearRecent() {
	s.state.Commit(func(st *SearchState) { st.Recent = nil })
}

// Suggest ranks recent keywords, hot keywords and loaded titles against query.
func (s *SearchStore) Suggest(query string, limit int) []search.Suggestion {
	st := s.state.Get()
	items := s.Results.Items()
	titles := make([]string, 0, len(st.HotKeywords)+len(items))
	titles = append(titles, st.HotKeywords...)
	for _, m := range items {
		titles = append(titles, m.Title)
	}
	return search.Suggest(query, st.Recent, titles, limit)
}

// Snapshot returns the current state.
func (s *SearchStore) Snapshot() SearchState { return s.state.Get() }

// Subscribe registers fn for keyword changes.
func (s *SearchStore) Subscribe(fn func(SearchState)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}
