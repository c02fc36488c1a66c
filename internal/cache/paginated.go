package cache

import (
	"context"
	"log/slog"
	"slices"

	"github.com/mmcdole/reel/internal/domain"
)

// DefaultPageSize is used when a cache is built with a non-positive page size.
const DefaultPageSize = 20

// FetchPage loads one page. Filter parameters are captured by the closure.
type FetchPage[T any] func(ctx context.Context, page, pageSize int) domain.Result[domain.PaginatedList[T]]

// Page is the observable state of a PaginatedCache.
type Page[T any] struct {
	Items         []T
	Paginator     domain.PaginatorInfo
	IsLoading     bool
	IsLoadingMore bool
	IsRefreshing  bool
	ErrorMessage  string
	Loaded        bool // at least one page arrived since the last reset

	pending     int // first-page loads in flight
	pendingMore int // later-page loads in flight
	epoch       int // bumped by Reset; results of older loads are dropped
}

// Busy reports whether any load of this list is in flight.
func (p Page[T]) Busy() bool {
	return p.IsLoading || p.IsLoadingMore || p.IsRefreshing
}

// IsEmpty reports whether a load finished and produced no items.
func (p Page[T]) IsEmpty() bool {
	return p.Loaded && len(p.Items) == 0
}

type loadKind int

const (
	kindLoad loadKind = iota
	kindRefresh
	kindMore
)

// PaginatedCache holds one list and its paginator.
type PaginatedCache[T any] struct {
	name     string
	fetch    FetchPage[T]
	pageSize int
	state    *State[Page[T]]
	logger   *slog.Logger
}

// NewPaginated creates an empty cache. name is used only in log lines.
func NewPaginated[T any](name string, fetch FetchPage[T], pageSize int, logger *slog.Logger) *PaginatedCache[T] {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &PaginatedCache[T]{
		name:     name,
		fetch:    fetch,
		pageSize: pageSize,
		state:    NewState(Page[T]{Paginator: domain.DefaultPaginator()}),
		logger:   logger,
	}
}

// Load fetches page. Page 1 replaces the items, later pages append to them.
// Failures leave items and paginator untouched and set ErrorMessage.
// Load is not guarded: concurrent calls all reach the repository and the
// last one to resolve wins.
func (c *PaginatedCache[T]) Load(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	_, err := c.run(ctx, kindLoad, page)
	return err
}

// Refresh reloads page 1. A refresh issued while another is in flight is a
// no-op and returns nil.
func (c *PaginatedCache[T]) Refresh(ctx context.Context) error {
	_, err := c.run(ctx, kindRefresh, 1)
	return err
}

// LoadMore appends the next page. It does nothing when the paginator reports
// no more pages or when any load is already in flight.
func (c *PaginatedCache[T]) LoadMore(ctx context.Context) error {
	_, err := c.run(ctx, kindMore, 0)
	return err
}

// run returns whether the load was started, and the failure if it failed.
func (c *PaginatedCache[T]) run(ctx context.Context, kind loadKind, page int) (bool, error) {
	var epoch int
	started := c.state.CommitIf(
		func(p Page[T]) bool { return canStart(p, kind) },
		func(p *Page[T]) {
			if kind == kindMore {
				page = p.Paginator.CurrentPage + 1
			}
			epoch = p.epoch
			begin(p, kind, page)
		},
	)
	if !started {
		c.logger.Debug("skipped load", "list", c.name, "reason", "guarded")
		return false, nil
	}

	res := c.fetch(ctx, page, c.pageSize)

	c.state.Commit(func(p *Page[T]) {
		if p.epoch == epoch {
			apply(p, page, res)
		}
		end(p, kind, page)
	})

	if f := res.Failure(); f != nil {
		c.logger.Error("failed to load page", "list", c.name, "page", page, "error", f)
		return true, f
	}
	c.logger.Debug("loaded page", "list", c.name, "page", page, "count", len(res.Value().Items))
	return true, nil
}

func canStart[T any](p Page[T], kind loadKind) bool {
	switch kind {
	case kindRefresh:
		return !p.IsRefreshing
	case kindMore:
		return p.Paginator.HasMorePages && !p.Busy()
	default:
		return true
	}
}

func begin[T any](p *Page[T], kind loadKind, page int) {
	if kind == kindRefresh {
		p.IsRefreshing = true
	}
	if page == 1 {
		p.pending++
		p.IsLoading = true
	} else {
		p.pendingMore++
		p.IsLoadingMore = true
	}
}

func end[T any](p *Page[T], kind loadKind, page int) {
	if kind == kindRefresh {
		p.IsRefreshing = false
	}
	if page == 1 {
		p.pending--
		p.IsLoading = p.pending > 0
	} else {
		p.pendingMore--
		p.IsLoadingMore = p.pendingMore > 0
	}
}

func apply[T any](p *Page[T], page int, res domain.Result[domain.PaginatedList[T]]) {
	domain.Fold(res,
		func(f *domain.Failure) struct{} {
			p.ErrorMessage = f.UserMessage()
			return struct{}{}
		},
		func(list domain.PaginatedList[T]) struct{} {
			if page == 1 {
				p.Items = slices.Clone(list.Items)
			} else {
				p.Items = slices.Concat(p.Items, list.Items)
			}
			p.Paginator = list.Paginator
			p.ErrorMessage = ""
			p.Loaded = true
			return struct{}{}
		},
	)
}

// Snapshot returns the current state.
func (c *PaginatedCache[T]) Snapshot() Page[T] { return c.state.Get() }

// Items returns the cached items.
func (c *PaginatedCache[T]) Items() []T { return c.state.Get().Items }

// Subscribe registers fn for every committed change.
func (c *PaginatedCache[T]) Subscribe(fn func(Page[T])) (unsubscribe func()) {
	return c.state.Subscribe(fn)
}

// Prepend inserts item at the head, e.g. a comment the viewer just posted.
func (c *PaginatedCache[T]) Prepend(item T) {
	c.state.Commit(func(p *Page[T]) {
		p.Items = slices.Concat([]T{item}, p.Items)
		p.Paginator.Total++
	})
}

// MapItems replaces every item with fn(item) in one commit.
func (c *PaginatedCache[T]) MapItems(fn func(T) T) {
	c.state.Commit(func(p *Page[T]) {
		next := make([]T, len(p.Items))
		for i, it := range p.Items {
			next[i] = fn(it)
		}
		p.Items = next
	})
}

// Reset empties the cache. Loads already in flight still clear their flags
// when they resolve, but their results are discarded.
func (c *PaginatedCache[T]) Reset() {
	c.state.Commit(func(p *Page[T]) {
		p.Items = nil
		p.Paginator = domain.DefaultPaginator()
		p.ErrorMessage = ""
		p.Loaded = false
		p.epoch++
	})
}
