package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/reel/internal/cache"
	"github.com/mmcdole/reel/internal/domain"
)

// FilterState is the observable state of a FilterStore, apart from the
// movie list itself.
type FilterState struct {
	Filter           domain.MovieFilter
	Options          domain.FilterOptions
	Categories       []domain.Category
	IsLoadingOptions bool
	OptionsError     string
}

// FilterStore is the filter/listing screen: one movie list driven by the
// full tuple of filter selections. Filter combinations are not memoized;
// every change reloads page 1.
type FilterStore struct {
	Movies *cache.PaginatedCache[domain.Movie]

	movies     domain.MovieRepository
	categories domain.CategoryRepository
	state      *cache.State[FilterState]
	logger     *slog.Logger
}

// NewFilterStore creates the store with an empty filter.
func NewFilterStore(movies domain.MovieRepository, categories domain.CategoryRepository, pageSize int, logger *slog.Logger) *FilterStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FilterStore{
		movies:     movies,
		categories: categories,
		state:      cache.NewState(FilterState{}),
		logger:     logger,
	}
	s.Movies = cache.NewPaginated[domain.Movie](CacheMovies, s.fetchMovies, pageSize, logger)
	return s
}

// fetchMovies reads the filter at call time.
func (s *FilterStore) fetchMovies(ctx context.Context, page, pageSize int) domain.Result[domain.PaginatedList[domain.Movie]] {
	filter := s.state.Get().Filter
	return s.movies.ListMovies(ctx, filter, domain.PageQuery{Page: page, PageSize: pageSize})
}

// Init loads the filter options, the categories and the first page of
// movies concurrently. Options are loaded here only and are not touched by
// filter changes.
func (s *FilterStore) Init(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return s.loadOptions(ctx) })
	g.Go(func() error { return s.Movies.Refresh(ctx) })
	return g.Wait()
}

func (s *FilterStore) loadOptions(ctx context.Context) error {
	started := s.state.CommitIf(
		func(st FilterState) bool { return !st.IsLoadingOptions },
		func(st *FilterState) { st.IsLoadingOptions = true },
	)
	if !started {
		return nil
	}

	var (
		opts domain.Result[domain.FilterOptions]
		cats domain.Result[[]domain.Category]
	)
	var g errgroup.Group
	g.Go(func() error {
		opts = s.movies.GetFilterOptions(ctx)
		return nil
	})
	g.Go(func() error {
		cats = s.categories.ListCategories(ctx)
		return nil
	})
	_ = g.Wait()

	f := opts.Failure()
	if f == nil {
		f = cats.Failure()
	}
	s.state.Commit(func(st *FilterState) {
		st.IsLoadingOptions = false
		if opts.IsSuccess() {
			st.Options = opts.Value()
		}
		if cats.IsSuccess() {
			st.Categories = cats.Value()
		}
		st.OptionsError = failureText(f)
	})

	if f != nil {
		s.logger.Error("failed to load filter options", "error", f)
		return f
	}
	s.logger.Debug("loaded filter options", "categories", len(cats.Value()))
	return nil
}

// SetSelectedCategoryID selects a category and reloads page 1.
func (s *FilterStore) SetSelectedCategoryID(ctx context.Context, id string) error {
	return s.setFilter(ctx, func(f *domain.MovieFilter) { f.CategoryID = id })
}

// SetSelectedArea selects an area and reloads page 1.
func (s *FilterStore) SetSelectedArea(ctx context.Context, area string) error {
	return s.setFilter(ctx, func(f *domain.MovieFilter) { f.Area = area })
}

// SetSelectedYear selects a year and reloads page 1.
func (s *FilterStore) SetSelectedYear(ctx context.Context, year string) error {
	return s.setFilter(ctx, func(f *domain.MovieFilter) { f.Year = year })
}

// SetSelectedGenre selects a genre and reloads page 1.
func (s *FilterStore) SetSelectedGenre(ctx context.Context, genre string) error {
	return s.setFilter(ctx, func(f *domain.MovieFilter) { f.Genre = genre })
}

// SetSelectedSort selects a sort order and reloads page 1.
func (s *FilterStore) SetSelectedSort(ctx context.Context, sort string) error {
	return s.setFilter(ctx, func(f *domain.MovieFilter) { f.Sort = sort })
}

// setFilter does not cancel or wait for earlier loads: when filters change
// quickly, the response that resolves last wins.
func (s *FilterStore) setFilter(ctx context.Context, mutate func(*domain.MovieFilter)) error {
	s.state.Commit(func(st *FilterState) { mutate(&st.Filter) })
	s.logger.Debug("filter changed", "filter", s.state.Get().Filter)
	return s.Movies.Load(ctx, 1)
}

// Refresh reloads page 1 of the current filter.
func (s *FilterStore) Refresh(ctx context.Context) error { return s.Movies.Refresh(ctx) }

// LoadMore appends the next page of the current filter.
func (s *FilterStore) LoadMore(ctx context.Context) error { return s.Movies.LoadMore(ctx) }

// MovieList returns the loaded movies.
func (s *FilterStore) MovieList() []domain.Movie { return s.Movies.Items() }

// Filter returns the current selections.
func (s *FilterStore) Filter() domain.MovieFilter { return s.state.Get().Filter }

// Snapshot returns the current state.
func (s *FilterStore) Snapshot() FilterState { return s.state.Get() }

// Subscribe registers fn for filter and option changes. Subscribe to
// Movies for list changes.
func (s *FilterStore) Subscribe(fn func(FilterState)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}
