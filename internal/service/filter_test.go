package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/mocks"
)

// recordingMovies records every filter ListMovies is called with.
type recordingMovies struct {
	*mocks.MockMovieRepository

	mu      sync.Mutex
	filters []domain.MovieFilter
}

func newRecordingMovies(respond func(domain.MovieFilter, domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]]) *recordingMovies {
	r := &recordingMovies{MockMovieRepository: &mocks.MockMovieRepository{}}
	r.ListMoviesFn = func(ctx context.Context, filter domain.MovieFilter, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
		r.mu.Lock()
		r.filters = append(r.filters, filter)
		r.mu.Unlock()
		return respond(filter, page)
	}
	return r
}

func TestFilterStore_Init(t *testing.T) {
	repo := newRecordingMovies(func(domain.MovieFilter, domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
		return moviePage(1, 3, "m1", "m2")
	})
	repo.GetFilterOptionsFn = func(ctx context.Context) domain.Result[domain.FilterOptions] {
		return domain.Ok(domain.FilterOptions{Areas: []string{"CN", "US"}, Years: []string{"2024"}})
	}
	cats := &mocks.MockCategoryRepository{
		ListCategoriesFn: func(ctx context.Context) domain.Result[[]domain.Category] {
			return domain.Ok([]domain.Category{{ID: "c1", Name: "Movies"}})
		},
	}
	s := NewFilterStore(repo, cats, 20, testLogger())

	require.NoError(t, s.Init(context.Background()))

	st := s.Snapshot()
	assert.Equal(t, []string{"CN", "US"}, st.Options.Areas)
	assert.Len(t, st.Categories, 1)
	assert.False(t, st.IsLoadingOptions)
	assert.Equal(t, []string{"m1", "m2"}, movieIDs(s.MovieList()))
	assert.True(t, s.Movies.Snapshot().Paginator.HasMorePages)
}

func TestFilterStore_OptionsFailureDoesNotBlockMovies(t *testing.T) {
	repo := newRecordingMovies(func(domain.MovieFilter, domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
		return moviePage(1, 1, "m1")
	})
	repo.GetFilterOptionsFn = func(ctx context.Context) domain.Result[domain.FilterOptions] {
		return domain.Fail[domain.FilterOptions](domain.ServerFailure("options unavailable", nil))
	}
	s := NewFilterStore(repo, &mocks.MockCategoryRepository{}, 20, testLogger())

	err := s.Init(context.Background())

	require.Error(t, err)
	assert.Equal(t, "options unavailable", s.Snapshot().OptionsError)
	assert.Equal(t, []string{"m1"}, movieIDs(s.MovieList()))
}

func TestFilterStore_SetSelectedAreaReplaces(t *testing.T) {
	ctx := context.Background()
	repo := newRecordingMovies(func(f domain.MovieFilter, _ domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
		if f.Area == "US" {
			return moviePage(1, 1, "m2")
		}
		return moviePage(1, 1, "m1")
	})
	s := NewFilterStore(repo, &mocks.MockCategoryRepository{}, 20, testLogger())
	require.NoError(t, s.SetSelectedArea(ctx, "CN"))
	require.Equal(t, []string{"m1"}, movieIDs(s.MovieList()))
	before := repo.Count("ListMovies")

	require.NoError(t, s.SetSelectedArea(ctx, "US"))

	assert.Equal(t, []string{"m2"}, movieIDs(s.MovieList()))
	assert.Equal(t, before+1, repo.Count("ListMovies"))
	assert.Equal(t, "US", repo.filters[len(repo.filters)-1].Area)
	assert.Equal(t, "US", s.Filter().Area)
}

func TestFilterStore_SettersKeepOtherSelections(t *testing.T) {
	ctx := context.Background()
	repo := newRecordingMovies(func(domain.MovieFilter, domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
		return moviePage(1, 1)
	})
	s := NewFilterStore(repo, &mocks.MockCategoryRepository{}, 20, testLogger())

	require.NoError(t, s.SetSelectedCategoryID(ctx, "c2"))
	require.NoError(t, s.SetSelectedYear(ctx, "2023"))
	require.NoError(t, s.SetSelectedGenre(ctx, "drama"))
	require.NoError(t, s.SetSelectedSort(ctx, "score"))

	want := domain.MovieFilter{CategoryID: "c2", Year: "2023", Genre: "drama", Sort: "score"}
	assert.Equal(t, want, s.Filter())
	assert.Equal(t, want, repo.filters[len(repo.filters)-1])
	assert.Equal(t, 4, repo.Count("ListMovies"))
	assert.True(t, s.Movies.Snapshot().IsEmpty())
}

func TestFilterStore_LoadMoreExhausted(t *testing.T) {
	ctx := context.Background()
	repo := newRecordingMovies(func(domain.MovieFilter, domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
		return domain.Ok(domain.PaginatedList[domain.Movie]{
			Items:     movies("m1", "m2", "m3", "m4", "m5"),
			Paginator: domain.PaginatorInfo{CurrentPage: 1, LastPage: 1, HasMorePages: false, Total: 5},
		})
	})
	s := NewFilterStore(repo, &mocks.MockCategoryRepository{}, 20, testLogger())
	require.NoError(t, s.Refresh(ctx))

	require.NoError(t, s.LoadMore(ctx))

	assert.Equal(t, 1, repo.Count("ListMovies"))
	assert.Len(t, s.MovieList(), 5)
}

func TestFilterStore_LoadMoreAppendsWithFilter(t *testing.T) {
	ctx := context.Background()
	var pages []int
	repo := newRecordingMovies(func(_ domain.MovieFilter, q domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
		pages = append(pages, q.Page)
		if q.Page == 1 {
			return moviePage(1, 2, "m1")
		}
		return moviePage(2, 2, "m2")
	})
	s := NewFilterStore(repo, &mocks.MockCategoryRepository{}, 20, testLogger())
	require.NoError(t, s.SetSelectedArea(ctx, "JP"))

	require.NoError(t, s.LoadMore(ctx))

	assert.Equal(t, []int{1, 2}, pages)
	assert.Equal(t, []string{"m1", "m2"}, movieIDs(s.MovieList()))
	assert.Equal(t, "JP", repo.filters[1].Area)
}

func TestFilterStore_LastResolvedWins(t *testing.T) {
	ctx := context.Background()
	gates := map[string]chan struct{}{"c1": make(chan struct{}), "c2": make(chan struct{})}
	called := make(chan string, 2)
	repo := newRecordingMovies(func(f domain.MovieFilter, _ domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
		called <- f.CategoryID
		<-gates[f.CategoryID]
		return moviePage(1, 1, "from-"+f.CategoryID)
	})
	s := NewFilterStore(repo, &mocks.MockCategoryRepository{}, 20, testLogger())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.SetSelectedCategoryID(ctx, "c1"))
	}()
	require.Equal(t, "c1", <-called)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.SetSelectedCategoryID(ctx, "c2"))
	}()
	require.Equal(t, "c2", <-called)

	// both requests are in flight; resolve them in reverse order
	close(gates["c2"])
	require.Eventually(t, func() bool {
		ids := movieIDs(s.MovieList())
		return len(ids) == 1 && ids[0] == "from-c2"
	}, time.Second, time.Millisecond)
	close(gates["c1"])
	wg.Wait()

	assert.Equal(t, 2, repo.Count("ListMovies"))
	assert.Equal(t, []string{"from-c1"}, movieIDs(s.MovieList()))
	assert.Equal(t, "c2", s.Filter().CategoryID)
	assert.False(t, s.Movies.Snapshot().IsLoading)
}
