package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/mocks"
)

func TestCategoryHomeStore(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	loads := make(map[string]int)
	repo := &mocks.MockCategoryRepository{
		ListCategoriesFn: func(ctx context.Context) domain.Result[[]domain.Category] {
			return domain.Ok([]domain.Category{{ID: "movies"}, {ID: "series"}})
		},
		GetCategoryHomeFn: func(ctx context.Context, id string) domain.Result[domain.CategoryHome] {
			mu.Lock()
			loads[id]++
			mu.Unlock()
			return domain.Ok(domain.CategoryHome{CategoryID: id, Banners: movies(id + "-banner")})
		},
	}
	s := NewCategoryHomeStore(repo, testLogger())

	require.NoError(t, s.Init(ctx))
	s.Homes.Wait()

	home, ok := s.Current().Get()
	require.True(t, ok)
	assert.Equal(t, "movies", home.CategoryID)

	s.SelectCategory(ctx, 1)
	s.SelectCategory(ctx, 0)
	s.SelectCategory(ctx, 1)
	s.SelectCategory(ctx, 7)
	s.Homes.Wait()

	assert.Equal(t, 1, s.Snapshot().SelectedIndex)
	assert.Equal(t, map[string]int{"movies": 1, "series": 1}, loads)
	home, ok = s.Current().Get()
	require.True(t, ok)
	assert.Equal(t, "series", home.CategoryID)

	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, 2, loads["series"])
}

func TestCategoryHomeStore_InitFailure(t *testing.T) {
	repo := &mocks.MockCategoryRepository{
		ListCategoriesFn: func(ctx context.Context) domain.Result[[]domain.Category] {
			return domain.Fail[[]domain.Category](domain.NetworkFailure("offline", nil))
		},
	}
	s := NewCategoryHomeStore(repo, testLogger())

	require.Error(t, s.Init(context.Background()))
	assert.Equal(t, "offline", s.Snapshot().ErrorMessage)
	assert.True(t, s.Current().IsAbsent())
	assert.Zero(t, repo.Count("GetCategoryHome"))
}

func TestGameStore(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	calls := make(map[domain.GameCategory][]int)
	repo := &mocks.MockGameRepository{
		ListGamesFn: func(ctx context.Context, c domain.GameCategory, q domain.PageQuery) domain.Result[domain.PaginatedList[domain.Game]] {
			mu.Lock()
			calls[c] = append(calls[c], q.Page)
			mu.Unlock()
			game := domain.Game{ID: string(c) + "-" + string(rune('0'+q.Page)), Category: c}
			return mocks.Page(q.Page, 2, game)
		},
	}
	s := NewGameStore(repo, 20, testLogger())
	assert.Equal(t, domain.GameCategoryAll, s.Selected())
	assert.Empty(t, s.Current().Items)

	s.SelectCategory(ctx, domain.GameCategoryAction)
	s.SelectCategory(ctx, domain.GameCategoryPuzzle)
	s.SelectCategory(ctx, domain.GameCategoryAction)
	s.Lanes.Wait()

	assert.Equal(t, domain.GameCategoryAction, s.Selected())
	assert.Equal(t, 2, repo.Count("ListGames"))

	require.NoError(t, s.LoadMore(ctx))
	require.NoError(t, s.LoadMore(ctx))

	assert.Equal(t, []int{1, 2}, calls[domain.GameCategoryAction])
	assert.Equal(t, []int{1}, calls[domain.GameCategoryPuzzle])
	assert.Len(t, s.Current().Items, 2)

	require.NoError(t, s.Refresh(ctx))
	assert.Len(t, s.Current().Items, 1, "refresh replaces")
}

func TestDiscoveryStore(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.MockDiscoveryRepository{
		ListTopicsFn: func(ctx context.Context, q domain.PageQuery) domain.Result[domain.PaginatedList[domain.Topic]] {
			return mocks.Page(1, 1, domain.Topic{ID: "t1"})
		},
		ListActorsFn: func(ctx context.Context, q domain.PageQuery) domain.Result[domain.PaginatedList[domain.Actor]] {
			return mocks.Page(q.Page, 2, domain.Actor{ID: "a" + string(rune('0'+q.Page))})
		},
	}
	s := NewDiscoveryStore(repo, repo, 20, testLogger())

	require.NoError(t, s.Init(ctx))
	assert.Len(t, s.Topics.Items(), 1)
	assert.Zero(t, repo.Count("ListActors"), "inactive tab is not loaded")

	require.NoError(t, s.SetTab(ctx, TabActors))
	require.NoError(t, s.SetTab(ctx, TabTopics))
	require.NoError(t, s.SetTab(ctx, TabActors))
	assert.Equal(t, 1, repo.Count("ListTopics"))
	assert.Equal(t, 1, repo.Count("ListActors"))

	require.NoError(t, s.LoadMore(ctx))
	assert.Len(t, s.Actors.Items(), 2)
	assert.Len(t, s.Topics.Items(), 1)
	assert.Equal(t, "actors", s.Tab().String())
}

func TestDiscoveryStore_FailedTabRetries(t *testing.T) {
	ctx := context.Background()
	fail := true
	repo := &mocks.MockDiscoveryRepository{
		ListTopicsFn: func(ctx context.Context, q domain.PageQuery) domain.Result[domain.PaginatedList[domain.Topic]] {
			if fail {
				return domain.Fail[domain.PaginatedList[domain.Topic]](domain.ServerFailure("down", nil))
			}
			return mocks.Page(1, 1, domain.Topic{ID: "t1"})
		},
	}
	s := NewDiscoveryStore(repo, repo, 20, testLogger())

	require.Error(t, s.Init(ctx))
	assert.Equal(t, "down", s.Topics.Snapshot().ErrorMessage)

	fail = false
	require.NoError(t, s.SetTab(ctx, TabTopics))
	assert.Len(t, s.Topics.Items(), 1)
	assert.Equal(t, 2, repo.Count("ListTopics"))
}

func TestCloneFlags(t *testing.T) {
	empty := cloneFlags[string](nil)
	require.NotNil(t, empty)
	empty["a"] = true

	src := map[string]bool{"a": true}
	out := cloneFlags(src)
	out["b"] = true
	delete(out, "a")
	assert.Equal(t, map[string]bool{"a": true}, src, "source untouched")
}
