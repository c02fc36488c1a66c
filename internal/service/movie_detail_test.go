package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/mocks"
)

type detailFixture struct {
	movies    *mocks.MockMovieRepository
	relations *mocks.MockRelationRepository
	comments  *mocks.MockCommentRepository
	store     *MovieDetailStore
}

func newDetailFixture() *detailFixture {
	f := &detailFixture{
		movies: &mocks.MockMovieRepository{
			GetMovieDetailFn: func(ctx context.Context, id string) domain.Result[domain.MovieDetail] {
				return domain.Ok(domain.MovieDetail{Movie: domain.Movie{ID: id}, IsFavorited: false, IsSubscribed: true, CommentCount: 1})
			},
			ListRecommendationsFn: func(ctx context.Context, id string, q domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
				if q.Page == 1 {
					return moviePage(1, 2, id+"-r1")
				}
				return moviePage(2, 2, id+"-r2")
			},
		},
		relations: &mocks.MockRelationRepository{},
		comments: &mocks.MockCommentRepository{
			ListCommentsFn: func(ctx context.Context, id string, q domain.PageQuery) domain.Result[domain.PaginatedList[domain.Comment]] {
				return mocks.Page(1, 1, domain.Comment{ID: "c1", MovieID: id})
			},
		},
	}
	f.store = NewMovieDetailStore(f.movies, f.relations, f.relations, f.comments, 20, testLogger())
	return f
}

func commentIDs(s *MovieDetailStore) []string {
	var out []string
	for _, c := range s.Comments.Items() {
		out = append(out, c.ID)
	}
	return out
}

func TestMovieDetailStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("loads detail then both lists", func(t *testing.T) {
		f := newDetailFixture()

		require.NoError(t, f.store.Load(ctx, "m1"))

		st := f.store.Snapshot()
		assert.True(t, st.HasDetail)
		assert.Equal(t, "m1", st.Detail.Movie.ID)
		assert.False(t, f.store.Favorite.Active())
		assert.True(t, f.store.Subscription.Active())
		assert.Equal(t, []string{"m1-r1"}, movieIDs(f.store.Recommendations.Items()))
		assert.Equal(t, []string{"c1"}, commentIDs(f.store))

		require.NoError(t, f.store.LoadMoreRecommendations(ctx))
		assert.Equal(t, []string{"m1-r1", "m1-r2"}, movieIDs(f.store.Recommendations.Items()))
		require.NoError(t, f.store.LoadMoreComments(ctx))
		assert.Equal(t, 1, f.comments.Count("ListComments"))
	})

	t.Run("detail failure skips the lists", func(t *testing.T) {
		f := newDetailFixture()
		f.movies.GetMovieDetailFn = func(ctx context.Context, id string) domain.Result[domain.MovieDetail] {
			return domain.Fail[domain.MovieDetail](domain.APIFailure("NOT_FOUND", "content not found"))
		}

		err := f.store.Load(ctx, "gone")

		require.Error(t, err)
		assert.Equal(t, "content not found", f.store.Snapshot().ErrorMessage)
		assert.False(t, f.store.Snapshot().IsLoading)
		assert.Zero(t, f.movies.Count("ListRecommendations"))
		assert.NoError(t, f.store.ToggleFavorite(ctx), "toggle without a loaded detail is a no-op")
		assert.Zero(t, f.relations.Count("AddFavorite"))
	})

	t.Run("second load while in flight is a no-op", func(t *testing.T) {
		f := newDetailFixture()
		gate := make(chan struct{})
		entered := make(chan struct{}, 1)
		f.movies.GetMovieDetailFn = func(ctx context.Context, id string) domain.Result[domain.MovieDetail] {
			entered <- struct{}{}
			<-gate
			return domain.Ok(domain.MovieDetail{Movie: domain.Movie{ID: id}})
		}

		done := make(chan error, 1)
		go func() { done <- f.store.Load(ctx, "m1") }()
		<-entered

		assert.True(t, f.store.Snapshot().IsLoading)
		assert.NoError(t, f.store.Load(ctx, "m2"))

		close(gate)
		require.NoError(t, <-done)
		assert.Equal(t, 1, f.movies.Count("GetMovieDetail"))
		assert.Equal(t, "m1", f.store.MovieID())
	})

	t.Run("switching movies resets the lists", func(t *testing.T) {
		f := newDetailFixture()
		require.NoError(t, f.store.Load(ctx, "m1"))
		require.NoError(t, f.store.LoadMoreRecommendations(ctx))

		require.NoError(t, f.store.Load(ctx, "m2"))

		assert.Equal(t, []string{"m2-r1"}, movieIDs(f.store.Recommendations.Items()))
		assert.Equal(t, "m2", f.store.Favorite.Snapshot().Key)
	})
}

func TestMovieDetailStore_Toggles(t *testing.T) {
	ctx := context.Background()

	t.Run("favorite success updates the detail", func(t *testing.T) {
		f := newDetailFixture()
		require.NoError(t, f.store.Load(ctx, "m1"))

		require.NoError(t, f.store.ToggleFavorite(ctx))

		assert.True(t, f.store.Favorite.Active())
		assert.True(t, f.store.Snapshot().Detail.IsFavorited)
		assert.Equal(t, 1, f.relations.Count("AddFavorite"))
	})

	t.Run("favorite failure rolls back", func(t *testing.T) {
		f := newDetailFixture()
		f.relations.AddFavoriteFn = func(ctx context.Context, id string) domain.Result[domain.Unit] {
			return domain.Fail[domain.Unit](domain.NetworkFailure("network down", nil))
		}
		require.NoError(t, f.store.Load(ctx, "m1"))

		err := f.store.ToggleFavorite(ctx)

		require.Error(t, err)
		assert.Equal(t, "network down", domain.UserMessage(err))
		assert.False(t, f.store.Favorite.Active())
		assert.False(t, f.store.Snapshot().Detail.IsFavorited)
	})

	t.Run("subscribe calls unsubscribe when already subscribed", func(t *testing.T) {
		f := newDetailFixture()
		require.NoError(t, f.store.Load(ctx, "m1"))

		require.NoError(t, f.store.ToggleSubscribe(ctx))

		assert.Equal(t, 1, f.relations.Count("Unsubscribe"))
		assert.Zero(t, f.relations.Count("Subscribe"))
		assert.False(t, f.store.Snapshot().Detail.IsSubscribed)
	})

	t.Run("double favorite makes one call", func(t *testing.T) {
		f := newDetailFixture()
		gate := make(chan struct{})
		entered := make(chan struct{}, 1)
		f.relations.AddFavoriteFn = func(ctx context.Context, id string) domain.Result[domain.Unit] {
			entered <- struct{}{}
			<-gate
			return domain.Ok(domain.Unit{})
		}
		require.NoError(t, f.store.Load(ctx, "m1"))

		done := make(chan error, 1)
		go func() { done <- f.store.ToggleFavorite(ctx) }()
		<-entered
		assert.True(t, f.store.Favorite.InFlight())
		assert.NoError(t, f.store.ToggleFavorite(ctx))

		close(gate)
		require.NoError(t, <-done)
		assert.Equal(t, 1, f.relations.Count("AddFavorite"))
		assert.True(t, f.store.Snapshot().Detail.IsFavorited)
	})
}

func TestMovieDetailStore_SubmitComment(t *testing.T) {
	ctx := context.Background()

	t.Run("success prepends", func(t *testing.T) {
		f := newDetailFixture()
		require.NoError(t, f.store.Load(ctx, "m1"))

		require.NoError(t, f.store.SubmitComment(ctx, "  great film  "))

		assert.Equal(t, []string{"c-new", "c1"}, commentIDs(f.store))
		assert.Equal(t, "great film", f.store.Comments.Items()[0].Body)
		assert.Equal(t, 2, f.store.Snapshot().Detail.CommentCount)
		assert.Equal(t, 2, f.store.Comments.Snapshot().Paginator.Total)
	})

	t.Run("blank body is rejected without a network call", func(t *testing.T) {
		f := newDetailFixture()
		require.NoError(t, f.store.Load(ctx, "m1"))

		err := f.store.SubmitComment(ctx, "   ")

		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrEmptyComment))
		assert.Equal(t, domain.KindValidation, domain.AsFailure(err).Kind)
		assert.Zero(t, f.comments.Count("AddComment"))
	})

	t.Run("failure keeps the list", func(t *testing.T) {
		f := newDetailFixture()
		f.comments.AddCommentFn = func(ctx context.Context, id, body string) domain.Result[domain.Comment] {
			return domain.Fail[domain.Comment](domain.PermissionFailure("comments are closed"))
		}
		require.NoError(t, f.store.Load(ctx, "m1"))

		err := f.store.SubmitComment(ctx, "hello")

		require.Error(t, err)
		assert.Equal(t, "comments are closed", f.store.Snapshot().CommentError)
		assert.Equal(t, []string{"c1"}, commentIDs(f.store))
		assert.False(t, f.store.Snapshot().IsSubmittingComment)
	})

	t.Run("second submit while in flight is a no-op", func(t *testing.T) {
		f := newDetailFixture()
		gate := make(chan struct{})
		entered := make(chan struct{}, 1)
		f.comments.AddCommentFn = func(ctx context.Context, id, body string) domain.Result[domain.Comment] {
			entered <- struct{}{}
			<-gate
			return domain.Ok(domain.Comment{ID: "c2", MovieID: id, Body: body})
		}
		require.NoError(t, f.store.Load(ctx, "m1"))

		done := make(chan error, 1)
		go func() { done <- f.store.SubmitComment(ctx, "first") }()
		<-entered
		assert.True(t, f.store.Snapshot().IsSubmittingComment)
		posted, err := f.store.PostComment(ctx, "second")
		assert.NoError(t, err)
		assert.False(t, posted, "guarded submit reports nothing posted")

		close(gate)
		require.NoError(t, <-done)
		assert.Equal(t, 1, f.comments.Count("AddComment"))
		assert.Equal(t, []string{"c2", "c1"}, commentIDs(f.store))
	})

	t.Run("nothing loaded", func(t *testing.T) {
		f := newDetailFixture()
		assert.NoError(t, f.store.SubmitComment(ctx, "hello"))
		assert.Zero(t, f.comments.Count("AddComment"))
	})
}
