package service

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/reel/internal/cache"
	"github.com/mmcdole/reel/internal/domain"
)

// DetailState is the observable state of a MovieDetailStore.
type DetailState struct {
	MovieID             string
	Detail              domain.MovieDetail
	HasDetail           bool
	IsLoading           bool
	IsSubmittingComment bool
	ErrorMessage        string
	CommentError        string
}

// MovieDetailStore backs the detail screen: the detail aggregate, the
// favorite and subscribe toggles, and the recommendation and comment lists.
type MovieDetailStore struct {
	Recommendations *cache.PaginatedCache[domain.Movie]
	Comments        *cache.PaginatedCache[domain.Comment]
	Favorite        *cache.Toggle
	Subscription    *cache.Toggle

	movies   domain.MovieRepository
	comments domain.CommentRepository
	state    *cache.State[DetailState]
	logger   *slog.Logger
}

// NewMovieDetailStore creates an empty store.
func NewMovieDetailStore(
	movies domain.MovieRepository,
	favorites domain.FavoriteRepository,
	subscriptions domain.SubscriptionRepository,
	comments domain.CommentRepository,
	pageSize int,
	logger *slog.Logger,
) *MovieDetailStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &MovieDetailStore{
		Favorite:     cache.NewToggle("favorite", favorites.AddFavorite, favorites.RemoveFavorite, logger),
		Subscription: cache.NewToggle("subscribe", subscriptions.Subscribe, subscriptions.Unsubscribe, logger),
		movies:       movies,
		comments:     comments,
		state:        cache.NewState(DetailState{}),
		logger:       logger,
	}
	s.Recommendations = cache.NewPaginated[domain.Movie](CacheRecommendations, s.fetchRecommendations, pageSize, logger)
	s.Comments = cache.NewPaginated[domain.Comment](CacheComments, s.fetchComments, pageSize, logger)
	return s
}

func (s *MovieDetailStore) fetchRecommendations(ctx context.Context, page, pageSize int) domain.Result[domain.PaginatedList[domain.Movie]] {
	return s.movies.ListRecommendations(ctx, s.MovieID(), domain.PageQuery{Page: page, PageSize: pageSize})
}

func (s *MovieDetailStore) fetchComments(ctx context.Context, page, pageSize int) domain.Result[domain.PaginatedList[domain.Comment]] {
	return s.comments.ListComments(ctx, s.MovieID(), domain.PageQuery{Page: page, PageSize: pageSize})
}

// Load shows movie id: the detail first, then recommendations and comments
// concurrently. A Load issued while another is in flight is a no-op.
// Failures of the two lists stay in their caches; only a detail failure
// is returned.
func (s *MovieDetailStore) Load(ctx context.Context, id string) error {
	var switched bool
	started := s.state.CommitIf(
		func(st DetailState) bool { return !st.IsLoading },
		func(st *DetailState) {
			switched = st.MovieID != id
			st.MovieID = id
			st.IsLoading = true
			st.ErrorMessage = ""
			if switched {
				st.Detail = domain.MovieDetail{}
				st.HasDetail = false
				st.CommentError = ""
			}
		},
	)
	if !started {
		s.logger.Debug("skipped detail load", "movie", id, "reason", "load in flight")
		return nil
	}
	if switched {
		s.Recommendations.Reset()
		s.Comments.Reset()
		s.Favorite.Reset("", false)
		s.Subscription.Reset("", false)
	}

	res := s.movies.GetMovieDetail(ctx, id)
	detail, err := res.Get()
	s.state.Commit(func(st *DetailState) {
		st.IsLoading = false
		if err != nil {
			st.ErrorMessage = domain.UserMessage(err)
			return
		}
		st.Detail = detail
		st.HasDetail = true
	})
	if err != nil {
		s.logger.Error("failed to load movie detail", "movie", id, "error", err)
		return err
	}
	s.Favorite.Reset(id, detail.IsFavorited)
	s.Subscription.Reset(id, detail.IsSubscribed)
	s.logger.Debug("loaded movie detail", "movie", id)

	var g errgroup.Group
	g.Go(func() error { return s.Recommendations.Refresh(ctx) })
	g.Go(func() error { return s.Comments.Refresh(ctx) })
	if err := g.Wait(); err != nil {
		s.logger.Warn("detail lists incomplete", "movie", id, "error", err)
	}
	return nil
}

// ToggleFavorite flips the favorite relation optimistically. See cache.Toggle.
func (s *MovieDetailStore) ToggleFavorite(ctx context.Context) error {
	err := s.Favorite.Flip(ctx)
	s.syncRelations()
	return err
}

// ToggleSubscribe flips the update subscription (reservation) optimistically.
func (s *MovieDetailStore) ToggleSubscribe(ctx context.Context) error {
	err := s.Subscription.Flip(ctx)
	s.syncRelations()
	return err
}

// syncRelations copies settled toggle states into the detail aggregate.
func (s *MovieDetailStore) syncRelations() {
	fav := s.Favorite.Snapshot()
	sub := s.Subscription.Snapshot()
	s.state.Commit(func(st *DetailState) {
		if !st.HasDetail {
			return
		}
		if fav.Key == st.MovieID && !fav.InFlight {
			st.Detail.IsFavorited = fav.Active
		}
		if sub.Key == st.MovieID && !sub.InFlight {
			st.Detail.IsSubscribed = sub.Active
		}
	})
}

// SubmitComment posts body on the current movie and puts the new comment at
// the head of the list. Blank bodies are rejected without a network call.
// A submit issued while another is in flight is a no-op.
func (s *MovieDetailStore) SubmitComment(ctx context.Context, body string) error {
	_, err := s.PostComment(ctx, body)
	return err
}

// PostComment is SubmitComment that also reports whether a comment was
// actually posted. It is false for guarded no-ops and failures.
func (s *MovieDetailStore) PostComment(ctx context.Context, body string) (posted bool, err error) {
	body = strings.TrimSpace(body)
	if body == "" {
		f := domain.ValidationFailure("comment cannot be empty")
		f.Cause = domain.ErrEmptyComment
		s.state.Commit(func(st *DetailState) { st.CommentError = f.UserMessage() })
		return false, f
	}

	var movieID string
	started := s.state.CommitIf(
		func(st DetailState) bool { return st.MovieID != "" && !st.IsSubmittingComment },
		func(st *DetailState) {
			movieID = st.MovieID
			st.IsSubmittingComment = true
			st.CommentError = ""
		},
	)
	if !started {
		s.logger.Debug("skipped comment submit", "reason", "guarded")
		return false, nil
	}

	res := s.comments.AddComment(ctx, movieID, body)
	comment, err := res.Get()
	current := s.MovieID() == movieID
	if err == nil && current {
		s.Comments.Prepend(comment)
	}
	s.state.Commit(func(st *DetailState) {
		st.IsSubmittingComment = false
		if err != nil {
			st.CommentError = domain.UserMessage(err)
			return
		}
		if current {
			st.Detail.CommentCount++
		}
	})
	if err != nil {
		s.logger.Error("failed to submit comment", "movie", movieID, "error", err)
		return false, err
	}
	s.logger.Info("submitted comment", "movie", movieID, "comment", comment.ID)
	return true, nil
}

func (s *MovieDetailStore) LoadMoreComments(ctx context.Context) error {
	return s.Comments.LoadMore(ctx)
}

func (s *MovieDetailStore) LoadMoreRecommendations(ctx context.Context) error {
	return s.Recommendations.LoadMore(ctx)
}

func (s *MovieDetailStore) RefreshComments(ctx context.Context) error {
	return s.Comments.Refresh(ctx)
}

// MovieID returns the movie being shown.
func (s *MovieDetailStore) MovieID() string { return s.state.Get().MovieID }

// Snapshot returns the current state.
func (s *MovieDetailStore) Snapshot() DetailState { return s.state.Get() }

// Subscribe registers fn for detail changes. The lists and toggles have
// their own Subscribe.
func (s *MovieDetailStore) Subscribe(fn func(DetailState)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}
