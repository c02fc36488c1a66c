// Package catalog is an in-memory backend that implements every repository
// interface from a JSON catalog, so reel runs without the remote API.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mmcdole/reel/internal/domain"
)

//go:embed sample.json
var sampleCatalog []byte

// Catalog implements the domain repositories over fixture data. Reads share
// the fixture; favorites, subscriptions, comments and notification flags are
// mutable.
type Catalog struct {
	mu sync.Mutex

	appConfig     domain.AppConfig
	categories    []domain.Category
	filterOptions domain.FilterOptions
	movies        []domain.Movie
	moviesByID    map[string]domain.Movie
	games         []domain.Game
	topics        []domain.Topic
	actors        []domain.Actor
	ads           map[string]domain.Ad
	history       []domain.HistoryItem
	notifications []domain.Notification
	comments      map[string][]domain.Comment // newest first
	favorites     []string                    // newest first
	subscriptions map[string]bool

	accounts          map[string]Account
	secret            []byte
	revoked           map[string]bool
	session           string
	onUnauthenticated func()

	latency  time.Duration
	tokenTTL time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Catalog
type Option func(*Catalog)

// WithLatency delays every call, to make loading states visible
func WithLatency(d time.Duration) Option {
	return func(c *Catalog) { c.latency = d }
}

// WithClock replaces time.Now for token issue and expiry
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// WithTokenTTL sets the lifetime of issued tokens
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *Catalog) { c.tokenTTL = ttl }
}

// WithSecret sets the token signing key. Tokens survive a restart only when
// the key does.
func WithSecret(secret []byte) Option {
	return func(c *Catalog) { c.secret = secret }
}

// Load reads a catalog file. An empty path loads the built-in sample.
func Load(path string, logger *slog.Logger, opts ...Option) (*Catalog, error) {
	data := sampleCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
	}

	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(fx, logger, opts...), nil
}

// New builds a catalog from fixture data
func New(fx Fixture, logger *slog.Logger, opts ...Option) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{
		appConfig:     fx.AppConfig,
		categories:    slices.Clone(fx.Categories),
		movies:        slices.Clone(fx.Movies),
		moviesByID:    make(map[string]domain.Movie, len(fx.Movies)),
		games:         slices.Clone(fx.Games),
		topics:        slices.Clone(fx.Topics),
		actors:        slices.Clone(fx.Actors),
		ads:           make(map[string]domain.Ad, len(fx.Ads)),
		notifications: slices.Clone(fx.Notifications),
		comments:      make(map[string][]domain.Comment),
		favorites:     slices.Clone(fx.Favorites),
		subscriptions: make(map[string]bool, len(fx.Subscriptions)),
		accounts:      make(map[string]Account, len(fx.Accounts)),
		secret:        []byte(uuid.NewString()),
		revoked:       make(map[string]bool),
		tokenTTL:      tokenTTL,
		now:           time.Now,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, m := range c.movies {
		c.moviesByID[m.ID] = m
	}
	for _, ad := range fx.Ads {
		c.ads[ad.Position] = ad
	}
	for _, a := range fx.Accounts {
		c.accounts[a.ID] = a
	}
	for _, id := range fx.Subscriptions {
		c.subscriptions[id] = true
	}
	for _, dto := range fx.Comments {
		c.comments[dto.MovieID] = append(c.comments[dto.MovieID], mapComment(dto, c.accounts))
	}
	for id := range c.comments {
		slices.SortStableFunc(c.comments[id], func(a, b domain.Comment) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	c.history = mapHistory(fx.History, c.moviesByID)

	if fx.FilterOptions != nil {
		c.filterOptions = *fx.FilterOptions
	} else {
		c.filterOptions = deriveFilterOptions(c.movies)
	}

	logger.Info("catalog loaded",
		"movies", len(c.movies),
		"categories", len(c.categories),
		"games", len(c.games),
		"accounts", len(c.accounts))
	return c
}

// wait applies the configured latency, honoring cancellation
func (c *Catalog) wait(ctx context.Context) error {
	if c.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func notFound[T any](what, id string) domain.Result[T] {
	return domain.Fail[T](domain.APIFailure("NOT_FOUND", fmt.Sprintf("%s %q not found", what, id)))
}

// read runs fn under the lock after the configured latency
func read[T any](c *Catalog, ctx context.Context, fn func() domain.Result[T]) domain.Result[T] {
	if err := c.wait(ctx); err != nil {
		return domain.Fail[T](domain.AsFailure(err))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn()
}

// ListMovies implements domain.MovieRepository
func (c *Catalog) ListMovies(ctx context.Context, filter domain.MovieFilter, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
	return read(c, ctx, func() domain.Result[domain.PaginatedList[domain.Movie]] {
		var matched []domain.Movie
		for _, m := range c.movies {
			if matchesFilter(m, filter) {
				matched = append(matched, m)
			}
		}
		sortMovies(matched, filter.Sort)
		c.logger.Debug("list movies", "filter", filter, "page", page.Page, "matched", len(matched))
		return domain.Ok(paginate(matched, page))
	})
}

// GetMovieDetail implements domain.MovieRepository. Relations are only set
// for a signed-in viewer.
func (c *Catalog) GetMovieDetail(ctx context.Context, movieID string) domain.Result[domain.MovieDetail] {
	return read(c, ctx, func() domain.Result[domain.MovieDetail] {
		m, ok := c.moviesByID[movieID]
		if !ok {
			return notFound[domain.MovieDetail]("movie", movieID)
		}
		detail := domain.MovieDetail{
			Movie:        m,
			CommentCount: len(c.comments[movieID]),
		}
		if _, signedIn := c.viewer(); signedIn {
			detail.IsFavorited = slices.Contains(c.favorites, movieID)
			detail.IsSubscribed = c.subscriptions[movieID]
		}
		return domain.Ok(detail)
	})
}

// ListRecommendations implements domain.MovieRepository
func (c *Catalog) ListRecommendations(ctx context.Context, movieID string, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
	return read(c, ctx, func() domain.Result[domain.PaginatedList[domain.Movie]] {
		m, ok := c.moviesByID[movieID]
		if !ok {
			return notFound[domain.PaginatedList[domain.Movie]]("movie", movieID)
		}
		return domain.Ok(paginate(related(m, c.movies), page))
	})
}

// SearchMovies implements domain.MovieRepository
func (c *Catalog) SearchMovies(ctx context.Context, keyword string, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
	return read(c, ctx, func() domain.Result[domain.PaginatedList[domain.Movie]] {
		var matched []domain.Movie
		for _, m := range c.movies {
			if matchesKeyword(m, keyword) {
				matched = append(matched, m)
			}
		}
		return domain.Ok(paginate(matched, page))
	})
}

// GetFilterOptions implements domain.MovieRepository
func (c *Catalog) GetFilterOptions(ctx context.Context) domain.Result[domain.FilterOptions] {
	return read(c, ctx, func() domain.Result[domain.FilterOptions] {
		return domain.Ok(c.filterOptions)
	})
}

// ListCategories implements domain.CategoryRepository
func (c *Catalog) ListCategories(ctx context.Context) domain.Result[[]domain.Category] {
	return read(c, ctx, func() domain.Result[[]domain.Category] {
		return domain.Ok(slices.Clone(c.categories))
	})
}

// GetCategoryHome implements domain.CategoryRepository
func (c *Catalog) GetCategoryHome(ctx context.Context, categoryID string) domain.Result[domain.CategoryHome] {
	return read(c, ctx, func() domain.Result[domain.CategoryHome] {
		if !slices.ContainsFunc(c.categories, func(cat domain.Category) bool { return cat.ID == categoryID }) {
			return notFound[domain.CategoryHome]("category", categoryID)
		}
		var ad *domain.Ad
		if a, ok := c.ads["home"]; ok {
			ad = &a
		}
		return domain.Ok(categoryHome(categoryID, c.movies, ad))
	})
}

// GetAd implements domain.AdRepository
func (c *Catalog) GetAd(ctx context.Context, position string) domain.Result[domain.Ad] {
	return read(c, ctx, func() domain.Result[domain.Ad] {
		ad, ok := c.ads[position]
		if !ok {
			return notFound[domain.Ad]("ad", position)
		}
		return domain.Ok(ad)
	})
}

// GetAppConfig implements domain.AppConfigRepository
func (c *Catalog) GetAppConfig(ctx context.Context) domain.Result[domain.AppConfig] {
	return read(c, ctx, func() domain.Result[domain.AppConfig] {
		cfg := c.appConfig
		cfg.HotKeywords = slices.Clone(cfg.HotKeywords)
		return domain.Ok(cfg)
	})
}

// AddFavorite implements domain.FavoriteRepository
func (c *Catalog) AddFavorite(ctx context.Context, movieID string) domain.Result[domain.Unit] {
	return authenticated(c, ctx, func(Account) domain.Result[domain.Unit] {
		if _, ok := c.moviesByID[movieID]; !ok {
			return notFound[domain.Unit]("movie", movieID)
		}
		c.favorites = slices.DeleteFunc(c.favorites, func(id string) bool { return id == movieID })
		c.favorites = slices.Insert(c.favorites, 0, movieID)
		return domain.Ok(domain.Unit{})
	})
}

// RemoveFavorite implements domain.FavoriteRepository
func (c *Catalog) RemoveFavorite(ctx context.Context, movieID string) domain.Result[domain.Unit] {
	return authenticated(c, ctx, func(Account) domain.Result[domain.Unit] {
		c.favorites = slices.DeleteFunc(c.favorites, func(id string) bool { return id == movieID })
		return domain.Ok(domain.Unit{})
	})
}

// ListFavorites implements domain.FavoriteRepository
func (c *Catalog) ListFavorites(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
	return authenticated(c, ctx, func(Account) domain.Result[domain.PaginatedList[domain.Movie]] {
		movies := make([]domain.Movie, 0, len(c.favorites))
		for _, id := range c.favorites {
			if m, ok := c.moviesByID[id]; ok {
				movies = append(movies, m)
			}
		}
		return domain.Ok(paginate(movies, page))
	})
}

// Subscribe implements domain.SubscriptionRepository
func (c *Catalog) Subscribe(ctx context.Context, movieID string) domain.Result[domain.Unit] {
	return authenticated(c, ctx, func(Account) domain.Result[domain.Unit] {
		if _, ok := c.moviesByID[movieID]; !ok {
			return notFound[domain.Unit]("movie", movieID)
		}
		c.subscriptions[movieID] = true
		return domain.Ok(domain.Unit{})
	})
}

// Unsubscribe implements domain.SubscriptionRepository
func (c *Catalog) Unsubscribe(ctx context.Context, movieID string) domain.Result[domain.Unit] {
	return authenticated(c, ctx, func(Account) domain.Result[domain.Unit] {
		delete(c.subscriptions, movieID)
		return domain.Ok(domain.Unit{})
	})
}

// ListComments implements domain.CommentRepository
func (c *Catalog) ListComments(ctx context.Context, movieID string, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Comment]] {
	return read(c, ctx, func() domain.Result[domain.PaginatedList[domain.Comment]] {
		if _, ok := c.moviesByID[movieID]; !ok {
			return notFound[domain.PaginatedList[domain.Comment]]("movie", movieID)
		}
		return domain.Ok(paginate(c.comments[movieID], page))
	})
}

// AddComment implements domain.CommentRepository
func (c *Catalog) AddComment(ctx context.Context, movieID, body string) domain.Result[domain.Comment] {
	return authenticated(c, ctx, func(a Account) domain.Result[domain.Comment] {
		if _, ok := c.moviesByID[movieID]; !ok {
			return notFound[domain.Comment]("movie", movieID)
		}
		if !c.appConfig.CommentEnabled {
			return domain.Fail[domain.Comment](domain.PermissionFailure("comments are disabled"))
		}
		body = strings.TrimSpace(body)
		if body == "" {
			return domain.Fail[domain.Comment](domain.ValidationFailure("comment cannot be empty"))
		}
		comment := domain.Comment{
			ID:        uuid.NewString(),
			MovieID:   movieID,
			User:      mapUser(a),
			Body:      body,
			CreatedAt: c.now(),
		}
		c.comments[movieID] = slices.Insert(c.comments[movieID], 0, comment)
		return domain.Ok(comment)
	})
}

// ListGames implements domain.GameRepository
func (c *Catalog) ListGames(ctx context.Context, category domain.GameCategory, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Game]] {
	return read(c, ctx, func() domain.Result[domain.PaginatedList[domain.Game]] {
		games := c.games
		if category != domain.GameCategoryAll && category != "" {
			games = nil
			for _, g := range c.games {
				if g.Category == category {
					games = append(games, g)
				}
			}
		}
		return domain.Ok(paginate(games, page))
	})
}

// ListTopics implements domain.TopicRepository
func (c *Catalog) ListTopics(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Topic]] {
	return read(c, ctx, func() domain.Result[domain.PaginatedList[domain.Topic]] {
		return domain.Ok(paginate(c.topics, page))
	})
}

// ListActors implements domain.ActorRepository
func (c *Catalog) ListActors(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Actor]] {
	return read(c, ctx, func() domain.Result[domain.PaginatedList[domain.Actor]] {
		return domain.Ok(paginate(c.actors, page))
	})
}

// ListHistory implements domain.HistoryRepository
func (c *Catalog) ListHistory(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.HistoryItem]] {
	return authenticated(c, ctx, func(Account) domain.Result[domain.PaginatedList[domain.HistoryItem]] {
		return domain.Ok(paginate(c.history, page))
	})
}

// ListNotifications implements domain.NotificationRepository
func (c *Catalog) ListNotifications(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Notification]] {
	return authenticated(c, ctx, func(Account) domain.Result[domain.PaginatedList[domain.Notification]] {
		return domain.Ok(paginate(c.notifications, page))
	})
}

// UnreadCount implements domain.NotificationRepository
func (c *Catalog) UnreadCount(ctx context.Context) domain.Result[int] {
	return authenticated(c, ctx, func(Account) domain.Result[int] {
		n := 0
		for _, item := range c.notifications {
			if !item.Read {
				n++
			}
		}
		return domain.Ok(n)
	})
}

// MarkRead implements domain.NotificationRepository
func (c *Catalog) MarkRead(ctx context.Context, notificationID string) domain.Result[domain.Unit] {
	return authenticated(c, ctx, func(Account) domain.Result[domain.Unit] {
		i := slices.IndexFunc(c.notifications, func(n domain.Notification) bool { return n.ID == notificationID })
		if i < 0 {
			return notFound[domain.Unit]("notification", notificationID)
		}
		c.notifications[i].Read = true
		return domain.Ok(domain.Unit{})
	})
}

// MarkAllRead implements domain.NotificationRepository
func (c *Catalog) MarkAllRead(ctx context.Context) domain.Result[domain.Unit] {
	return authenticated(c, ctx, func(Account) domain.Result[domain.Unit] {
		for i := range c.notifications {
			c.notifications[i].Read = true
		}
		return domain.Ok(domain.Unit{})
	})
}

var (
	_ domain.MovieRepository        = (*Catalog)(nil)
	_ domain.CategoryRepository     = (*Catalog)(nil)
	_ domain.AdRepository           = (*Catalog)(nil)
	_ domain.AppConfigRepository    = (*Catalog)(nil)
	_ domain.AuthRepository         = (*Catalog)(nil)
	_ domain.FavoriteRepository     = (*Catalog)(nil)
	_ domain.SubscriptionRepository = (*Catalog)(nil)
	_ domain.CommentRepository      = (*Catalog)(nil)
	_ domain.GameRepository         = (*Catalog)(nil)
	_ domain.TopicRepository        = (*Catalog)(nil)
	_ domain.ActorRepository        = (*Catalog)(nil)
	_ domain.HistoryRepository      = (*Catalog)(nil)
	_ domain.NotificationRepository = (*Catalog)(nil)
)
