// Package mocks provides hand-written repository fakes for store tests.
// Every method calls its XxxFn field when set and otherwise returns an empty
// success. Calls are counted by method name.
package mocks

import (
	"context"
	"sync"

	"github.com/mmcdole/reel/internal/domain"
)

// Calls counts invocations per method name.
type Calls struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *Calls) record(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[name]++
}

// Count returns how many times method was called.
func (c *Calls) Count(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[method]
}

// EmptyPage is the default result of list methods.
func EmptyPage[T any]() domain.Result[domain.PaginatedList[T]] {
	return domain.Ok(domain.PaginatedList[T]{Paginator: domain.DefaultPaginator()})
}

// Page builds a successful page result.
func Page[T any](current, last int, items ...T) domain.Result[domain.PaginatedList[T]] {
	return domain.Ok(domain.PaginatedList[T]{
		Items: items,
		Paginator: domain.PaginatorInfo{
			CurrentPage:  current,
			LastPage:     last,
			HasMorePages: current < last,
			Total:        len(items),
		},
	})
}

// MockMovieRepository implements domain.MovieRepository for testing
type MockMovieRepository struct {
	Calls

	ListMoviesFn          func(ctx context.Context, filter domain.MovieFilter, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]]
	GetMovieDetailFn      func(ctx context.Context, movieID string) domain.Result[domain.MovieDetail]
	ListRecommendationsFn func(ctx context.Context, movieID string, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]]
	SearchMoviesFn        func(ctx context.Context, keyword string, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]]
	GetFilterOptionsFn    func(ctx context.Context) domain.Result[domain.FilterOptions]
}

func (m *MockMovieRepository) ListMovies(ctx context.Context, filter domain.MovieFilter, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
	m.record("ListMovies")
	if m.ListMoviesFn != nil {
		return m.ListMoviesFn(ctx, filter, page)
	}
	return EmptyPage[domain.Movie]()
}

func (m *MockMovieRepository) GetMovieDetail(ctx context.Context, movieID string) domain.Result[domain.MovieDetail] {
	m.record("GetMovieDetail")
	if m.GetMovieDetailFn != nil {
		return m.GetMovieDetailFn(ctx, movieID)
	}
	return domain.Ok(domain.MovieDetail{Movie: domain.Movie{ID: movieID}})
}

func (m *MockMovieRepository) ListRecommendations(ctx context.Context, movieID string, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
	m.record("ListRecommendations")
	if m.ListRecommendationsFn != nil {
		return m.ListRecommendationsFn(ctx, movieID, page)
	}
	return EmptyPage[domain.Movie]()
}

func (m *MockMovieRepository) SearchMovies(ctx context.Context, keyword string, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
	m.record("SearchMovies")
	if m.SearchMoviesFn != nil {
		return m.SearchMoviesFn(ctx, keyword, page)
	}
	return EmptyPage[domain.Movie]()
}

func (m *MockMovieRepository) GetFilterOptions(ctx context.Context) domain.Result[domain.FilterOptions] {
	m.record("GetFilterOptions")
	if m.GetFilterOptionsFn != nil {
		return m.GetFilterOptionsFn(ctx)
	}
	return domain.Ok(domain.FilterOptions{})
}

// MockCategoryRepository implements domain.CategoryRepository for testing
type MockCategoryRepository struct {
	Calls

	ListCategoriesFn  func(ctx context.Context) domain.Result[[]domain.Category]
	GetCategoryHomeFn func(ctx context.Context, categoryID string) domain.Result[domain.CategoryHome]
}

func (m *MockCategoryRepository) ListCategories(ctx context.Context) domain.Result[[]domain.Category] {
	m.record("ListCategories")
	if m.ListCategoriesFn != nil {
		return m.ListCategoriesFn(ctx)
	}
	return domain.Ok([]domain.Category(nil))
}

func (m *MockCategoryRepository) GetCategoryHome(ctx context.Context, categoryID string) domain.Result[domain.CategoryHome] {
	m.record("GetCategoryHome")
	if m.GetCategoryHomeFn != nil {
		return m.GetCategoryHomeFn(ctx, categoryID)
	}
	return domain.Ok(domain.CategoryHome{CategoryID: categoryID})
}

// MockAdRepository implements domain.AdRepository for testing
type MockAdRepository struct {
	Calls

	GetAdFn func(ctx context.Context, position string) domain.Result[domain.Ad]
}

func (m *MockAdRepository) GetAd(ctx context.Context, position string) domain.Result[domain.Ad] {
	m.record("GetAd")
	if m.GetAdFn != nil {
		return m.GetAdFn(ctx, position)
	}
	return domain.Ok(domain.Ad{Position: position})
}

// MockAppConfigRepository implements domain.AppConfigRepository for testing
type MockAppConfigRepository struct {
	Calls

	GetAppConfigFn func(ctx context.Context) domain.Result[domain.AppConfig]
}

func (m *MockAppConfigRepository) GetAppConfig(ctx context.Context) domain.Result[domain.AppConfig] {
	m.record("GetAppConfig")
	if m.GetAppConfigFn != nil {
		return m.GetAppConfigFn(ctx)
	}
	return domain.Ok(domain.AppConfig{})
}

// MockAuthRepository implements domain.AuthRepository for testing
type MockAuthRepository struct {
	Calls

	LoginFn       func(ctx context.Context, creds domain.Credentials) domain.Result[domain.AuthPayload]
	RegisterFn    func(ctx context.Context, creds domain.Credentials) domain.Result[domain.AuthPayload]
	CurrentUserFn func(ctx context.Context, token string) domain.Result[domain.User]
	LogoutFn      func(ctx context.Context, token string) domain.Result[domain.Unit]
}

func (m *MockAuthRepository) Login(ctx context.Context, creds domain.Credentials) domain.Result[domain.AuthPayload] {
	m.record("Login")
	if m.LoginFn != nil {
		return m.LoginFn(ctx, creds)
	}
	return domain.Fail[domain.AuthPayload](domain.AuthFailure("invalid credentials"))
}

func (m *MockAuthRepository) Register(ctx context.Context, creds domain.Credentials) domain.Result[domain.AuthPayload] {
	m.record("Register")
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, creds)
	}
	return domain.Fail[domain.AuthPayload](domain.APIFailure("REGISTRATION_CLOSED", "registration is closed"))
}

func (m *MockAuthRepository) CurrentUser(ctx context.Context, token string) domain.Result[domain.User] {
	m.record("CurrentUser")
	if m.CurrentUserFn != nil {
		return m.CurrentUserFn(ctx, token)
	}
	return domain.Fail[domain.User](domain.AuthFailure("please log in again"))
}

func (m *MockAuthRepository) Logout(ctx context.Context, token string) domain.Result[domain.Unit] {
	m.record("Logout")
	if m.LogoutFn != nil {
		return m.LogoutFn(ctx, token)
	}
	return domain.Ok(domain.Unit{})
}

// MockRelationRepository implements domain.FavoriteRepository and
// domain.SubscriptionRepository for testing
type MockRelationRepository struct {
	Calls

	AddFavoriteFn    func(ctx context.Context, movieID string) domain.Result[domain.Unit]
	RemoveFavoriteFn func(ctx context.Context, movieID string) domain.Result[domain.Unit]
	ListFavoritesFn  func(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]]
	SubscribeFn      func(ctx context.Context, movieID string) domain.Result[domain.Unit]
	UnsubscribeFn    func(ctx context.Context, movieID string) domain.Result[domain.Unit]
}

func (m *MockRelationRepository) unit(ctx context.Context, name, movieID string, fn func(context.Context, string) domain.Result[domain.Unit]) domain.Result[domain.Unit] {
	m.record(name)
	if fn != nil {
		return fn(ctx, movieID)
	}
	return domain.Ok(domain.Unit{})
}

func (m *MockRelationRepository) AddFavorite(ctx context.Context, movieID string) domain.Result[domain.Unit] {
	return m.unit(ctx, "AddFavorite", movieID, m.AddFavoriteFn)
}

func (m *MockRelationRepository) RemoveFavorite(ctx context.Context, movieID string) domain.Result[domain.Unit] {
	return m.unit(ctx, "RemoveFavorite", movieID, m.RemoveFavoriteFn)
}

func (m *MockRelationRepository) ListFavorites(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Movie]] {
	m.record("ListFavorites")
	if m.ListFavoritesFn != nil {
		return m.ListFavoritesFn(ctx, page)
	}
	return EmptyPage[domain.Movie]()
}

func (m *MockRelationRepository) Subscribe(ctx context.Context, movieID string) domain.Result[domain.Unit] {
	return m.unit(ctx, "Subscribe", movieID, m.SubscribeFn)
}

func (m *MockRelationRepository) Unsubscribe(ctx context.Context, movieID string) domain.Result[domain.Unit] {
	return m.unit(ctx, "Unsubscribe", movieID, m.UnsubscribeFn)
}

// MockCommentRepository implements domain.CommentRepository for testing
type MockCommentRepository struct {
	Calls

	ListCommentsFn func(ctx context.Context, movieID string, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Comment]]
	AddCommentFn   func(ctx context.Context, movieID, body string) domain.Result[domain.Comment]
}

func (m *MockCommentRepository) ListComments(ctx context.Context, movieID string, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Comment]] {
	m.record("ListComments")
	if m.ListCommentsFn != nil {
		return m.ListCommentsFn(ctx, movieID, page)
	}
	return EmptyPage[domain.Comment]()
}

func (m *MockCommentRepository) AddComment(ctx context.Context, movieID, body string) domain.Result[domain.Comment] {
	m.record("AddComment")
	if m.AddCommentFn != nil {
		return m.AddCommentFn(ctx, movieID, body)
	}
	return domain.Ok(domain.Comment{ID: "c-new", MovieID: movieID, Body: body})
}

// MockGameRepository implements domain.GameRepository for testing
type MockGameRepository struct {
	Calls

	ListGamesFn func(ctx context.Context, category domain.GameCategory, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Game]]
}

func (m *MockGameRepository) ListGames(ctx context.Context, category domain.GameCategory, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Game]] {
	m.record("ListGames")
	if m.ListGamesFn != nil {
		return m.ListGamesFn(ctx, category, page)
	}
	return EmptyPage[domain.Game]()
}

// MockDiscoveryRepository implements domain.TopicRepository and
// domain.ActorRepository for testing
type MockDiscoveryRepository struct {
	Calls

	ListTopicsFn func(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Topic]]
	ListActorsFn func(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Actor]]
}

func (m *MockDiscoveryRepository) ListTopics(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Topic]] {
	m.record("ListTopics")
	if m.ListTopicsFn != nil {
		return m.ListTopicsFn(ctx, page)
	}
	return EmptyPage[domain.Topic]()
}

func (m *MockDiscoveryRepository) ListActors(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Actor]] {
	m.record("ListActors")
	if m.ListActorsFn != nil {
		return m.ListActorsFn(ctx, page)
	}
	return EmptyPage[domain.Actor]()
}

// MockHistoryRepository implements domain.HistoryRepository for testing
type MockHistoryRepository struct {
	Calls

	ListHistoryFn func(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.HistoryItem]]
}

func (m *MockHistoryRepository) ListHistory(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.HistoryItem]] {
	m.record("ListHistory")
	if m.ListHistoryFn != nil {
		return m.ListHistoryFn(ctx, page)
	}
	return EmptyPage[domain.HistoryItem]()
}

// MockNotificationRepository implements domain.NotificationRepository for testing
type MockNotificationRepository struct {
	Calls

	ListNotificationsFn func(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Notification]]
	UnreadCountFn       func(ctx context.Context) domain.Result[int]
	MarkReadFn          func(ctx context.Context, notificationID string) domain.Result[domain.Unit]
	MarkAllReadFn       func(ctx context.Context) domain.Result[domain.Unit]
}

func (m *MockNotificationRepository) ListNotifications(ctx context.Context, page domain.PageQuery) domain.Result[domain.PaginatedList[domain.Notification]] {
	m.record("ListNotifications")
	if m.ListNotificationsFn != nil {
		return m.ListNotificationsFn(ctx, page)
	}
	return EmptyPage[domain.Notification]()
}

func (m *MockNotificationRepository) UnreadCount(ctx context.Context) domain.Result[int] {
	m.record("UnreadCount")
	if m.UnreadCountFn != nil {
		return m.UnreadCountFn(ctx)
	}
	return domain.Ok(0)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, notificationID string) domain.Result[domain.Unit] {
	m.record("MarkRead")
	if m.MarkReadFn != nil {
		return m.MarkReadFn(ctx, notificationID)
	}
	return domain.Ok(domain.Unit{})
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context) domain.Result[domain.Unit] {
	m.record("MarkAllRead")
	if m.MarkAllReadFn != nil {
		return m.MarkAllReadFn(ctx)
	}
	return domain.Ok(domain.Unit{})
}

// Compile-time interface checks
var (
	_ domain.MovieRepository        = (*MockMovieRepository)(nil)
	_ domain.CategoryRepository     = (*MockCategoryRepository)(nil)
	_ domain.AdRepository           = (*MockAdRepository)(nil)
	_ domain.AppConfigRepository    = (*MockAppConfigRepository)(nil)
	_ domain.AuthRepository         = (*MockAuthRepository)(nil)
	_ domain.FavoriteRepository     = (*MockRelationRepository)(nil)
	_ domain.SubscriptionRepository = (*MockRelationRepository)(nil)
	_ domain.CommentRepository      = (*MockCommentRepository)(nil)
	_ domain.GameRepository         = (*MockGameRepository)(nil)
	_ domain.TopicRepository        = (*MockDiscoveryRepository)(nil)
	_ domain.ActorRepository        = (*MockDiscoveryRepository)(nil)
	_ domain.HistoryRepository      = (*MockHistoryRepository)(nil)
	_ domain.NotificationRepository = (*MockNotificationRepository)(nil)
)
