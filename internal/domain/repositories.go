package domain

import (
	"context"
)

// Unit is the value of a successful call that returns nothing.
type Unit struct{}

// MovieRepository provides movie listings, detail and search
type MovieRepository interface {
	// ListMovies returns one page of movies matching the filter tuple
	ListMovies(ctx context.Context, filter MovieFilter, page PageQuery) Result[PaginatedList[Movie]]

	// GetMovieDetail returns the detail aggregate, including the viewer's relations
	GetMovieDetail(ctx context.Context, movieID string) Result[MovieDetail]

	// ListRecommendations returns movies related to movieID
	ListRecommendations(ctx context.Context, movieID string, page PageQuery) Result[PaginatedList[Movie]]

	// SearchMovies returns movies matching a keyword
	SearchMovies(ctx context.Context, keyword string, page PageQuery) Result[PaginatedList[Movie]]

	// GetFilterOptions returns the selectable areas, years, genres and sorts
	GetFilterOptions(ctx context.Context) Result[FilterOptions]
}

// CategoryRepository provides content lanes and their landing pages
type CategoryRepository interface {
	ListCategories(ctx context.Context) Result[[]Category]
	GetCategoryHome(ctx context.Context, categoryID string) Result[CategoryHome]
}

// AdRepository provides promotional slots by position ("launch", "home")
type AdRepository interface {
	GetAd(ctx context.Context, position string) Result[Ad]
}

// AppConfigRepository provides the remote client configuration
type AppConfigRepository interface {
	GetAppConfig(ctx context.Context) Result[AppConfig]
}

// AuthRepository authenticates the viewer
type AuthRepository interface {
	Login(ctx context.Context, creds Credentials) Result[AuthPayload]
	Register(ctx context.Context, creds Credentials) Result[AuthPayload]

	// CurrentUser validates token and returns its owner
	CurrentUser(ctx context.Context, token string) Result[User]

	Logout(ctx context.Context, token string) Result[Unit]
}

// FavoriteRepository manages the viewer's favorites
type FavoriteRepository interface {
	AddFavorite(ctx context.Context, movieID string) Result[Unit]
	RemoveFavorite(ctx context.Context, movieID string) Result[Unit]
	ListFavorites(ctx context.Context, page PageQuery) Result[PaginatedList[Movie]]
}

// SubscriptionRepository manages update subscriptions (reservations for upcoming titles)
type SubscriptionRepository interface {
	Subscribe(ctx context.Context, movieID string) Result[Unit]
	Unsubscribe(ctx context.Context, movieID string) Result[Unit]
}

// CommentRepository reads and writes movie comments
type CommentRepository interface {
	ListComments(ctx context.Context, movieID string, page PageQuery) Result[PaginatedList[Comment]]
	AddComment(ctx context.Context, movieID, body string) Result[Comment]
}

// GameRepository provides the game catalog
type GameRepository interface {
	ListGames(ctx context.Context, category GameCategory, page PageQuery) Result[PaginatedList[Game]]
}

// TopicRepository provides curated topics
type TopicRepository interface {
	ListTopics(ctx context.Context, page PageQuery) Result[PaginatedList[Topic]]
}

// ActorRepository provides the actor directory
type ActorRepository interface {
	ListActors(ctx context.Context, page PageQuery) Result[PaginatedList[Actor]]
}

// HistoryRepository provides the viewer's watch history
type HistoryRepository interface {
	ListHistory(ctx context.Context, page PageQuery) Result[PaginatedList[HistoryItem]]
}

// NotificationRepository provides the viewer's notifications
type NotificationRepository interface {
	ListNotifications(ctx context.Context, page PageQuery) Result[PaginatedList[Notification]]
	UnreadCount(ctx context.Context) Result[int]
	MarkRead(ctx context.Context, notificationID string) Result[Unit]
	MarkAllRead(ctx context.Context) Result[Unit]
}
