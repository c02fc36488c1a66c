package service

// Cache names, used in log lines to tell lists apart
const (
	// CacheMovies is the filtered movie listing
	CacheMovies = "movies"

	// CacheCategoryHome is the per-category landing page cache
	CacheCategoryHome = "category-home"

	// CacheGames is the prefix for game lanes (games:{category})
	CacheGames = "games"

	// CacheTopics and CacheActors are the discovery tabs
	CacheTopics = "topics"
	CacheActors = "actors"

	// CacheRecommendations and CacheComments hang off a movie detail
	CacheRecommendations = "recommendations"
	CacheComments        = "comments"

	// CacheHistory and CacheFavorites make up the "my" page
	CacheHistory   = "history"
	CacheFavorites = "favorites"

	CacheNotifications = "notifications"
	CacheSearch        = "search"
)
