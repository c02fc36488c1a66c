package domain

import (
	"fmt"
	"strings"
	"time"
)

// Movie is a browsable media item (film, series or variety show).
type Movie struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	CoverURL    string   `json:"coverUrl"`
	Description string   `json:"description"`
	CategoryID  string   `json:"categoryId"`
	Area        string   `json:"area"`
	Year        int      `json:"year"`
	Genres      []string `json:"genres"`
	Score       float64  `json:"score"`
	Episodes    int      `json:"episodes"` // 0 for single films
	Status      string   `json:"status"`   // e.g. "ongoing", "completed", "upcoming"
	Actors      []string `json:"actors"`
}

// MovieDetail is the detail aggregate: the movie plus the viewer's relations to it.
type MovieDetail struct {
	Movie        Movie `json:"movie"`
	IsFavorited  bool  `json:"isFavorited"`
	IsSubscribed bool  `json:"isSubscribed"`
	CommentCount int   `json:"commentCount"`
}

// Category is a top-level content lane ("Movies", "Series", "Anime", ...).
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Section is a titled row of movies on a category home page.
type Section struct {
	Title  string  `json:"title"`
	Movies []Movie `json:"movies"`
}

// CategoryHome is the aggregate shown on a category's landing page.
type CategoryHome struct {
	CategoryID string    `json:"categoryId"`
	Banners    []Movie   `json:"banners"`
	Sections   []Section `json:"sections"`
	Ad         *Ad       `json:"ad,omitempty"`
}

// FilterOptions lists the values the filter screen can offer.
type FilterOptions struct {
	Areas  []string `json:"areas"`
	Years  []string `json:"years"`
	Genres []string `json:"genres"`
	Sorts  []string `json:"sorts"`
}

// MovieFilter is the full tuple of filter selections. Empty fields mean "any".
type MovieFilter struct {
	CategoryID string
	Area       string
	Year       string
	Genre      string
	Sort       string
}

// GameCategory selects a lane of the game catalog.
type GameCategory string

const (
	GameCategoryAll    GameCategory = "all"
	GameCategoryAction GameCategory = "action"
	GameCategoryCasual GameCategory = "casual"
	GameCategoryPuzzle GameCategory = "puzzle"
	GameCategorySports GameCategory = "sports"
)

// GameCategories returns the lanes in display order.
func GameCategories() []GameCategory {
	return []GameCategory{GameCategoryAll, GameCategoryAction, GameCategoryCasual, GameCategoryPuzzle, GameCategorySports}
}

// Game is a playable web game entry.
type Game struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	IconURL  string       `json:"iconUrl"`
	PlayURL  string       `json:"playUrl"`
	Category GameCategory `json:"category"`
}

// Comment is a user comment on a movie.
type Comment struct {
	ID        string    `json:"id"`
	MovieID   string    `json:"movieId"`
	User      User      `json:"user"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is an account as seen by the client.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

// Credentials is the login/register input.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Name     string `validate:"omitempty,max=64"` // register only
	DeviceID string
}

// AuthPayload is what the auth repository returns on login/register.
type AuthPayload struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// HistoryItem is one entry of the viewer's watch history.
type HistoryItem struct {
	Movie     Movie         `json:"movie"`
	Episode   int           `json:"episode"`
	Progress  time.Duration `json:"progress"`
	WatchedAt time.Time     `json:"watchedAt"`
}

// Notification is a message addressed to the viewer.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Ad is a promotional slot (launch screen, home banner).
type Ad struct {
	ID       string `json:"id"`
	Position string `json:"position"`
	ImageURL string `json:"imageUrl"`
	LinkURL  string `json:"linkUrl"`
	Seconds  int    `json:"seconds"` // display duration for launch ads
}

// AppConfig is the remote client configuration.
type AppConfig struct {
	MinVersion     string   `json:"minVersion"`
	Announcement   string   `json:"announcement"`
	HotKeywords    []string `json:"hotKeywords"`
	CommentEnabled bool     `json:"commentEnabled"`
}

// Topic is a curated collection on the discovery screen.
type Topic struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CoverURL    string `json:"coverUrl"`
	Description string `json:"description"`
	MovieCount  int    `json:"movieCount"`
}

// Actor is a person listed on the discovery screen.
type Actor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Works     int    `json:"works"`
}

// ListItem implementation for Movie

func (m Movie) GetID() string    { return m.ID }
func (m Movie) GetTitle() string { return m.Title }

func (m Movie) GetDescription() string {
	parts := make([]string, 0, 3)
	if m.Year > 0 {
		parts = append(parts, fmt.Sprintf("%d", m.Year))
	}
	if m.Area != "" {
		parts = append(parts, m.Area)
	}
	if m.Episodes > 0 {
		parts = append(parts, fmt.Sprintf("%d eps", m.Episodes))
	}
	return strings.Join(parts, " · ")
}

func (t Topic) GetID() string          { return t.ID }
func (t Topic) GetTitle() string       { return t.Title }
func (t Topic) GetDescription() string { return fmt.Sprintf("%d titles", t.MovieCount) }

func (a Actor) GetID() string          { return a.ID }
func (a Actor) GetTitle() string       { return a.Name }
func (a Actor) GetDescription() string { return fmt.Sprintf("%d works", a.Works) }

func (g Game) GetID() string          { return g.ID }
func (g Game) GetTitle() string       { return g.Name }
func (g Game) GetDescription() string { return string(g.Category) }
