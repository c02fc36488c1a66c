package catalog

import (
	"time"

	"github.com/mmcdole/reel/internal/domain"
)

// Fixture is the on-disk shape of a catalog file
type Fixture struct {
	AppConfig     domain.AppConfig      `json:"appConfig"`
	Categories    []domain.Category     `json:"categories"`
	FilterOptions *domain.FilterOptions `json:"filterOptions,omitempty"` // derived from movies when absent
	Movies        []domain.Movie        `json:"movies"`
	Games         []domain.Game         `json:"games"`
	Topics        []domain.Topic        `json:"topics"`
	Actors        []domain.Actor        `json:"actors"`
	Ads           []domain.Ad           `json:"ads"`
	Accounts      []Account             `json:"accounts"`
	Comments      []CommentDTO          `json:"comments"`
	History       []HistoryDTO          `json:"history"`
	Notifications []domain.Notification `json:"notifications"`
	Favorites     []string              `json:"favorites"`     // movie ids, newest first
	Subscriptions []string              `json:"subscriptions"` // movie ids
}

// Account is a user that can log in to the offline catalog
type Account struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// CommentDTO is a fixture comment; the author is referenced by account id
type CommentDTO struct {
	ID        string    `json:"id"`
	MovieID   string    `json:"movieId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryDTO is a fixture watch-history entry
type HistoryDTO struct {
	MovieID         string    `json:"movieId"`
	Episode         int       `json:"episode"`
	ProgressSeconds int       `json:"progressSeconds"`
	WatchedAt       time.Time `json:"watchedAt"`
}
