package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/service"
)

const commandTimeout = 30 * time.Second

// Command factories for async store operations. Results arrive through the
// observer; commands only report failures.

// runCmd runs fn with a timeout and turns a failure into an ErrMsg
func runCmd(what string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := contextWithTimeout()
		defer cancel()

		if err := fn(ctx); err != nil {
			return ErrMsg{Err: err, Context: what}
		}
		return nil
	}
}

func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

// InitBrowseCmd loads the filter options, categories and the first page
func InitBrowseCmd(s *service.FilterStore) tea.Cmd {
	return runCmd("loading catalog", s.Init)
}

// InitAppCmd loads the remote configuration and the viewer's counters
func InitAppCmd(app *service.AppStore, my *service.MyStore) tea.Cmd {
	return tea.Batch(
		runCmd("loading config", app.Init),
		runCmd("loading profile", my.RefreshUnread),
	)
}

// SetFilterCmd applies one filter change and reloads page 1
func SetFilterCmd(set func(ctx context.Context, value string) error, value string) tea.Cmd {
	return runCmd("filtering", func(ctx context.Context) error { return set(ctx, value) })
}

// RefreshMoviesCmd reloads the current filter
func RefreshMoviesCmd(s *service.FilterStore) tea.Cmd {
	return runCmd("refreshing", s.Refresh)
}

// LoadMoreMoviesCmd fetches the next page of the current filter
func LoadMoreMoviesCmd(s *service.FilterStore) tea.Cmd {
	return runCmd("loading more", s.LoadMore)
}

// SearchCmd runs a keyword search
func SearchCmd(s *service.SearchStore, keyword string) tea.Cmd {
	return runCmd("searching", func(ctx context.Context) error { return s.Search(ctx, keyword) })
}

// LoadMoreResultsCmd fetches the next page of search results
func LoadMoreResultsCmd(s *service.SearchStore) tea.Cmd {
	return runCmd("loading more", s.LoadMore)
}

// LoadDetailCmd opens a movie
func LoadDetailCmd(s *service.MovieDetailStore, movieID string) tea.Cmd {
	return runCmd("loading movie", func(ctx context.Context) error { return s.Load(ctx, movieID) })
}

// ToggleFavoriteCmd flips the favorite relation of the open movie
func ToggleFavoriteCmd(s *service.MovieDetailStore) tea.Cmd {
	return runCmd("updating favorite", s.ToggleFavorite)
}

// ToggleSubscribeCmd flips the subscription of the open movie
func ToggleSubscribeCmd(s *service.MovieDetailStore) tea.Cmd {
	return runCmd("updating subscription", s.ToggleSubscribe)
}

// LoadMoreCommentsCmd fetches the next page of comments
func LoadMoreCommentsCmd(s *service.MovieDetailStore) tea.Cmd {
	return runCmd("loading comments", s.LoadMoreComments)
}

// SubmitCommentCmd posts a comment on the open movie. A submit skipped
// because another is in flight reports nothing.
func SubmitCommentCmd(s *service.MovieDetailStore, body string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := contextWithTimeout()
		defer cancel()

		posted, err := s.PostComment(ctx, body)
		if err != nil {
			return ErrMsg{Err: err, Context: "posting comment"}
		}
		if !posted {
			return nil
		}
		return CommentPostedMsg{}
	}
}

// errorText is the footer text for a failed command
func errorText(msg ErrMsg) string {
	return msg.Context + ": " + domain.UserMessage(msg.Err)
}
