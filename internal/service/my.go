package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/reel/internal/cache"
	"github.com/mmcdole/reel/internal/domain"
)

// MyState is the observable state of a MyStore beyond its lists.
type MyState struct {
	UnreadCount    int
	IsLoadingCount bool
	ErrorMessage   string
}

// MyStore aggregates the viewer's personal data: watch history, favorites
// and the unread notification count. Everything is dropped when the session
// logs out.
type MyStore struct {
	History   *cache.PaginatedCache[domain.HistoryItem]
	Favorites *cache.PaginatedCache[domain.Movie]

	notifications domain.NotificationRepository
	state         *cache.State[MyState]
	logger        *slog.Logger

	dispose func()
}

// NewMyStore creates the store and links it to session.
func NewMyStore(
	history domain.HistoryRepository,
	favorites domain.FavoriteRepository,
	notifications domain.NotificationRepository,
	session authWatcher,
	pageSize int,
	logger *slog.Logger,
) *MyStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &MyStore{
		History:       cache.NewPaginated(CacheHistory, pager(history.ListHistory), pageSize, logger),
		Favorites:     cache.NewPaginated(CacheFavorites, pager(favorites.ListFavorites), pageSize, logger),
		notifications: notifications,
		state:         cache.NewState(MyState{}),
		logger:        logger,
	}
	s.dispose = session.WatchAuthenticated(func(authenticated bool) {
		if !authenticated {
			s.clear()
		}
	})
	return s
}

// Init loads history, favorites and the unread count concurrently. A failure
// stays in its own cache; the first one is returned.
func (s *MyStore) Init(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return s.History.Refresh(ctx) })
	g.Go(func() error { return s.Favorites.Refresh(ctx) })
	g.Go(func() error { return s.RefreshUnread(ctx) })
	return g.Wait()
}

// RefreshUnread reloads the unread notification count.
func (s *MyStore) RefreshUnread(ctx context.Context) error {
	started := s.state.CommitIf(
		func(st MyState) bool { return !st.IsLoadingCount },
		func(st *MyState) { st.IsLoadingCount = true },
	)
	if !started {
		return nil
	}

	res := s.notifications.UnreadCount(ctx)
	f := res.Failure()
	s.state.Commit(func(st *MyState) {
		st.IsLoadingCount = false
		if f != nil {
			st.ErrorMessage = f.UserMessage()
			return
		}
		st.UnreadCount = res.Value()
		st.ErrorMessage = ""
	})
	if f != nil {
		s.logger.Error("failed to load unread count", "error", f)
		return f
	}
	return nil
}

// clear runs synchronously on the goroutine that logged out.
func (s *MyStore) clear() {
	s.History.Reset()
	s.Favorites.Reset()
	s.state.Commit(func(st *MyState) {
		st.UnreadCount = 0
		st.ErrorMessage = ""
	})
	s.logger.Debug("cleared personal data after logout")
}

// UnreadCount returns the cached unread count.
func (s *MyStore) UnreadCount() int { return s.state.Get().UnreadCount }

// FormattedUnread returns the unread count as shown on a badge.
func (s *MyStore) FormattedUnread() string { return FormatBadge(s.UnreadCount()) }

// Snapshot returns the current state.
func (s *MyStore) Snapshot() MyState { return s.state.Get() }

// Subscribe registers fn for changes to the unread count.
func (s *MyStore) Subscribe(fn func(MyState)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}

// Dispose unlinks the store from the session. Safe to call more than once.
func (s *MyStore) Dispose() { s.dispose() }
