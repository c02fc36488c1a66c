package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/reel/internal/cache"
	"github.com/mmcdole/reel/internal/domain"
)

// NotificationState tracks marks in flight.
type NotificationState struct {
	Marking     map[string]bool
	MarkingAll  bool
	LastFailure string
}

// NotificationStore lists the viewer's notifications and marks them read
// optimistically.
type NotificationStore struct {
	List *cache.PaginatedCache[domain.Notification]

	repo    domain.NotificationRepository
	state   *cache.State[NotificationState]
	logger  *slog.Logger
	dispose func()
}

// NewNotificationStore creates the store; it empties itself on logout.
func NewNotificationStore(repo domain.NotificationRepository, session authWatcher, pageSize int, logger *slog.Logger) *NotificationStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &NotificationStore{
		List:   cache.NewPaginated(CacheNotifications, pager(repo.ListNotifications), pageSize, logger),
		repo:   repo,
		state:  cache.NewState(NotificationState{}),
		logger: logger,
	}
	s.dispose = session.WatchAuthenticated(func(authenticated bool) {
		if !authenticated {
			s.List.Reset()
		}
	})
	return s
}

func (s *NotificationStore) Refresh(ctx context.Context) error  { return s.List.Refresh(ctx) }
func (s *NotificationStore) LoadMore(ctx context.Context) error { return s.List.LoadMore(ctx) }

// Unread counts unread notifications among those loaded.
func (s *NotificationStore) Unread() int {
	n := 0
	for _, item := range s.List.Items() {
		if !item.Read {
			n++
		}
	}
	return n
}

// MarkRead marks one notification read before the server confirms it. It
// is a no-op for unknown or already read notifications and while the same
// notification is being marked. On failure the flag is restored.
func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	if !s.isUnread(id) {
		return nil
	}
	started := s.state.CommitIf(
		func(st NotificationState) bool { return !st.Marking[id] && !st.MarkingAll },
		func(st *NotificationState) {
			st.Marking = cloneFlags(st.Marking)
			st.Marking[id] = true
		},
	)
	if !started {
		return nil
	}

	s.setRead(map[string]bool{id: true})
	f := s.repo.MarkRead(ctx, id).Failure()
	if f != nil {
		s.setRead(map[string]bool{id: false})
	}

	s.state.Commit(func(st *NotificationState) {
		st.Marking = cloneFlags(st.Marking)
		delete(st.Marking, id)
		st.LastFailure = failureText(f)
	})
	if f != nil {
		s.logger.Error("failed to mark notification read", "id", id, "error", f)
		return f
	}
	return nil
}

// MarkAllRead marks every loaded notification read, restoring the previous
// flags when the call fails.
func (s *NotificationStore) MarkAllRead(ctx context.Context) error {
	started := s.state.CommitIf(
		func(st NotificationState) bool { return !st.MarkingAll && len(st.Marking) == 0 },
		func(st *NotificationState) { st.MarkingAll = true },
	)
	if !started {
		return nil
	}

	previous := make(map[string]bool)
	allRead := make(map[string]bool)
	for _, item := range s.List.Items() {
		previous[item.ID] = item.Read
		allRead[item.ID] = true
	}

	s.setRead(allRead)
	f := s.repo.MarkAllRead(ctx).Failure()
	if f != nil {
		s.setRead(previous)
	}

	s.state.Commit(func(st *NotificationState) {
		st.MarkingAll = false
		st.LastFailure = failureText(f)
	})
	if f != nil {
		s.logger.Error("failed to mark all notifications read", "error", f)
		return f
	}
	return nil
}

func (s *NotificationStore) isUnread(id string) bool {
	for _, item := range s.List.Items() {
		if item.ID == id {
			return !item.Read
		}
	}
	return false
}

// setRead applies read flags by id; ids not in the map are left alone.
func (s *NotificationStore) setRead(flags map[string]bool) {
	s.List.MapItems(func(n domain.Notification) domain.Notification {
		if read, ok := flags[n.ID]; ok {
			n.Read = read
		}
		return n
	})
}

// Snapshot returns the current state.
func (s *NotificationStore) Snapshot() NotificationState { return s.state.Get() }

// Subscribe registers fn for changes to the marking state.
func (s *NotificationStore) Subscribe(fn func(NotificationState)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}

// Dispose unlinks the store from the session. Safe to call more than once.
func (s *NotificationStore) Dispose() { s.dispose() }

func failureText(f *domain.Failure) string {
	if f == nil {
		return ""
	}
	return f.UserMessage()
}
