package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/reel/internal/cache"
	"github.com/mmcdole/reel/internal/domain"
)

// DiscoveryTab selects a list on the discovery screen.
type DiscoveryTab int

const (
	TabTopics DiscoveryTab = iota
	TabActors
)

func (t DiscoveryTab) String() string {
	if t == TabActors {
		return CacheActors
	}
	return CacheTopics
}

// DiscoveryState is the tab selection.
type DiscoveryState struct {
	Tab    DiscoveryTab
	Loaded map[DiscoveryTab]bool // tabs whose first load was started
}

// DiscoveryStore holds two independent lists behind a tab switch. Each tab
// loads once, on first activation.
type DiscoveryStore struct {
	Topics *cache.PaginatedCache[domain.Topic]
	Actors *cache.PaginatedCache[domain.Actor]

	state  *cache.State[DiscoveryState]
	logger *slog.Logger
}

// NewDiscoveryStore creates the store with the topics tab active.
func NewDiscoveryStore(topics domain.TopicRepository, actors domain.ActorRepository, pageSize int, logger *slog.Logger) *DiscoveryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiscoveryStore{
		Topics: cache.NewPaginated(CacheTopics, pager(topics.ListTopics), pageSize, logger),
		Actors: cache.NewPaginated(CacheActors, pager(actors.ListActors), pageSize, logger),
		state:  cache.NewState(DiscoveryState{}),
		logger: logger,
	}
}

// Init activates the current tab.
func (s *DiscoveryStore) Init(ctx context.Context) error {
	return s.SetTab(ctx, s.state.Get().Tab)
}

// SetTab switches tabs and loads the tab if it never loaded. It returns
// the load's failure, or nil when nothing had to be loaded.
func (s *DiscoveryStore) SetTab(ctx context.Context, tab DiscoveryTab) error {
	var first bool
	s.state.Commit(func(st *DiscoveryState) {
		st.Tab = tab
		if st.Loaded[tab] {
			return
		}
		st.Loaded = cloneFlags(st.Loaded)
		st.Loaded[tab] = true
		first = true
	})
	if !first {
		return nil
	}

	err := s.refresh(ctx, tab)
	if err != nil {
		// Let the next activation retry.
		s.state.Commit(func(st *DiscoveryState) {
			st.Loaded = cloneFlags(st.Loaded)
			delete(st.Loaded, tab)
		})
	}
	return err
}

func (s *DiscoveryStore) refresh(ctx context.Context, tab DiscoveryTab) error {
	if tab == TabActors {
		return s.Actors.Refresh(ctx)
	}
	return s.Topics.Refresh(ctx)
}

// Tab returns the active tab.
func (s *DiscoveryStore) Tab() DiscoveryTab { return s.state.Get().Tab }

// Refresh reloads the active tab.
func (s *DiscoveryStore) Refresh(ctx context.Context) error { return s.refresh(ctx, s.Tab()) }

// LoadMore appends to the active tab.
func (s *DiscoveryStore) LoadMore(ctx context.Context) error {
	if s.Tab() == TabActors {
		return s.Actors.LoadMore(ctx)
	}
	return s.Topics.LoadMore(ctx)
}

// Subscribe registers fn for tab switches.
func (s *DiscoveryStore) Subscribe(fn func(DiscoveryState)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}
