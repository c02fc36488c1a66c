package cache

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/samber/mo"

	"github.com/mmcdole/reel/internal/domain"
)

// Loader fetches the aggregate value for one key.
type Loader[K comparable, V any] func(ctx context.Context, key K) domain.Result[V]

// KeyedState is the observable state of a Keyed cache.
type KeyedState[K comparable, V any] struct {
	Current      K
	HasCurrent   bool
	Entries      map[K]V
	Loading      map[K]bool
	ErrorMessage string

	epoch int
}

// IsLoading reports whether the current key is loading.
func (s KeyedState[K, V]) IsLoading() bool {
	return s.HasCurrent && s.Loading[s.Current]
}

// Keyed maps a selector key to a lazily loaded aggregate value. Each key is
// loaded at most once unless Refresh is called for it.
type Keyed[K comparable, V any] struct {
	name   string
	load   Loader[K, V]
	state  *State[KeyedState[K, V]]
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewKeyed creates an empty keyed cache.
func NewKeyed[K comparable, V any](name string, load Loader[K, V], logger *slog.Logger) *Keyed[K, V] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Keyed[K, V]{
		name:   name,
		load:   load,
		state:  NewState(KeyedState[K, V]{}),
		logger: logger,
	}
}

// Select makes key current. If key has never been requested its load is
// started in the background and Select returns without waiting for it.
// Selecting a key that is cached or loading does nothing else.
func (k *Keyed[K, V]) Select(ctx context.Context, key K) {
	var (
		schedule bool
		epoch    int
	)
	k.state.Commit(func(s *KeyedState[K, V]) {
		s.Current = key
		s.HasCurrent = true
		epoch = s.epoch
		if _, ok := s.Entries[key]; ok || s.Loading[key] {
			return
		}
		s.Loading = cloneSet(s.Loading)
		s.Loading[key] = true
		schedule = true
	})
	if !schedule {
		k.logger.Debug("key already cached", "cache", k.name, "key", key)
		return
	}

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		k.fetch(context.WithoutCancel(ctx), key, epoch)
	}()
}

// Refresh reloads the current key and waits for the result. It is a no-op
// when nothing is selected or the current key is already loading.
func (k *Keyed[K, V]) Refresh(ctx context.Context) error {
	var (
		key   K
		epoch int
	)
	started := k.state.CommitIf(
		func(s KeyedState[K, V]) bool { return s.HasCurrent && !s.Loading[s.Current] },
		func(s *KeyedState[K, V]) {
			key = s.Current
			epoch = s.epoch
			s.Loading = cloneSet(s.Loading)
			s.Loading[key] = true
		},
	)
	if !started {
		return nil
	}
	return k.fetch(ctx, key, epoch)
}

func (k *Keyed[K, V]) fetch(ctx context.Context, key K, epoch int) error {
	res := k.load(ctx, key)
	f := res.Failure()

	k.state.Commit(func(s *KeyedState[K, V]) {
		if s.epoch != epoch {
			return
		}
		s.Loading = maps.Clone(s.Loading)
		delete(s.Loading, key)
		if f != nil {
			// The key stays unrequested so selecting it again retries.
			s.ErrorMessage = f.UserMessage()
			return
		}
		s.Entries = maps.Clone(s.Entries)
		if s.Entries == nil {
			s.Entries = make(map[K]V)
		}
		s.Entries[key] = res.Value()
		s.ErrorMessage = ""
	})

	if f != nil {
		k.logger.Error("failed to load entry", "cache", k.name, "key", key, "error", f)
		return f
	}
	k.logger.Debug("loaded entry", "cache", k.name, "key", key)
	return nil
}

// Current returns the value for the current key, if loaded.
func (k *Keyed[K, V]) Current() mo.Option[V] {
	s := k.state.Get()
	if !s.HasCurrent {
		return mo.None[V]()
	}
	return lookup(s.Entries, s.Current)
}

// Get returns the cached value for key, if loaded.
func (k *Keyed[K, V]) Get(key K) mo.Option[V] {
	return lookup(k.state.Get().Entries, key)
}

// Snapshot returns the current state.
func (k *Keyed[K, V]) Snapshot() KeyedState[K, V] { return k.state.Get() }

// Subscribe registers fn for every committed change.
func (k *Keyed[K, V]) Subscribe(fn func(KeyedState[K, V])) (unsubscribe func()) {
	return k.state.Subscribe(fn)
}

// Clear drops all entries but keeps the current key. Loads in flight are
// discarded when they resolve, and their keys can be selected again at once.
func (k *Keyed[K, V]) Clear() {
	k.state.Commit(func(s *KeyedState[K, V]) {
		s.Entries = nil
		s.Loading = nil
		s.ErrorMessage = ""
		s.epoch++
	})
}

// Wait blocks until every background load started by Select has finished.
func (k *Keyed[K, V]) Wait() { k.wg.Wait() }

func lookup[K comparable, V any](m map[K]V, key K) mo.Option[V] {
	if v, ok := m[key]; ok {
		return mo.Some(v)
	}
	return mo.None[V]()
}

func cloneSet[K comparable](m map[K]bool) map[K]bool {
	if m == nil {
		return make(map[K]bool, 1)
	}
	return maps.Clone(m)
}

// Selection is the observable state of a KeyedPages cache.
type Selection[K comparable] struct {
	Current    K
	HasCurrent bool
	Version    int // bumped on any change to any page list
}

// KeyedPages maps a selector key to its own PaginatedCache.
type KeyedPages[K comparable, T any] struct {
	name     string
	factory  func(K) FetchPage[T]
	pageSize int
	logger   *slog.Logger

	sel *State[Selection[K]]

	mu        sync.Mutex
	caches    map[K]*PaginatedCache[T]
	requested map[K]bool

	wg sync.WaitGroup
}

// NewKeyedPages creates an empty keyed paginated cache. factory builds the
// page fetcher for a key the first time it is selected.
func NewKeyedPages[K comparable, T any](name string, factory func(K) FetchPage[T], pageSize int, logger *slog.Logger) *KeyedPages[K, T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &KeyedPages[K, T]{
		name:      name,
		factory:   factory,
		pageSize:  pageSize,
		logger:    logger,
		sel:       NewState(Selection[K]{}),
		caches:    make(map[K]*PaginatedCache[T]),
		requested: make(map[K]bool),
	}
}

// Select makes key current and, the first time, loads its first page in
// the background. The first load is unguarded so a stale refresh left over
// from Clear cannot swallow it.
func (kp *KeyedPages[K, T]) Select(ctx context.Context, key K) {
	kp.sel.Commit(func(s *Selection[K]) {
		s.Current = key
		s.HasCurrent = true
	})

	kp.mu.Lock()
	c := kp.cacheLocked(key)
	if kp.requested[key] {
		kp.mu.Unlock()
		kp.logger.Debug("key already requested", "cache", kp.name, "key", key)
		return
	}
	kp.requested[key] = true
	kp.mu.Unlock()

	kp.wg.Add(1)
	go func() {
		defer kp.wg.Done()
		if err := c.Load(context.WithoutCancel(ctx), 1); err != nil {
			kp.mu.Lock()
			delete(kp.requested, key)
			kp.mu.Unlock()
		}
	}()
}

func (kp *KeyedPages[K, T]) cacheLocked(key K) *PaginatedCache[T] {
	if c, ok := kp.caches[key]; ok {
		return c
	}
	c := NewPaginated(kp.name, kp.factory(key), kp.pageSize, kp.logger)
	c.Subscribe(func(Page[T]) {
		kp.sel.Commit(func(s *Selection[K]) { s.Version++ })
	})
	kp.caches[key] = c
	return c
}

// CurrentKey returns the selected key.
func (kp *KeyedPages[K, T]) CurrentKey() (K, bool) {
	s := kp.sel.Get()
	return s.Current, s.HasCurrent
}

// Cache returns the list for key, if it was ever selected.
func (kp *KeyedPages[K, T]) Cache(key K) (*PaginatedCache[T], bool) {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	c, ok := kp.caches[key]
	return c, ok
}

// Current returns the page state of the current key, or an empty default.
func (kp *KeyedPages[K, T]) Current() Page[T] {
	if c := kp.current(); c != nil {
		return c.Snapshot()
	}
	return Page[T]{Paginator: domain.DefaultPaginator()}
}

func (kp *KeyedPages[K, T]) current() *PaginatedCache[T] {
	key, ok := kp.CurrentKey()
	if !ok {
		return nil
	}
	c, _ := kp.Cache(key)
	return c
}

// Refresh reloads page 1 of the current key.
func (kp *KeyedPages[K, T]) Refresh(ctx context.Context) error {
	if c := kp.current(); c != nil {
		return c.Refresh(ctx)
	}
	return nil
}

// LoadMore appends the next page of the current key.
func (kp *KeyedPages[K, T]) LoadMore(ctx context.Context) error {
	if c := kp.current(); c != nil {
		return c.LoadMore(ctx)
	}
	return nil
}

// Subscribe registers fn for selection changes and any page change.
func (kp *KeyedPages[K, T]) Subscribe(fn func(Selection[K])) (unsubscribe func()) {
	return kp.sel.Subscribe(fn)
}

// Clear resets every list and forgets which keys were requested.
func (kp *KeyedPages[K, T]) Clear() {
	kp.mu.Lock()
	caches := make([]*PaginatedCache[T], 0, len(kp.caches))
	for _, c := range kp.caches {
		caches = append(caches, c)
	}
	kp.requested = make(map[K]bool)
	kp.mu.Unlock()

	for _, c := range caches {
		c.Reset()
	}
}

// Wait blocks until every background load started by Select has finished.
func (kp *KeyedPages[K, T]) Wait() { kp.wg.Wait() }
