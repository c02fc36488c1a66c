// Package cache holds the building blocks every store is made of: an
// observable state container, paginated and keyed caches, the optimistic
// toggle and the reaction used to link stores together.
//
// All state changes go through a commit so observers see either the state
// before an operation or the state after it, never a half-applied one.
package cache

import (
	"sync"
)

// State is an observable snapshot of S. Snapshots are treated as immutable:
// a commit copies the current value, mutates the copy and swaps it in.
// Slices inside S must be replaced, not written through, by commit functions.
type State[S any] struct {
	mu   sync.RWMutex
	snap S

	subMu  sync.RWMutex
	subs   map[int]func(S)
	nextID int
}

// NewState creates a State holding initial.
func NewState[S any](initial S) *State[S] {
	return &State[S]{snap: initial, subs: make(map[int]func(S))}
}

// Get returns the current snapshot.
func (s *State[S]) Get() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Commit applies fn to a copy of the snapshot and publishes the result.
func (s *State[S]) Commit(fn func(*S)) {
	s.CommitIf(nil, fn)
}

// CommitIf applies fn only when pred holds for the current snapshot. The
// check and the write happen under one lock, which is what makes guard flags
// safe against concurrent callers. A nil pred always holds.
func (s *State[S]) CommitIf(pred func(S) bool, fn func(*S)) bool {
	s.mu.Lock()
	if pred != nil && !pred(s.snap) {
		s.mu.Unlock()
		return false
	}
	next := s.snap
	fn(&next)
	s.snap = next
	s.mu.Unlock()

	s.notify(next)
	return true
}

// Subscribe registers fn to receive every committed snapshot. The returned
// function removes the subscription and may be called more than once.
func (s *State[S]) Subscribe(fn func(S)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *State[S]) notify(snap S) {
	s.subMu.RLock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	s.subMu.RUnlock()

	// Re-check membership per call so an unsubscribe issued by an earlier
	// subscriber takes effect immediately.
	for _, id := range ids {
		s.subMu.RLock()
		fn, ok := s.subs[id]
		s.subMu.RUnlock()
		if ok {
			fn(snap)
		}
	}
}
