package cache

import (
	"context"
	"log/slog"

	"github.com/mmcdole/reel/internal/domain"
)

// Mutation is one side of a toggle: add or remove a relation for key.
type Mutation func(ctx context.Context, key string) domain.Result[domain.Unit]

// ToggleState is the observable state of a Toggle.
type ToggleState struct {
	Key      string
	Active   bool
	InFlight bool
}

// Toggle flips a boolean relation optimistically: the local state changes
// before the network call and is reverted when the call fails.
type Toggle struct {
	name   string
	add    Mutation
	remove Mutation
	state  *State[ToggleState]
	logger *slog.Logger
}

// NewToggle creates a toggle with no key; Flip is a no-op until Reset sets one.
func NewToggle(name string, add, remove Mutation, logger *slog.Logger) *Toggle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toggle{
		name:   name,
		add:    add,
		remove: remove,
		state:  NewState(ToggleState{}),
		logger: logger,
	}
}

// Reset points the toggle at key with a known state, e.g. after loading a detail page.
func (t *Toggle) Reset(key string, active bool) {
	t.state.Commit(func(s *ToggleState) {
		s.Key = key
		s.Active = active
	})
}

// Flip inverts the relation. It returns nil without touching the network
// when no key is set or a flip is already in flight. On failure the local
// state is restored and the failure returned; its UserMessage is meant for
// the viewer.
func (t *Toggle) Flip(ctx context.Context) error {
	var was bool
	var key string
	started := t.state.CommitIf(
		func(s ToggleState) bool { return s.Key != "" && !s.InFlight },
		func(s *ToggleState) {
			was = s.Active
			key = s.Key
			s.Active = !was
			s.InFlight = true
		},
	)
	if !started {
		t.logger.Debug("skipped toggle", "toggle", t.name, "reason", "guarded")
		return nil
	}

	call := t.add
	if was {
		call = t.remove
	}
	f := call(ctx, key).Failure()

	t.state.Commit(func(s *ToggleState) {
		s.InFlight = false
		if f != nil && s.Key == key {
			s.Active = was
		}
	})

	if f != nil {
		t.logger.Error("failed to toggle", "toggle", t.name, "key", key, "to", !was, "error", f)
		return f
	}
	t.logger.Debug("toggled", "toggle", t.name, "key", key, "active", !was)
	return nil
}

// Snapshot returns the current state.
func (t *Toggle) Snapshot() ToggleState { return t.state.Get() }

// Active reports the (possibly optimistic) relation state.
func (t *Toggle) Active() bool { return t.state.Get().Active }

// InFlight reports whether a flip is waiting on the network.
func (t *Toggle) InFlight() bool { return t.state.Get().InFlight }

// Subscribe registers fn for every committed change.
func (t *Toggle) Subscribe(fn func(ToggleState)) (unsubscribe func()) {
	return t.state.Subscribe(fn)
}
