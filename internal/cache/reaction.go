package cache

import "sync"

// Reaction runs a side effect whenever a value derived from a State changes.
type Reaction[S any, V comparable] struct {
	state    *State[S]
	selector func(S) V
	effect   func(V)

	mu       sync.Mutex
	last     V
	disposed bool

	unsubscribe func()
}

// React watches selector(state) and calls effect with the new value every
// time it changes. The effect does not run for the value present at
// registration. Effects run synchronously on the committing goroutine.
func React[S any, V comparable](state *State[S], selector func(S) V, effect func(V)) *Reaction[S, V] {
	r := &Reaction[S, V]{
		state:    state,
		selector: selector,
		effect:   effect,
		last:     selector(state.Get()),
	}
	r.unsubscribe = state.Subscribe(func(S) { r.check() })
	return r
}

func (r *Reaction[S, V]) check() {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return
	}
	// Read the live snapshot rather than the notified one: notifications of
	// concurrent commits may arrive out of order.
	v := r.selector(r.state.Get())
	if v == r.last {
		r.mu.Unlock()
		return
	}
	r.last = v
	r.mu.Unlock()

	r.effect(v)
}

// Dispose stops the reaction. Safe to call any number of times.
func (r *Reaction[S, V]) Dispose() {
	r.mu.Lock()
	r.disposed = true
	r.mu.Unlock()
	r.unsubscribe()
}
