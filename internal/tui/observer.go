package tui

import tea "github.com/charmbracelet/bubbletea"

// Observer coalesces store notifications into a single pending signal for
// Bubble Tea. Stores notify from whatever goroutine committed; the model
// re-reads snapshots on the UI goroutine.
type Observer struct {
	ch       chan struct{}
	disposes []func()
}

// NewObserver creates an observer with no subscriptions.
func NewObserver() *Observer {
	return &Observer{ch: make(chan struct{}, 1)}
}

// Watch registers an unsubscribe func returned by a store's Subscribe.
// Use it as: o.Watch(store.Subscribe(Notify[State](o)))
func (o *Observer) Watch(unsubscribe func()) {
	o.disposes = append(o.disposes, unsubscribe)
}

// Notify returns a subscriber callback that signals o.
func Notify[S any](o *Observer) func(S) {
	return func(S) { o.signal() }
}

func (o *Observer) signal() {
	select {
	case o.ch <- struct{}{}:
	default: // a signal is already pending
	}
}

// Wait returns a command that delivers the next change.
func (o *Observer) Wait() tea.Cmd {
	return func() tea.Msg {
		<-o.ch
		return StoreChangedMsg{}
	}
}

// Close drops every subscription.
func (o *Observer) Close() {
	for _, dispose := range o.disposes {
		dispose()
	}
	o.disposes = nil
}
