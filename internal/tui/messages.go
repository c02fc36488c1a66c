package tui

// Message types for the TUI

// ErrMsg represents a failed command
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// StoreChangedMsg signals that at least one observed store committed a change
type StoreChangedMsg struct{}

// StatusMsg shows a transient line in the footer
type StatusMsg struct {
	Text  string
	IsErr bool
}

// CommentPostedMsg signals a successful comment submission
type CommentPostedMsg struct{}
