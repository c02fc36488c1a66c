package domain

// SessionStorage persists credentials across process restarts.
// Calls are synchronous and never fail from the caller's point of view;
// implementations log their own I/O errors.
type SessionStorage interface {
	// Token returns the persisted token, or "" when none is stored
	Token() string
	SetToken(token string)
	RemoveToken()

	// CachedUser returns the persisted user, if any
	CachedUser() (User, bool)
	SetCachedUser(user User)
	RemoveCachedUser()

	// DeviceID returns a stable per-installation identifier, creating it on first use
	DeviceID() string

	// Clear removes token and user. The device id survives.
	Clear()

	Close() error
}
