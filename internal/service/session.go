package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mmcdole/reel/internal/cache"
	"github.com/mmcdole/reel/internal/domain"
)

// SessionStatus is the lifecycle stage of a session.
type SessionStatus int

const (
	StatusAnonymous SessionStatus = iota
	StatusAuthenticating
	StatusAuthenticated
)

func (s SessionStatus) String() string {
	switch s {
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// SessionState is the observable state of a SessionStore.
// Token and User are always set and cleared together.
type SessionState struct {
	Status          SessionStatus
	Token           string
	User            *domain.User
	ErrorMessage    string
	LoginPromptOpen bool
}

// IsAuthenticated reports whether both token and user are present.
func (s SessionState) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

func (s *SessionState) setSession(token string, user *domain.User) {
	if token == "" || user == nil {
		token, user = "", nil
	}
	s.Token = token
	s.User = user
	if s.IsAuthenticated() {
		s.Status = StatusAuthenticated
	} else {
		s.Status = StatusAnonymous
	}
}

// SessionStore owns the viewer's token and user. It is the only writer of
// the persisted session.
type SessionStore struct {
	auth     domain.AuthRepository
	storage  domain.SessionStorage
	validate *validator.Validate
	state    *cache.State[SessionState]
	logger   *slog.Logger
}

// NewSessionStore creates an anonymous session. Call Restore to pick up a
// persisted one.
func NewSessionStore(auth domain.AuthRepository, storage domain.SessionStorage, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		auth:     auth,
		storage:  storage,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		state:    cache.NewState(SessionState{}),
		logger:   logger,
	}
}

// Login authenticates with credentials. It returns nil on success, nil
// without doing anything while another authentication is in flight, and
// the failure otherwise.
func (s *SessionStore) Login(ctx context.Context, creds domain.Credentials) error {
	return s.authenticate(ctx, "login", creds, s.auth.Login)
}

// Register creates an account and logs in with it.
func (s *SessionStore) Register(ctx context.Context, creds domain.Credentials) error {
	return s.authenticate(ctx, "register", creds, s.auth.Register)
}

func (s *SessionStore) authenticate(
	ctx context.Context,
	op string,
	creds domain.Credentials,
	call func(context.Context, domain.Credentials) domain.Result[domain.AuthPayload],
) error {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := s.validate.Struct(creds); err != nil {
		f := domain.ValidationFailure(credentialMessage(err))
		s.state.Commit(func(st *SessionState) { st.ErrorMessage = f.UserMessage() })
		s.logger.Debug("rejected credentials", "op", op, "error", err)
		return f
	}

	if !s.begin() {
		s.logger.Debug("skipped "+op, "reason", "authentication in flight")
		return nil
	}

	creds.DeviceID = s.storage.DeviceID()
	res := call(ctx, creds)

	payload, err := res.Get()
	if err == nil && (payload.Token == "" || payload.User.ID == "") {
		err = domain.DataFailure("incomplete session returned", nil)
	}
	if err != nil {
		f := domain.AsFailure(err)
		s.state.Commit(func(st *SessionState) {
			st.setSession(st.Token, st.User)
			st.ErrorMessage = f.UserMessage()
		})
		s.logger.Error("failed to "+op, "error", f)
		return f
	}

	s.storage.SetToken(payload.Token)
	s.storage.SetCachedUser(payload.User)
	user := payload.User
	s.state.Commit(func(st *SessionState) {
		st.setSession(payload.Token, &user)
		st.ErrorMessage = ""
		st.LoginPromptOpen = false
	})
	s.logger.Info("authenticated", "op", op, "user", user.ID)
	return nil
}

func (s *SessionStore) begin() bool {
	return s.state.CommitIf(
		func(st SessionState) bool { return st.Status != StatusAuthenticating },
		func(st *SessionState) {
			st.Status = StatusAuthenticating
			st.ErrorMessage = ""
		},
	)
}

// Restore re-validates a persisted token. Tokens whose expiry claim has
// passed are dropped without a network call. It reports whether the
// session is authenticated afterwards.
func (s *SessionStore) Restore(ctx context.Context) bool {
	token := s.storage.Token()
	if token == "" {
		return false
	}
	if tokenExpired(token, time.Now()) {
		s.logger.Info("discarding expired session token")
		s.storage.Clear()
		return false
	}

	if !s.begin() {
		return s.IsAuthenticated()
	}

	if cached, ok := s.storage.CachedUser(); ok {
		s.logger.Debug("validating cached session", "user", cached.ID)
	}

	res := s.auth.CurrentUser(ctx, token)
	user, err := res.Get()
	if err == nil && user.ID == "" {
		err = domain.DataFailure("no user for token", nil)
	}
	if err != nil {
		s.storage.Clear()
		s.state.Commit(func(st *SessionState) { st.setSession("", nil) })
		s.logger.Warn("failed to restore session", "error", err)
		return false
	}

	s.storage.SetCachedUser(user)
	s.state.Commit(func(st *SessionState) {
		st.setSession(token, &user)
		st.ErrorMessage = ""
	})
	s.logger.Info("restored session", "user", user.ID)
	return true
}

// tokenExpired reports whether token is a JWT whose exp is before now.
// Opaque tokens are never considered expired here.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

// Logout ends the session. The remote call is best-effort; local state and
// storage are cleared regardless of its outcome.
func (s *SessionStore) Logout(ctx context.Context) {
	if token := s.state.Get().Token; token != "" {
		if f := s.auth.Logout(ctx, token).Failure(); f != nil {
			s.logger.Warn("remote logout failed", "error", f)
		}
	}
	s.storage.Clear()
	s.state.Commit(func(st *SessionState) {
		st.setSession("", nil)
		st.ErrorMessage = ""
	})
	s.logger.Info("logged out")
}

// HandleUnauthenticated drops the session after the backend rejected the
// token and asks the viewer to log in. Safe to call in any state.
func (s *SessionStore) HandleUnauthenticated() {
	s.storage.Clear()
	s.state.Commit(func(st *SessionState) {
		st.setSession("", nil)
		st.LoginPromptOpen = true
	})
	s.logger.Warn("session rejected by backend")
}

func (s *SessionStore) OpenLoginPrompt() {
	s.state.Commit(func(st *SessionState) { st.LoginPromptOpen = true })
}

func (s *SessionStore) CloseLoginPrompt() {
	s.state.Commit(func(st *SessionState) {
		st.LoginPromptOpen = false
		st.ErrorMessage = ""
	})
}

// IsAuthenticated reports whether a token and user are present.
func (s *SessionStore) IsAuthenticated() bool { return s.state.Get().IsAuthenticated() }

// State returns the current snapshot.
func (s *SessionStore) State() SessionState { return s.state.Get() }

// User returns the signed-in user, if any.
func (s *SessionStore) User() (domain.User, bool) {
	st := s.state.Get()
	if st.User == nil {
		return domain.User{}, false
	}
	return *st.User, true
}

// Subscribe registers fn for every committed change.
func (s *SessionStore) Subscribe(fn func(SessionState)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}

// WatchAuthenticated calls effect each time IsAuthenticated changes, never
// for the initial value. The returned function stops watching and may be
// called more than once.
func (s *SessionStore) WatchAuthenticated(effect func(bool)) (dispose func()) {
	return cache.React(s.state, SessionState.IsAuthenticated, effect).Dispose
}

// credentialMessage turns validator output into one line for the viewer.
func credentialMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid credentials"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "email address is invalid"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
