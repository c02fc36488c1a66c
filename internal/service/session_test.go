package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/mocks"
)

// assertConsistent checks that token and user are never set alone.
func assertConsistent(t *testing.T, s *SessionStore) func() {
	t.Helper()
	var mu sync.Mutex
	var bad []SessionState
	unsub := s.Subscribe(func(st SessionState) {
		if (st.Token == "") != (st.User == nil) {
			mu.Lock()
			bad = append(bad, st)
			mu.Unlock()
		}
	})
	return func() {
		unsub()
		mu.Lock()
		defer mu.Unlock()
		assert.Empty(t, bad, "token and user must change together")
	}
}

func TestSessionStore_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success sets token and user together", func(t *testing.T) {
		storage := mocks.NewMockSessionStorage("", nil)
		auth := okLogin()
		var sentDevice string
		auth.LoginFn = func(ctx context.Context, creds domain.Credentials) domain.Result[domain.AuthPayload] {
			sentDevice = creds.DeviceID
			return domain.Ok(domain.AuthPayload{Token: "tok-1", User: testUser})
		}
		s := NewSessionStore(auth, storage, testLogger())
		check := assertConsistent(t, s)
		s.OpenLoginPrompt()

		require.NoError(t, s.Login(ctx, goodCreds))
		check()

		st := s.State()
		assert.True(t, st.IsAuthenticated())
		assert.Equal(t, StatusAuthenticated, st.Status)
		assert.False(t, st.LoginPromptOpen)
		assert.Empty(t, st.ErrorMessage)
		assert.Equal(t, "tok-1", storage.Token())
		assert.Equal(t, "device-1", sentDevice)
		user, ok := s.User()
		require.True(t, ok)
		assert.Equal(t, testUser, user)
	})

	t.Run("failure stays anonymous and reports the message", func(t *testing.T) {
		storage := mocks.NewMockSessionStorage("", nil)
		s := NewSessionStore(&mocks.MockAuthRepository{}, storage, testLogger())

		err := s.Login(ctx, goodCreds)

		require.Error(t, err)
		assert.Equal(t, "invalid credentials", domain.UserMessage(err))
		st := s.State()
		assert.Equal(t, StatusAnonymous, st.Status)
		assert.False(t, st.IsAuthenticated())
		assert.Equal(t, "invalid credentials", st.ErrorMessage)
		assert.Empty(t, storage.Token())
	})

	t.Run("invalid credentials never reach the network", func(t *testing.T) {
		auth := okLogin()
		s := NewSessionStore(auth, mocks.NewMockSessionStorage("", nil), testLogger())

		err := s.Login(ctx, domain.Credentials{Email: "not-an-email", Password: "secret1"})
		require.Error(t, err)
		assert.Equal(t, domain.KindValidation, domain.AsFailure(err).Kind)
		assert.Equal(t, "email address is invalid", s.State().ErrorMessage)

		err = s.Login(ctx, domain.Credentials{Email: "ada@example.com", Password: "123"})
		assert.Equal(t, "password must be at least 6 characters", domain.UserMessage(err))

		assert.Zero(t, auth.Count("Login"))
	})

	t.Run("second login while one is in flight is a no-op", func(t *testing.T) {
		gate := make(chan struct{})
		entered := make(chan struct{}, 1)
		auth := &mocks.MockAuthRepository{
			LoginFn: func(ctx context.Context, creds domain.Credentials) domain.Result[domain.AuthPayload] {
				entered <- struct{}{}
				<-gate
				return domain.Ok(domain.AuthPayload{Token: "tok-1", User: testUser})
			},
		}
		s := NewSessionStore(auth, mocks.NewMockSessionStorage("", nil), testLogger())

		done := make(chan error, 1)
		go func() { done <- s.Login(ctx, goodCreds) }()
		<-entered

		assert.Equal(t, StatusAuthenticating, s.State().Status)
		assert.NoError(t, s.Login(ctx, goodCreds))

		close(gate)
		require.NoError(t, <-done)
		assert.Equal(t, 1, auth.Count("Login"))
		assert.True(t, s.IsAuthenticated())
	})

	t.Run("register uses its own call", func(t *testing.T) {
		auth := &mocks.MockAuthRepository{
			RegisterFn: func(ctx context.Context, creds domain.Credentials) domain.Result[domain.AuthPayload] {
				return domain.Ok(domain.AuthPayload{Token: "tok-2", User: domain.User{ID: "u2", Name: creds.Name}})
			},
		}
		s := NewSessionStore(auth, mocks.NewMockSessionStorage("", nil), testLogger())

		require.NoError(t, s.Register(ctx, domain.Credentials{Email: "bo@example.com", Password: "secret1", Name: "Bo"}))
		assert.Equal(t, 1, auth.Count("Register"))
		assert.Zero(t, auth.Count("Login"))
		assert.Equal(t, "Bo", s.State().User.Name)
	})
}

func TestSessionStore_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("no persisted token", func(t *testing.T) {
		auth := &mocks.MockAuthRepository{}
		s := NewSessionStore(auth, mocks.NewMockSessionStorage("", nil), testLogger())

		assert.False(t, s.Restore(ctx))
		assert.Zero(t, auth.Count("CurrentUser"))
	})

	t.Run("valid token is re-validated", func(t *testing.T) {
		token := signedToken(time.Now().Add(time.Hour))
		auth := &mocks.MockAuthRepository{
			CurrentUserFn: func(ctx context.Context, got string) domain.Result[domain.User] {
				assert.Equal(t, token, got)
				return domain.Ok(testUser)
			},
		}
		storage := mocks.NewMockSessionStorage(token, nil)
		s := NewSessionStore(auth, storage, testLogger())

		assert.True(t, s.Restore(ctx))
		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, token, s.State().Token)
		cached, ok := storage.CachedUser()
		require.True(t, ok)
		assert.Equal(t, testUser, cached)
	})

	t.Run("opaque token is re-validated", func(t *testing.T) {
		auth := &mocks.MockAuthRepository{
			CurrentUserFn: func(ctx context.Context, token string) domain.Result[domain.User] {
				return domain.Ok(testUser)
			},
		}
		s := NewSessionStore(auth, mocks.NewMockSessionStorage("opaque", nil), testLogger())

		assert.True(t, s.Restore(ctx))
		assert.Equal(t, 1, auth.Count("CurrentUser"))
	})

	t.Run("expired token is dropped without a network call", func(t *testing.T) {
		auth := &mocks.MockAuthRepository{}
		storage := mocks.NewMockSessionStorage(signedToken(time.Now().Add(-time.Hour)), &testUser)
		s := NewSessionStore(auth, storage, testLogger())

		assert.False(t, s.Restore(ctx))
		assert.Zero(t, auth.Count("CurrentUser"))
		assert.Empty(t, storage.Token())
		_, ok := storage.CachedUser()
		assert.False(t, ok)
	})

	t.Run("rejected token is discarded", func(t *testing.T) {
		storage := mocks.NewMockSessionStorage("opaque", &testUser)
		s := NewSessionStore(&mocks.MockAuthRepository{}, storage, testLogger())

		assert.False(t, s.Restore(ctx))
		assert.False(t, s.IsAuthenticated())
		assert.Equal(t, StatusAnonymous, s.State().Status)
		assert.Empty(t, storage.Token())
	})

	t.Run("empty user counts as a failure", func(t *testing.T) {
		auth := &mocks.MockAuthRepository{
			CurrentUserFn: func(ctx context.Context, token string) domain.Result[domain.User] {
				return domain.Ok(domain.User{})
			},
		}
		s := NewSessionStore(auth, mocks.NewMockSessionStorage("opaque", nil), testLogger())

		assert.False(t, s.Restore(ctx))
		assert.Nil(t, s.State().User)
	})
}

func TestSessionStore_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("clears even when the remote call fails", func(t *testing.T) {
		storage := mocks.NewMockSessionStorage("", nil)
		s := loggedIn(storage)
		s.auth.(*mocks.MockAuthRepository).LogoutFn = func(ctx context.Context, token string) domain.Result[domain.Unit] {
			return domain.Fail[domain.Unit](domain.NetworkFailure("offline", nil))
		}

		s.Logout(ctx)

		assert.False(t, s.IsAuthenticated())
		assert.Equal(t, StatusAnonymous, s.State().Status)
		assert.Empty(t, storage.Token())
		assert.Equal(t, 1, storage.Cleared)
	})

	t.Run("anonymous logout skips the network", func(t *testing.T) {
		auth := &mocks.MockAuthRepository{}
		s := NewSessionStore(auth, mocks.NewMockSessionStorage("", nil), testLogger())

		s.Logout(ctx)
		assert.Zero(t, auth.Count("Logout"))
	})
}

func TestSessionStore_HandleUnauthenticated(t *testing.T) {
	t.Run("clears and opens the prompt", func(t *testing.T) {
		storage := mocks.NewMockSessionStorage("", nil)
		s := loggedIn(storage)

		s.HandleUnauthenticated()

		st := s.State()
		assert.False(t, st.IsAuthenticated())
		assert.True(t, st.LoginPromptOpen)
		assert.Empty(t, storage.Token())
	})

	t.Run("safe when already anonymous", func(t *testing.T) {
		s := NewSessionStore(&mocks.MockAuthRepository{}, mocks.NewMockSessionStorage("", nil), testLogger())

		s.HandleUnauthenticated()
		s.HandleUnauthenticated()

		assert.True(t, s.State().LoginPromptOpen)
		s.CloseLoginPrompt()
		assert.False(t, s.State().LoginPromptOpen)
	})
}

func TestSessionStore_WatchAuthenticated(t *testing.T) {
	s := NewSessionStore(okLogin(), mocks.NewMockSessionStorage("", nil), testLogger())
	var seen []bool
	dispose := s.WatchAuthenticated(func(v bool) { seen = append(seen, v) })

	s.OpenLoginPrompt()
	require.NoError(t, s.Login(context.Background(), goodCreds))
	s.Logout(context.Background())
	dispose()
	dispose()
	require.NoError(t, s.Login(context.Background(), goodCreds))

	assert.Equal(t, []bool{true, false}, seen)
}
