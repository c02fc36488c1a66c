package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func movies(ids ...string) []domain.Movie {
	out := make([]domain.Movie, len(ids))
	for i, id := range ids {
		out[i] = domain.Movie{ID: id, Title: "Movie " + id}
	}
	return out
}

func movieIDs(ms []domain.Movie) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func moviePage(current, last int, ids ...string) domain.Result[domain.PaginatedList[domain.Movie]] {
	return mocks.Page(current, last, movies(ids...)...)
}

func signedToken(exp time.Time) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return tok
}

var testUser = domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}

func okLogin() *mocks.MockAuthRepository {
	return &mocks.MockAuthRepository{
		LoginFn: func(ctx context.Context, creds domain.Credentials) domain.Result[domain.AuthPayload] {
			return domain.Ok(domain.AuthPayload{Token: "tok-1", User: testUser})
		},
	}
}

var goodCreds = domain.Credentials{Email: "ada@example.com", Password: "secret1"}

// loggedIn returns an authenticated session store.
func loggedIn(storage domain.SessionStorage) *SessionStore {
	s := NewSessionStore(okLogin(), storage, testLogger())
	if err := s.Login(context.Background(), goodCreds); err != nil {
		panic(err)
	}
	return s
}
