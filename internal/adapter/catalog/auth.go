package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mmcdole/reel/internal/domain"
)

const tokenTTL = 30 * 24 * time.Hour

// issueToken signs a session token for userID. Caller holds c.mu.
func (c *Catalog) issueToken(userID string) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// verifyToken returns the account a token was issued to. Caller holds c.mu.
func (c *Catalog) verifyToken(token string) (Account, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Account{}, err
	}
	if c.revoked[claims.ID] {
		return Account{}, errors.New("token revoked")
	}
	a, ok := c.accounts[claims.Subject]
	if !ok {
		return Account{}, errors.New("unknown subject")
	}
	return a, nil
}

func tokenID(token string) string {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	return claims.ID
}

// Login implements domain.AuthRepository
func (c *Catalog) Login(ctx context.Context, creds domain.Credentials) domain.Result[domain.AuthPayload] {
	if err := c.wait(ctx); err != nil {
		return domain.Fail[domain.AuthPayload](domain.AsFailure(err))
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, a := range c.accounts {
		if strings.EqualFold(a.Email, creds.Email) && a.Password == creds.Password {
			return c.startSession(a, creds.DeviceID)
		}
	}
	c.logger.Info("login rejected", "email", creds.Email)
	return domain.Fail[domain.AuthPayload](domain.AuthFailure("invalid email or password"))
}

// Register implements domain.AuthRepository
func (c *Catalog) Register(ctx context.Context, creds domain.Credentials) domain.Result[domain.AuthPayload] {
	if err := c.wait(ctx); err != nil {
		return domain.Fail[domain.AuthPayload](domain.AsFailure(err))
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, a := range c.accounts {
		if strings.EqualFold(a.Email, creds.Email) {
			return domain.Fail[domain.AuthPayload](domain.APIFailure("EMAIL_TAKEN", "email is already registered"))
		}
	}
	name := creds.Name
	if name == "" {
		name, _, _ = strings.Cut(creds.Email, "@")
	}
	a := Account{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    creds.Email,
		Password: creds.Password,
	}
	c.accounts[a.ID] = a
	c.logger.Info("registered account", "user", a.ID)
	return c.startSession(a, creds.DeviceID)
}

// startSession issues a token and makes it the active session. Caller holds c.mu.
func (c *Catalog) startSession(a Account, deviceID string) domain.Result[domain.AuthPayload] {
	token, err := c.issueToken(a.ID)
	if err != nil {
		return domain.Fail[domain.AuthPayload](domain.ServerFailure("failed to issue token", err))
	}
	c.session = token
	c.logger.Debug("session started", "user", a.ID, "device", deviceID)
	return domain.Ok(domain.AuthPayload{Token: token, User: mapUser(a)})
}

// CurrentUser implements domain.AuthRepository
func (c *Catalog) CurrentUser(ctx context.Context, token string) domain.Result[domain.User] {
	if err := c.wait(ctx); err != nil {
		return domain.Fail[domain.User](domain.AsFailure(err))
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	a, err := c.verifyToken(token)
	if err != nil {
		c.logger.Info("token rejected", "error", err)
		return domain.Fail[domain.User](domain.AuthFailure("please log in again"))
	}
	c.session = token
	return domain.Ok(mapUser(a))
}

// Logout implements domain.AuthRepository
func (c *Catalog) Logout(ctx context.Context, token string) domain.Result[domain.Unit] {
	if err := c.wait(ctx); err != nil {
		return domain.Fail[domain.Unit](domain.AsFailure(err))
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if id := tokenID(token); id != "" {
		c.revoked[id] = true
	}
	if c.session == token {
		c.session = ""
	}
	return domain.Ok(domain.Unit{})
}

// SimulateUnauthenticated revokes the active session, as if the server had
// expired it. The next call that needs a viewer fails and fires the
// unauthenticated hook.
func (c *Catalog) SimulateUnauthenticated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id := tokenID(c.session); id != "" {
		c.revoked[id] = true
	}
	c.logger.Info("session revoked")
}

// OnUnauthenticated registers fn to run when a call is rejected because the
// active session is missing or no longer valid.
func (c *Catalog) OnUnauthenticated(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthenticated = fn
}

// viewer returns the signed-in account. Caller holds c.mu.
func (c *Catalog) viewer() (Account, bool) {
	if c.session == "" {
		return Account{}, false
	}
	a, err := c.verifyToken(c.session)
	if err != nil {
		return Account{}, false
	}
	return a, true
}

// authenticated runs fn with the signed-in account or fails with an auth
// failure, firing the unauthenticated hook after the lock is released.
func authenticated[T any](c *Catalog, ctx context.Context, fn func(a Account) domain.Result[T]) domain.Result[T] {
	if err := c.wait(ctx); err != nil {
		return domain.Fail[T](domain.AsFailure(err))
	}

	c.mu.Lock()
	a, ok := c.viewer()
	if ok {
		defer c.mu.Unlock()
		return fn(a)
	}
	hadSession := c.session != ""
	c.session = ""
	hook := c.onUnauthenticated
	c.mu.Unlock()

	if hadSession && hook != nil {
		hook()
	}
	return domain.Fail[T](domain.AuthFailure("please log in again"))
}
