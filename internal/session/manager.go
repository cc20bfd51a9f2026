// Package session maps a signed cookie to a server-side session record and
// resolves it into the user id handlers act on.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// CookieName is the cookie carrying the signed session token.
	CookieName = "tradesarace_session"

	// DefaultTTL is how long a session lives after login.
	DefaultTTL = 7 * 24 * time.Hour
)

// Config controls session lifetime and cookie attributes.
type Config struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// Principal is the authenticated caller of a request.
type Principal struct {
	SessionID string
	UserID    int64
}

// Manager issues, resolves and destroys sessions.
type Manager struct {
	store  Store
	codec  tokenCodec
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewManager builds a session manager on top of store.
func NewManager(store Store, cfg Config) *Manager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:  store,
		codec:  tokenCodec{secret: []byte(cfg.Secret)},
		ttl:    ttl,
		secure: cfg.Secure,
		now:    time.Now,
	}
}

// Issue creates a session for userID and returns the signed cookie value.
func (m *Manager) Issue(ctx context.Context, userID int64) (string, error) {
	sessionID := uuid.NewString()
	now := m.now()
	if err := m.store.Save(ctx, sessionID, userID, m.ttl); err != nil {
		return "", err
	}
	token, err := m.codec.sign(sessionID, now, now.Add(m.ttl))
	if err != nil {
		_ = m.store.Delete(ctx, sessionID)
		return "", err
	}
	return token, nil
}

// Resolve verifies token and looks up its session. It returns ErrNoSession
// for anything that does not identify a live session; other errors come
// from the store.
func (m *Manager) Resolve(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, ErrNoSession
	}
	sessionID, err := m.codec.parse(token, false)
	if err != nil {
		return Principal{}, err
	}
	userID, err := m.store.Lookup(ctx, sessionID)
	if err != nil {
		return Principal{}, err
	}
	return Principal{SessionID: sessionID, UserID: userID}, nil
}

// Destroy removes a session record.
func (m *Manager) Destroy(ctx context.Context, sessionID string) error {
	return m.store.Delete(ctx, sessionID)
}

// Revoke removes the session named by token, expired or not. Tokens that do
// not verify are ignored.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sessionID, err := m.codec.parse(token, true)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// TokenFrom reads the session cookie of the request.
func (m *Manager) TokenFrom(c *fiber.Ctx) string {
	return c.Cookies(CookieName)
}

// SetCookie attaches the session cookie to the response.
func (m *Manager) SetCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		Expires:  m.now().Add(m.ttl),
		Secure:   m.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on the client.
func (m *Manager) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   m.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
