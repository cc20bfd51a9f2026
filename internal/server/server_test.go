package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clemsytoff/tradesarace/internal/config"
	"github.com/clemsytoff/tradesarace/internal/logging"
	"github.com/clemsytoff/tradesarace/internal/session"
)

func testConfig() config.Config {
	return config.Config{
		AppName:           "tradesarace",
		AppEnv:            "test",
		Port:              "0",
		SessionSecret:     "test-secret",
		SessionTTL:        time.Hour,
		LoginMaxPerMinute: 100,
		IdempotencyTTL:    time.Minute,
		ShutdownPeriod:    time.Second,
	}
}

type client struct {
	t      *testing.T
	srv    *Server
	cookie *http.Cookie
}

func newClient(t *testing.T) (*client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	srv, err := New(testConfig(), nil, cache, logging.Discard())
	require.NoError(t, err)
	return &client{t: t, srv: srv}, mr
}

func (c *client) do(method, target, body string, headers ...string) (int, map[string]any) {
	c.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	resp, err := c.srv.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	for _, ck := range resp.Cookies() {
		if ck.Name == session.CookieName {
			if ck.Value == "" {
				c.cookie = nil
			} else {
				c.cookie = ck
			}
		}
	}

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	var decoded map[string]any
	require.NoError(c.t, json.Unmarshal(raw, &decoded), string(raw))
	return resp.StatusCode, decoded
}

func TestNewRejectsMissingBackendsOutsideDev(t *testing.T) {
	cfg := testConfig()
	cfg.AppEnv = "production"
	_, err := New(cfg, nil, nil, logging.Discard())
	assert.Error(t, err)
}

func TestBannerAndHealth(t *testing.T) {
	c, _ := newClient(t)

	status, body := c.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, body["message"])

	status, body = c.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"postgres": "disabled", "redis": "ok"}, body["status"])
}

func TestTradingSession(t *testing.T) {
	c, mr := newClient(t)

	status, _ := c.do(http.MethodGet, "/api/user-state", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := c.do(http.MethodPut, "/api/user-state", `{"positions":[{"side":"buy"}]}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", body["error"])

	status, _ = c.do(http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@x.io","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, status)
	status, _ = c.do(http.MethodPost, "/api/auth/login", `{"email":"ada@x.io","password":"secret1"}`)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, c.cookie)
	assert.Len(t, mr.Keys(), 2) // session record and login counter

	status, body = c.do(http.MethodGet, "/api/user-state", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"usdBalance": float64(20000), "btcBalance": 0.35, "bonus": float64(185)}, body["wallet"])
	assert.Equal(t, []any{}, body["positions"])

	status, body = c.do(http.MethodPut, "/api/user-state", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Nothing to update", body["error"])

	status, body = c.do(http.MethodPut, "/api/user-state", `{"wallet":{"usdBalance":100}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "Invalid wallet", body["message"])

	status, body = c.do(http.MethodPut, "/api/user-state",
		`{"wallet":{"usdBalance":19000,"btcBalance":0.4,"bonus":185},"positions":[{"side":"hold"},{"side":"buy","amount":0.05}]}`,
		"Idempotency-Key", "trade-1")
	require.Equal(t, http.StatusOK, status)
	positions := body["positions"].([]any)
	require.Len(t, positions, 1)
	first := positions[0].(map[string]any)
	assert.Equal(t, "buy", first["side"])
	assert.Equal(t, 0.05, first["amount"])
	assert.NotEmpty(t, first["placedAt"])

	status, replay := c.do(http.MethodPut, "/api/user-state", `{"positions":[]}`, "Idempotency-Key", "trade-1")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, body, replay)

	status, body = c.do(http.MethodGet, "/api/leaderboard?limit=5", "")
	require.Equal(t, http.StatusOK, status)
	board := body["leaderboard"].([]any)
	require.Len(t, board, 1)
	assert.Equal(t, map[string]any{"rank": float64(1), "id": float64(1), "name": "Ada", "usdBalance": float64(19000)}, board[0])

	status, _ = c.do(http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, c.cookie)

	status, _ = c.do(http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSessionStoreOutageKeepsPublicRoutesAndLogout(t *testing.T) {
	c, mr := newClient(t)

	status, _ := c.do(http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@x.io","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, status)
	status, _ = c.do(http.MethodPost, "/api/auth/login", `{"email":"ada@x.io","password":"secret1"}`)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, c.cookie)

	mr.SetError("ERR backend unavailable")
	defer mr.SetError("")

	status, body := c.do(http.MethodGet, "/api/leaderboard", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])

	status, body = c.do(http.MethodGet, "/api/user-state", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", body["message"])

	status, body = c.do(http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"ok": true}, body)
	assert.Nil(t, c.cookie)
}

func TestPlacedAtIsKeptAsSent(t *testing.T) {
	c, _ := newClient(t)

	status, _ := c.do(http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@x.io","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, status)
	status, _ = c.do(http.MethodPost, "/api/auth/login", `{"email":"ada@x.io","password":"secret1"}`)
	require.Equal(t, http.StatusOK, status)

	status, body := c.do(http.MethodPut, "/api/user-state",
		`{"positions":[{"side":"buy","placedAt":1700000000},{"side":"sell","placedAt":""},{"side":"buy"}]}`)
	require.Equal(t, http.StatusOK, status)
	positions := body["positions"].([]any)
	require.Len(t, positions, 3)
	assert.Equal(t, float64(1700000000), positions[0].(map[string]any)["placedAt"])
	assert.Equal(t, "", positions[1].(map[string]any)["placedAt"])
	stamped := positions[2].(map[string]any)["placedAt"]
	assert.NotEmpty(t, stamped)

	_, first := c.do(http.MethodGet, "/api/user-state", "")
	_, second := c.do(http.MethodGet, "/api/user-state", "")
	assert.Equal(t, body["positions"], first["positions"])
	assert.Equal(t, first, second)
}
