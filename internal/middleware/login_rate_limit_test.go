package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clemsytoff/tradesarace/internal/logging"
)

func loginApp(cache *redis.Client, max int) *fiber.App {
	app := fiber.New()
	app.Post("/login", LoginRateLimit(cache, max, logging.Discard()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func postLogin(t *testing.T, app *fiber.App, email string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"email":"`+email+`","password":"x"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestLoginRateLimitPerEmail(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := loginApp(cache, 2)

	assert.Equal(t, fiber.StatusOK, postLogin(t, app, "a@x.io"))
	assert.Equal(t, fiber.StatusOK, postLogin(t, app, " A@X.io "))
	assert.Equal(t, fiber.StatusTooManyRequests, postLogin(t, app, "a@x.io"))
	assert.Equal(t, fiber.StatusOK, postLogin(t, app, "b@x.io"))

	mr.FastForward(loginRateWindow)
	assert.Equal(t, fiber.StatusOK, postLogin(t, app, "a@x.io"))
}

func TestLoginRateLimitFailsOpen(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()
	mr.SetError("ERR boom")

	app := loginApp(cache, 1)
	for i := 0; i < 3; i++ {
		assert.Equal(t, fiber.StatusOK, postLogin(t, app, "a@x.io"))
	}
}

func TestLoginRateLimitWithoutRedis(t *testing.T) {
	app := loginApp(nil, 1)
	assert.Equal(t, fiber.StatusOK, postLogin(t, app, "a@x.io"))
	assert.Equal(t, fiber.StatusOK, postLogin(t, app, "a@x.io"))
}
