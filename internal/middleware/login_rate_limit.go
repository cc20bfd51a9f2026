package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/clemsytoff/tradesarace/internal/identity"
)

const (
	loginRatePrefix     = "rl:login:"
	defaultLoginPerMin  = 10
	loginRateWindow     = time.Minute
	tooManyLoginMessage = "Too many login attempts, try again later"
)

// LoginRateLimit caps login attempts per email, or per client IP when the
// body carries no email. It fails open when Redis is missing or erroring.
func LoginRateLimit(cache *redis.Client, maxPerMin int, logger *slog.Logger) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = defaultLoginPerMin
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}

		var req struct {
			Email string `json:"email"`
		}
		_ = c.BodyParser(&req)
		subject := identity.NormalizeEmail(req.Email)
		if subject == "" {
			subject = "ip:" + c.IP()
		}
		key := loginRatePrefix + subject

		ctx := c.UserContext()
		count, err := cache.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("login rate limit unavailable", slog.Any("error", err))
			return c.Next()
		}
		if count == 1 {
			cache.Expire(ctx, key, loginRateWindow)
		}
		if count > int64(maxPerMin) {
			if ttl, err := cache.TTL(ctx, key).Result(); err == nil && ttl > 0 {
				c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(ttl.Round(time.Second).Seconds())))
			}
			return fiber.NewError(http.StatusTooManyRequests, tooManyLoginMessage)
		}
		return c.Next()
	}
}
