package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/clemsytoff/tradesarace/internal/session"
)

// Session resolves the session cookie and attaches the principal to the
// request. Requests without a live session continue anonymously and
// handlers decide whether that is acceptable. A failing session store is
// logged and treated the same way, so public routes and logout keep working.
func Session(m *session.Manager, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := m.TokenFrom(c)
		if token == "" {
			return c.Next()
		}

		principal, err := m.Resolve(c.UserContext(), token)
		switch {
		case err == nil:
			session.Attach(c, principal)
		case errors.Is(err, session.ErrNoSession):
		default:
			logger.Warn("session lookup failed",
				slog.String("path", c.Path()),
				slog.Any("error", err),
			)
		}
		return c.Next()
	}
}
