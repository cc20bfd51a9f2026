// Package response renders the JSON bodies shared by every endpoint.
package response

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/clemsytoff/tradesarace/internal/apperror"
)

// Failure is the {ok:false, message} body used by most endpoints.
type Failure struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// BareFailure is the {error} body used by the user state update endpoint.
type BareFailure struct {
	Error string `json:"error"`
}

// Fail writes {ok:false, message} with the given status.
func Fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Failure{OK: false, Message: message})
}

// Bare writes {error} with the given status.
func Bare(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(BareFailure{Error: message})
}

// ErrorHandler converts errors returned by handlers into {ok:false, message}
// bodies. Storage failures are logged with their cause and answered with a
// generic message.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return Fail(c, fiberErr.Code, fiberErr.Message)
		}

		kind := apperror.KindOf(err)
		if kind == apperror.KindStorage && logger != nil {
			logger.Error("request failed",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Any("error", err),
			)
		}
		return Fail(c, kind.Status(), apperror.MessageOf(err))
	}
}
