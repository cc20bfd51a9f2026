package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clemsytoff/tradesarace/internal/wallet"
)

// RegisterUserStateRoutes wires the wallet and positions endpoints.
func RegisterUserStateRoutes(r fiber.Router, h *wallet.Handler, idempotency fiber.Handler) {
	r.Get("/user-state", h.Get)
	if idempotency != nil {
		r.Put("/user-state", idempotency, h.Put)
	} else {
		r.Put("/user-state", h.Put)
	}
}
