package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clemsytoff/tradesarace/internal/leaderboard"
)

func RegisterLeaderboardRoutes(r fiber.Router, h *leaderboard.Handler) {
	r.Get("/leaderboard", h.Get)
}
