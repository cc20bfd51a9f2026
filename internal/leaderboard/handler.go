package leaderboard

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the public leaderboard endpoint.
type Handler struct {
	service *Service
}

// NewHandler builds a leaderboard HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type leaderboardResponse struct {
	OK          bool    `json:"ok"`
	Leaderboard []Entry `json:"leaderboard"`
}

// Get serves GET /leaderboard?limit=N.
func (h *Handler) Get(c *fiber.Ctx) error {
	entries, err := h.service.Top(c.UserContext(), ParseLimit(c.Query("limit")))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(leaderboardResponse{OK: true, Leaderboard: entries})
}
