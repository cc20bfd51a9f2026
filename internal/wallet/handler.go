package wallet

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/clemsytoff/tradesarace/internal/apperror"
	"github.com/clemsytoff/tradesarace/internal/response"
	"github.com/clemsytoff/tradesarace/internal/session"
)

// Handler exposes the user state endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler builds a user state HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type stateRequest struct {
	Wallet    json.RawMessage `json:"wallet"`
	Positions json.RawMessage `json:"positions"`
}

type stateResponse struct {
	OK        bool       `json:"ok"`
	Wallet    Wallet     `json:"wallet"`
	Positions []Position `json:"positions"`
}

func newStateResponse(state State) stateResponse {
	positions := state.Positions
	if positions == nil {
		positions = []Position{}
	}
	return stateResponse{OK: true, Wallet: state.Wallet, Positions: positions}
}

// Get returns the session user's wallet and positions.
func (h *Handler) Get(c *fiber.Ctx) error {
	principal, ok := session.FromContext(c)
	if !ok {
		return apperror.Unauthorized("Unauthorized")
	}
	state, err := h.service.GetState(c.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(newStateResponse(state))
}

// Put replaces the session user's wallet and/or positions. The wallet is
// stored as its three numeric balances; any other keys sent with it are
// dropped. Failures use the bare {error} body, except wallet validation which
// keeps {ok, message}.
func (h *Handler) Put(c *fiber.Ctx) error {
	principal, ok := session.FromContext(c)
	if !ok {
		return response.Bare(c, http.StatusUnauthorized, "Unauthorized")
	}

	var req stateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Bare(c, http.StatusBadRequest, "Invalid request body")
	}

	state, err := h.service.PutState(c.UserContext(), principal.UserID, Patch{Wallet: req.Wallet, Positions: req.Positions})
	if err != nil {
		if errors.Is(err, ErrInvalidWallet) {
			return response.Fail(c, http.StatusBadRequest, apperror.MessageOf(err))
		}
		kind := apperror.KindOf(err)
		if kind == apperror.KindStorage {
			h.logger.Error("user_state.put failed",
				slog.Int64("user_id", principal.UserID),
				slog.Any("error", err),
			)
		}
		return response.Bare(c, kind.Status(), apperror.MessageOf(err))
	}

	h.logger.Info("user_state.put completed",
		slog.Int64("user_id", principal.UserID),
		slog.Int("positions", len(state.Positions)),
	)
	return c.Status(http.StatusOK).JSON(newStateResponse(state))
}
