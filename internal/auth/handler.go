package auth

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/clemsytoff/tradesarace/internal/apperror"
	"github.com/clemsytoff/tradesarace/internal/identity"
	"github.com/clemsytoff/tradesarace/internal/session"
)

// Handler exposes the /auth endpoints.
type Handler struct {
	svc      *Service
	sessions *session.Manager
	logger   *slog.Logger
}

func NewHandler(svc *Service, sessions *session.Manager, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, sessions: sessions, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	OK      bool            `json:"ok"`
	Message string          `json:"message,omitempty"`
	User    identity.Public `json:"user"`
}

// Register creates an account. An unreadable body is treated as empty.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	_ = c.BodyParser(&req)

	user, err := h.svc.Register(c.UserContext(), identity.Credentials{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}

	h.logger.Info("auth.register completed", slog.Int64("user_id", user.ID))
	return c.Status(http.StatusCreated).JSON(userResponse{OK: true, Message: "Registration successful", User: user})
}

// Login opens a session and sets the session cookie.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	_ = c.BodyParser(&req)

	user, token, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindUnauthorized {
			h.logger.Info("auth.login rejected", slog.String("ip", c.IP()))
		}
		return err
	}

	h.sessions.SetCookie(c, token)
	h.logger.Info("auth.login completed", slog.Int64("user_id", user.ID))
	return c.Status(http.StatusOK).JSON(userResponse{OK: true, Message: "Login successful", User: user})
}

// Me returns the session user. The cookie is cleared when the session does
// not resolve to a user.
func (h *Handler) Me(c *fiber.Ctx) error {
	principal, ok := session.FromContext(c)
	if !ok {
		if h.sessions.TokenFrom(c) != "" {
			h.sessions.ClearCookie(c)
		}
		return apperror.Unauthorized(unauthorizedMessage)
	}

	user, err := h.svc.Me(c.UserContext(), principal)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindUnauthorized {
			h.sessions.ClearCookie(c)
		}
		return err
	}
	return c.Status(http.StatusOK).JSON(userResponse{OK: true, User: user})
}

// Logout always succeeds; a failed revoke is only logged.
func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.svc.Logout(c.UserContext(), h.sessions.TokenFrom(c)); err != nil {
		h.logger.Warn("auth.logout revoke failed", slog.Any("error", err))
	}
	h.sessions.ClearCookie(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{"ok": true})
}
