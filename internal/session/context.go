package session

import "github.com/gofiber/fiber/v2"

const principalKey = "session_principal"

// Attach records the resolved principal on the request.
func Attach(c *fiber.Ctx, p Principal) {
	c.Locals(principalKey, p)
}

// FromContext returns the principal resolved for the request, if any.
func FromContext(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(principalKey).(Principal)
	if !ok || p.UserID <= 0 {
		return Principal{}, false
	}
	return p, true
}
