package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	healthOK       = "ok"
	healthDisabled = "disabled"
)

// RegisterHealthRoutes adds a readiness endpoint reporting Postgres and
// Redis reachability. Backends replaced by in-memory fallbacks report
// "disabled" and do not fail the check.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		dbStatus := healthDisabled
		redisStatus := healthDisabled

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if d.DB != nil {
			dbStatus = healthOK
			if err := d.DB.Ping(ctx); err != nil {
				d.Logger.Warn("healthz postgres ping failed", "error", err)
				dbStatus = "unreachable"
			}
		}
		if d.Cache != nil {
			redisStatus = healthOK
			if err := d.Cache.Ping(ctx).Err(); err != nil {
				d.Logger.Warn("healthz redis ping failed", "error", err)
				redisStatus = "unreachable"
			}
		}

		status := http.StatusOK
		if (dbStatus != healthOK && dbStatus != healthDisabled) || (redisStatus != healthOK && redisStatus != healthDisabled) {
			status = http.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"ok":        status == http.StatusOK,
			"status":    fiber.Map{"postgres": dbStatus, "redis": redisStatus},
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
