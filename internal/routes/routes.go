package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/clemsytoff/tradesarace/internal/auth"
	"github.com/clemsytoff/tradesarace/internal/config"
	"github.com/clemsytoff/tradesarace/internal/identity"
	"github.com/clemsytoff/tradesarace/internal/leaderboard"
	"github.com/clemsytoff/tradesarace/internal/middleware"
	"github.com/clemsytoff/tradesarace/internal/session"
	"github.com/clemsytoff/tradesarace/internal/wallet"
)

const defaultCORSOrigin = "http://localhost:3000"

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// In-memory fallbacks are only acceptable in development.
	if !config.IsDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(d.Cfg.CORSOrigins),
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Content-Type,Idempotency-Key,X-Request-ID",
		AllowCredentials: true,
	}))

	var identityRepo identity.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		d.Logger.Warn("no database configured, using in-memory users")
		identityRepo = identity.NewMemoryRepository()
	}

	var sessionStore session.Store
	if d.Cache != nil {
		sessionStore = session.NewRedisStore(d.Cache)
	} else {
		d.Logger.Warn("no redis configured, using in-memory sessions")
		sessionStore = session.NewMemoryStore()
	}
	sessions := session.NewManager(sessionStore, session.Config{
		Secret: d.Cfg.SessionSecret,
		TTL:    d.Cfg.SessionTTL,
		Secure: d.Cfg.CookieSecure,
	})

	identitySvc := identity.NewService(identityRepo)
	authHandler := auth.NewHandler(auth.NewService(identitySvc, sessions), sessions, d.Logger)
	stateHandler := wallet.NewHandler(wallet.NewService(identityRepo), d.Logger)
	leaderboardHandler := leaderboard.NewHandler(leaderboard.NewService(identityRepo))

	app.Use(middleware.Audit(d.Logger))
	app.Use(middleware.Session(sessions, d.Logger))

	RegisterHealthRoutes(app, d)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"ok":      true,
			"message": d.Cfg.AppName + " API is running",
		})
	})

	api := app.Group("/api")
	RegisterAuthRoutes(api, authHandler, middleware.LoginRateLimit(d.Cache, d.Cfg.LoginMaxPerMinute, d.Logger))
	RegisterLeaderboardRoutes(api, leaderboardHandler)
	var idempotency fiber.Handler
	if d.Cache != nil {
		idempotency = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	RegisterUserStateRoutes(api, stateHandler, idempotency)

	return nil
}

func corsOrigins(raw string) string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" && o != "*" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return defaultCORSOrigin
	}
	return strings.Join(origins, ",")
}
