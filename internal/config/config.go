package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName        = "tradesarace"
	defaultAppEnv         = "development"
	defaultPort           = "5000"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultSessionTTL     = 7 * 24 * time.Hour
	defaultLoginPerMinute = 10
	devSessionSecret      = "dev-only-session-secret"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName           string
	AppEnv            string
	Port              string
	LogLevel          string
	DatabaseURL       string
	RedisURL          string
	SessionSecret     string
	SessionTTL        time.Duration
	CookieSecure      bool
	CORSOrigins       string
	LoginMaxPerMinute int
	ShutdownPeriod    time.Duration
	IdempotencyTTL    time.Duration
	AutoMigrate       bool
}

// Load reads configuration values from the environment. In development a
// .env file in the working directory is loaded first when present.
func Load() (Config, error) {
	if env := os.Getenv("APP_ENV"); env == "" || IsDev(env) {
		_ = godotenv.Load()
	}

	cfg := Config{
		AppName:       getEnv("APP_NAME", defaultAppName),
		AppEnv:        strings.ToLower(getEnv("APP_ENV", defaultAppEnv)),
		Port:          getEnv("PORT", defaultPort),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		CORSOrigins:   os.Getenv("CORS_ORIGINS"),
	}

	var err error
	if cfg.ShutdownPeriod, err = durationFromEnv("SHUTDOWN_TIMEOUT", defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationFromEnv("IDEMPOTENCY_TTL", defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationFromEnv("SESSION_TTL", defaultSessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.LoginMaxPerMinute, err = intFromEnv("LOGIN_MAX_PER_MINUTE", defaultLoginPerMinute); err != nil {
		return Config{}, err
	}
	if cfg.CookieSecure, err = boolFromEnv("COOKIE_SECURE", !IsDev(cfg.AppEnv)); err != nil {
		return Config{}, err
	}
	if cfg.AutoMigrate, err = boolFromEnv("AUTO_MIGRATE", false); err != nil {
		return Config{}, err
	}

	// Development may run on in-memory fallbacks; every other env needs the
	// real backends and a session secret.
	if !IsDev(cfg.AppEnv) {
		var missing []string
		for key, value := range map[string]string{
			"DATABASE_URL":   cfg.DatabaseURL,
			"REDIS_URL":      cfg.RedisURL,
			"SESSION_SECRET": cfg.SessionSecret,
		} {
			if value == "" {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return Config{}, fmt.Errorf("%s must be set when APP_ENV=%s", strings.Join(missing, ", "), cfg.AppEnv)
		}
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = devSessionSecret
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether env names a development environment.
func IsDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// durationFromEnv reads <key>_SECONDS as whole seconds, falling back to
// <key> as a Go duration string.
func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(key + "_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s_SECONDS: %w", key, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	return fallback, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
