package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tradesarace")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tradesarace", cfg.AppName)
	assert.Equal(t, ":5000", cfg.Address())
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 10*time.Second, cfg.ShutdownPeriod)
	assert.Equal(t, 10, cfg.LoginMaxPerMinute)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, devSessionSecret, cfg.SessionSecret)
}

func TestLoadDurations(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("SESSION_TTL_SECONDS", "60")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.SessionTTL)
	assert.Equal(t, 3*time.Second, cfg.ShutdownPeriod)

	t.Setenv("IDEMPOTENCY_TTL", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("SESSION_SECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.CookieSecure)
}

func TestLoadRequiresStorageOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("APP_ENV", "development")
	t.Setenv("REDIS_URL", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
}

func TestAddress(t *testing.T) {
	assert.Equal(t, ":8080", Config{Port: "8080"}.Address())
	assert.Equal(t, ":9090", Config{Port: ":9090"}.Address())
}
