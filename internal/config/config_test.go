package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/caravan-share/internal/config"
)

// clearOptional blanks every optional variable so the host environment
// cannot leak into a test.
func clearOptional(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "CORS_ORIGINS", "DATABASE_URL", "REDIS_ADDR", "TOKEN_TTL",
		"DISCOUNT_STRATEGY", "DAILY_RATE", "SEED_FILE", "REDELIVERY_SCHEDULE",
		"LEDGER_WORKERS", "MAX_BODY_BYTES",
	} {
		t.Setenv(key, "")
	}
}

// TestLoad_defaults verifies that optional env vars fall back to their defaults
// when only the required JWT_SECRET is provided.
func TestLoad_defaults(t *testing.T) {
	clearOptional(t)
	t.Setenv("JWT_SECRET", "dev-secret")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	require.Empty(t, cfg.DatabaseURL)
	require.Empty(t, cfg.RedisAddr)
	require.Equal(t, "dev-secret", cfg.JWTSecret)
	require.Equal(t, time.Hour, cfg.TokenTTL)
	require.Equal(t, "none", cfg.DiscountStrategy)
	require.Equal(t, "100", cfg.DailyRate.String())
	require.Equal(t, "@every 1m", cfg.RedeliverySchedule)
	require.Equal(t, 4, cfg.LedgerWorkers)
	require.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
}

// TestLoad_overrides verifies that values can be overridden via env vars.
func TestLoad_overrides(t *testing.T) {
	clearOptional(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("DATABASE_URL", "postgres://caravan:caravan@db:5432/caravan")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("DISCOUNT_STRATEGY", "longstay")
	t.Setenv("DAILY_RATE", "89.90")
	t.Setenv("LEDGER_WORKERS", "8")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	require.Equal(t, "postgres://caravan:caravan@db:5432/caravan", cfg.DatabaseURL)
	require.Equal(t, "redis:6379", cfg.RedisAddr)
	require.Equal(t, 15*time.Minute, cfg.TokenTTL)
	require.Equal(t, "longstay", cfg.DiscountStrategy)
	require.Equal(t, "89.90", cfg.DailyRate.StringFixed(2))
	require.Equal(t, 8, cfg.LedgerWorkers)
}

// TestLoad_missingRequired verifies the error names JWT_SECRET.
func TestLoad_missingRequired(t *testing.T) {
	clearOptional(t)
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()

	require.Error(t, err)
	require.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_invalidValues(t *testing.T) {
	clearOptional(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("LOG_LEVEL", "chatty")
	t.Setenv("LEDGER_WORKERS", "0")

	_, err := config.Load()

	require.Error(t, err)
	require.ErrorContains(t, err, "LOG_LEVEL")
	require.ErrorContains(t, err, "LEDGER_WORKERS")
}

func TestLoad_malformedDuration(t *testing.T) {
	clearOptional(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "soon")

	_, err := config.Load()

	require.Error(t, err)
}
