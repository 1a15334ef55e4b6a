// Package config loads and validates application configuration from
// environment variables, with an optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the comma-separated list of allowed cross-origin
	// origins. It also gates websocket upgrades.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// DatabaseURL enables the Postgres reservation ledger when set.
	DatabaseURL string `env:"DATABASE_URL"`

	// RedisAddr moves the offline queue and idempotency keys to Redis when set.
	RedisAddr string `env:"REDIS_ADDR"`

	// JWTSecret signs bearer tokens. Required.
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"1h"`

	// DiscountStrategy is one of none, weekend, longstay.
	DiscountStrategy string `env:"DISCOUNT_STRATEGY" envDefault:"none"`

	// DailyRate is the flat price per day for caravans without their own rate.
	DailyRate decimal.Decimal `env:"DAILY_RATE" envDefault:"100"`

	// SeedFile is a YAML fixture loaded into the stores at start-up.
	SeedFile string `env:"SEED_FILE"`

	RedeliverySchedule string `env:"REDELIVERY_SCHEDULE" envDefault:"@every 1m"`
	LedgerWorkers      int    `env:"LEDGER_WORKERS" envDefault:"4"`
	MaxBodyBytes       int64  `env:"MAX_BODY_BYTES" envDefault:"1048576"`
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Load reads an optional .env file, then parses the environment. Variables
// already set win over .env. Every missing or malformed variable is reported
// in a single error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: read .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if !contains(logLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of %s, got %q", strings.Join(logLevels, ", "), c.LogLevel))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.DailyRate.IsNegative() {
		errs = append(errs, errors.New("DAILY_RATE must not be negative"))
	}
	if c.LedgerWorkers < 1 {
		errs = append(errs, errors.New("LEDGER_WORKERS must be at least 1"))
	}
	if c.MaxBodyBytes < 1 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

// trimAll trims every entry and drops empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
