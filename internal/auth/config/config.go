package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds all configuration for the auth service.
type Config struct {
	// Postgres configuration
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Token configuration
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	// Administrative bootstrap account; created at startup if absent,
	// password reset if present. Demo convenience, not a production
	// primitive.
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@helfy.local"`
	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`

	// Store readiness gate
	ConnectAttempts int           `env:"DB_CONNECT_ATTEMPTS" envDefault:"10"`
	ConnectInterval time.Duration `env:"DB_CONNECT_INTERVAL" envDefault:"3s"`
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load configuration from environment: " + err.Error())
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database_url is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("bcrypt_cost must be between 4 and 31")
	}
	if cfg.AdminPassword == "" {
		return nil, errors.New("admin_password must not be empty")
	}

	return cfg, nil
}
