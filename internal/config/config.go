// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the server.
type Config struct {
	// Port the HTTP server listens on.
	Port int `env:"PORT" envDefault:"8080"`

	// DBPath is the SQLite database file location.
	DBPath string `env:"DB_PATH" envDefault:"./data/splitbook.db"`

	// JWTSecret signs session tokens. Must be set in production.
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`

	// TokenDuration is how long session tokens stay valid.
	TokenDuration time.Duration `env:"TOKEN_DURATION" envDefault:"24h"`

	// AllowedOrigins is the CORS origin allowlist.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads .env if present, then parses the environment into a Config.
func Load() (*Config, error) {
	// Missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
