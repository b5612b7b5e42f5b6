// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config holds the process configuration.
type Config struct {
	// APIKey is the Ticketmaster Discovery API credential.
	APIKey string `env:"TICKETMASTER_API_KEY"`
	// Port is the HTTP transport port.
	Port int `env:"PORT" envDefault:"3001"`
	// Environment selects production behavior (bind address, log format).
	Environment string `env:"APP_ENV" envDefault:"development"`
}

// Load parses configuration from environment variables. A missing API key
// is a startup-fatal error.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}

	if cfg.APIKey == "" {
		return Config{}, errors.New("TICKETMASTER_API_KEY environment variable is required")
	}

	return cfg, nil
}

// IsProduction reports whether the process runs in production mode.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// ListenAddr returns the HTTP bind address: all interfaces in production,
// loopback otherwise.
func (c Config) ListenAddr() string {
	host := "localhost"
	if c.IsProduction() {
		host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", host, c.Port)
}
