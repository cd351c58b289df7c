// Package config reads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// ErrMissingAPIBaseURL is returned when SHOP_API_URL is not set.
var ErrMissingAPIBaseURL = errors.New("missing SHOP_API_URL environment variable")

// DefaultAddr is the default listen address for the storefront.
const DefaultAddr = "127.0.0.1:8080"

// Config holds the storefront configuration.
type Config struct {
	// Addr is the address the web server listens on.
	Addr string
	// APIBaseURL is the base URL of the remote album shop API.
	APIBaseURL string
	// DatabaseURL enables Postgres-backed sessions when set; sessions
	// are kept in memory otherwise.
	DatabaseURL string
	// Dev switches on development logging.
	Dev bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over .env values.
func Load() (*Config, error) {
	// Missing .env is fine; explicit env vars are enough.
	_ = godotenv.Load()

	apiBaseURL := os.Getenv("SHOP_API_URL")
	if apiBaseURL == "" {
		return nil, ErrMissingAPIBaseURL
	}

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = DefaultAddr
	}

	return &Config{
		Addr:        addr,
		APIBaseURL:  apiBaseURL,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Dev:         os.Getenv("APP_ENV") == "development",
	}, nil
}
