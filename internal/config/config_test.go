package config

import (
	"errors"
	"testing"
)

func TestLoad_RequiresAPIBaseURL(t *testing.T) {
	t.Setenv("SHOP_API_URL", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingAPIBaseURL) {
		t.Fatalf("err = %v, want ErrMissingAPIBaseURL", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SHOP_API_URL", "http://localhost:5000")
	t.Setenv("ADDR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.APIBaseURL != "http://localhost:5000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.Dev {
		t.Error("Dev = true, want false")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SHOP_API_URL", "http://shop.internal")
	t.Setenv("ADDR", "0.0.0.0:9000")
	t.Setenv("DATABASE_URL", "postgres://app@db/sessions")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "0.0.0.0:9000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.DatabaseURL != "postgres://app@db/sessions" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if !cfg.Dev {
		t.Error("Dev = false, want true")
	}
}
