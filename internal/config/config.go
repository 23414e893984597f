// Package config loads console settings from the environment, with .env
// support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is everything the console needs to run. STORE_BASE_URL is the only
// required setting.
type Config struct {
	StoreBaseURL string `validate:"required,url"`
	StoreToken   string
	StoreTimeout time.Duration

	ServerPort     string `validate:"required"`
	AllowedOrigins string

	// ReportSource selects where report series come from: "remote" fetches
	// the store's pre-aggregated endpoints, "local" aggregates raw records.
	ReportSource string `validate:"oneof=remote local"`

	BestSellerPolicy string `validate:"oneof=delivered-only non-cancelled"`
	BestSellerTopN   int    `validate:"gt=0"`
}

// Load reads .env (if present) and the process environment, applies
// defaults, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StoreBaseURL:     os.Getenv("STORE_BASE_URL"),
		StoreToken:       os.Getenv("STORE_TOKEN"),
		StoreTimeout:     15 * time.Second,
		ServerPort:       envOr("SERVER_PORT", "8080"),
		AllowedOrigins:   os.Getenv("ALLOWED_ORIGINS"),
		ReportSource:     envOr("REPORT_SOURCE", "local"),
		BestSellerPolicy: envOr("BEST_SELLER_POLICY", "non-cancelled"),
		BestSellerTopN:   5,
	}

	if v := os.Getenv("STORE_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("STORE_TIMEOUT_SECONDS must be a positive integer, got %q", v)
		}
		cfg.StoreTimeout = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("BEST_SELLER_TOP_N"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("BEST_SELLER_TOP_N must be a positive integer, got %q", v)
		}
		cfg.BestSellerTopN = n
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
