package main

import (
	"context"
	"log/slog"
	"os"

	cliAdapter "bookstore-console/internal/adapters/cli"
	"bookstore-console/internal/app"
	"bookstore-console/internal/config"
	"bookstore-console/internal/core"
	"bookstore-console/internal/storeapi"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration", "err", err)
		os.Exit(1)
	}

	store := storeapi.New(storeapi.Config{
		BaseURL: cfg.StoreBaseURL,
		Token:   cfg.StoreToken,
		Timeout: cfg.StoreTimeout,
	})

	policy, err := core.ParseBestSellerPolicy(cfg.BestSellerPolicy)
	if err != nil {
		log.Error("configuration", "err", err)
		os.Exit(1)
	}
	agg := core.NewAggregator(policy, cfg.BestSellerTopN)

	console := app.NewConsole(store, agg, app.ReportSource(cfg.ReportSource), log, nil)
	cliAdapter.Run(context.Background(), console, os.Args[1:])
}
