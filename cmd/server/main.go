package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	webAdapter "bookstore-console/internal/adapters/web"
	"bookstore-console/internal/app"
	"bookstore-console/internal/config"
	"bookstore-console/internal/core"
	"bookstore-console/internal/metrics"
	"bookstore-console/internal/storeapi"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

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

	m := metrics.NewConsoleMetrics()
	console := app.NewConsole(store, agg, app.ReportSource(cfg.ReportSource), log, m)

	// Warm the console; a failure is non-fatal; the operator can refresh.
	ctx := context.Background()
	if err := console.RefreshOrders(ctx); err != nil {
		log.Warn("initial orders refresh failed", "err", err)
	}
	if err := console.RefreshReports(ctx); err != nil {
		log.Warn("initial reports refresh failed", "err", err)
	}

	handler := webAdapter.NewHandler(console, log, cfg.AllowedOrigins)

	log.Info("console server starting", "port", cfg.ServerPort, "store", cfg.StoreBaseURL)
	if err := http.ListenAndServe(":"+cfg.ServerPort, handler); err != nil {
		log.Error("server", "err", err)
		os.Exit(1)
	}
}
