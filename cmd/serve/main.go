// Command serve exposes a previously built dataset over HTTP for the
// visualization layer (choropleth + detail panel) and for operator review of
// unresolved rows.
//
// Usage:
//
//	go run ./cmd/serve -db data/dataset.db
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lawatlas/disaster-law-etl/internal/adapter/httpapi"
	"github.com/lawatlas/disaster-law-etl/internal/adapter/sqlite"
	"github.com/lawatlas/disaster-law-etl/internal/config"
	"github.com/lawatlas/disaster-law-etl/internal/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("serve failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	dbPath := flag.String("db", "", "SQLite dataset produced by cmd/etl")
	flag.Parse()

	if *dbPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -db")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck // process is exiting

	ds, err := store.LoadDataset()
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", "db", *dbPath, "jurisdictions", ds.Len(), "built_at", ds.BuiltAt())

	srv := httpapi.NewServer(cfg.HTTPAddr, ds, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
