// Command serve keeps the incident file fresh and exposes it over HTTP. The
// pipeline runs once at startup, then every REFRESH_INTERVAL and whenever
// the import CSV changes on disk.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	httpadapter "github.com/couchcryptid/crime-data-etl/internal/adapter/http"
	"github.com/couchcryptid/crime-data-etl/internal/app"
	"github.com/couchcryptid/crime-data-etl/internal/config"
	"github.com/couchcryptid/crime-data-etl/internal/observability"
	"github.com/couchcryptid/crime-data-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	a, err := app.Build(cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, a.Pipeline, a.Pipeline, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	triggers := make(chan string, 1)
	w, err := watchImport(ctx, cfg.ImportCSV, triggers, logger)
	if err != nil {
		logger.Warn("import csv watch disabled", "path", cfg.ImportCSV, "error", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		runLoop(ctx, a.Pipeline, cfg.RefreshInterval, triggers, logger)
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if w != nil {
		if err := w.Close(); err != nil {
			logger.Error("watcher close error", "error", err)
		}
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline run still in progress at shutdown")
	}
	if err := a.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// runLoop runs the pipeline immediately, then on every tick or trigger until
// ctx is cancelled. Run errors are logged; the previous output stays in place.
func runLoop(ctx context.Context, p *pipeline.Pipeline, interval time.Duration, triggers <-chan string, logger *slog.Logger) {
	run := func(reason string) {
		logger.Info("pipeline run triggered", "reason", reason)
		if _, err := p.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("pipeline run failed", "reason", reason, "error", err)
		}
	}

	run("startup")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run("interval")
		case reason := <-triggers:
			run(reason)
		}
	}
}
