package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vmelnikov/insurance-assistant/internal/bootstrap"
	"github.com/vmelnikov/insurance-assistant/internal/config"
	"github.com/vmelnikov/insurance-assistant/internal/observability/logging"
)

// The indexer is a one-shot job: build the index from the document corpus,
// persist the artifacts, announce the rebuild on the bus, exit. The metrics
// endpoint stays up for the duration of the build so a scrape can catch it.
func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("indexer", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewIndexer(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:    ":" + cfg.IndexerMetricsPort,
		Handler: app.Metrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	start := time.Now()
	chunks, err := app.Ingest.BuildIndex(ctx)
	app.Metrics.FinishRebuild("indexer", chunks, time.Since(start), err)
	if err != nil {
		log.Fatalf("index build failed: %v", err)
	}
	logger.Info("index_build_finished", "chunks", chunks, "duration_ms", time.Since(start).Milliseconds())

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := app.Bus.PublishIndexRebuilt(publishCtx); err != nil {
		logger.Error("publish_index_rebuilt_failed", "error", err)
		os.Exit(1)
	}
	logger.Info("index_rebuilt_published", "subject", cfg.NATSSubject)
}
