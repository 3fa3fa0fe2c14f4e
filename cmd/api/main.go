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

	httpadapter "github.com/vmelnikov/insurance-assistant/internal/adapters/http"
	"github.com/vmelnikov/insurance-assistant/internal/bootstrap"
	"github.com/vmelnikov/insurance-assistant/internal/config"
	"github.com/vmelnikov/insurance-assistant/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewAPI(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	// Hot-swap the index whenever the indexer announces a rebuild.
	go func() {
		err := app.Bus.SubscribeIndexRebuilt(ctx, func(handlerCtx context.Context) error {
			reloadCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
			defer cancel()
			return app.ReloadIndex(reloadCtx)
		})
		if err != nil {
			logger.Error("index_rebuilt_subscription_failed", "error", err)
		}
	}()

	go app.Sessions.RunSweeper(ctx, time.Duration(cfg.SessionSweepSeconds)*time.Second)

	router := httpadapter.NewRouter(
		app.Chat,
		app.Index,
		app.Metrics,
		cfg.APIRateLimitRPS,
		cfg.APIRateLimitBurst,
		cfg.APIMaxInFlight,
	).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_error", "error", err)
	}
}
