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

	"github.com/joho/godotenv"

	"callguard/internal/platform/config"
	"callguard/internal/platform/httpserver"
	"callguard/internal/platform/logger"
)

// main loads configuration, wires the service and owns the server
// lifecycle. Business logic lives in internal/callfilter.
func main() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, warnings := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	for _, w := range warnings {
		log.Warn("configuration fallback", "detail", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise service", "error", err)
		os.Exit(1)
	}
	defer app.close()

	srv := httpserver.New(cfg.Addr, app.router, cfg.Screening.PipelineTimeout)
	go func() {
		log.Info("starting callguard", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Screening.PipelineTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.Any("error", err))
	}
}
