package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"coastalstay/internal/infra/config"
	"coastalstay/internal/infra/obs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	logger := obs.NewLogger(obs.LoggerOptions{Env: cfg.Env, Level: cfg.LogLevel, File: cfg.LogFile})

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	server := app.server
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode, "kafka", cfg.KafkaEnabled())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if app.worker != nil {
		g.Go(func() error {
			logger.Info("outbox worker starting", "interval", app.worker.Interval, "kafka", app.worker.Producer != nil)
			return ignoreCanceled(app.worker.Run(gctx))
		})
	}
	if app.consumer != nil {
		g.Go(func() error {
			logger.Info("kafka consumer starting", "group", cfg.KafkaConsumerGroup, "topics", app.topics)
			return ignoreCanceled(app.consumer.Run(gctx, app.topics))
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("service stopped")
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
