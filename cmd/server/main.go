// Package main runs the streamcast API server: an HTTP backend for a live
// streaming demo with on-chain tipping.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/streamcast/streamcast/internal/app"
	"github.com/streamcast/streamcast/internal/config"
	"github.com/streamcast/streamcast/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.NewDefault("main").Fatalf("load configuration: %v", err)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	application, err := app.New(cfg, app.Stores{}, nil, log)
	if err != nil {
		log.Fatalf("initialise application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		log.Fatalf("start application: %v", err)
	}
	log.Infof("streamcast server running on port %d", cfg.Server.Port)

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown did not complete cleanly")
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
