package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/estatly/estatly/internal/config"
	"github.com/estatly/estatly/internal/devserver"
	"github.com/estatly/estatly/internal/logger"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The dev server logs every request, so default to info
	level := cfg.Logging.Level
	if os.Getenv("LOG_LEVEL") == "" {
		level = "info"
	}
	logger.Init(level, cfg.Logging.Format)
	log := logger.GetLogger()

	srv, err := devserver.New(cfg.DevServer, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	log.Info().
		Str("version", version).
		Str("admin_email", cfg.DevServer.AdminEmail).
		Msg("Starting estatly dev server...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
