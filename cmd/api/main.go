package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/config"
	"github.com/pageza/nutriplan/backend/internal/database"
	"github.com/pageza/nutriplan/backend/internal/logging"
	"github.com/pageza/nutriplan/backend/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, "nutriplan-api")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Open(cfg, logger)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db, logger); err != nil {
		return err
	}

	deps := server.Deps{DB: db, Log: logger}

	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(cfg, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		deps.Redis = client
	}

	if cfg.ExportsEnabled() {
		s3, err := config.NewS3Config(ctx, cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			return err
		}
		deps.Exports = s3
	} else {
		logger.Info("s3 bucket not configured, plan exports disabled")
	}

	srv, err := server.New(cfg, deps)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
