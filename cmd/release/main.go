package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"jupiter-deploy/internal/config"
	"jupiter-deploy/internal/pkg/logger"
	"jupiter-deploy/internal/release"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	dotenvErr := godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed: %v\n", err)
		return err
	}
	defer log.Sync()
	log = log.With(zap.String("run_id", uuid.New().String()))

	if dotenvErr != nil {
		log.Warn("no .env file found, using process environment")
	}

	if err := cfg.Release.Validate(); err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return err
	}

	log.Info("🚀 starting release",
		zap.String("version", cfg.Release.Version),
		zap.String("workspace", cfg.Release.Workspace))

	if err := release.NewPipeline(cfg.Release, log, nil).Run(); err != nil {
		log.Error("❌ release failed", zap.Error(err))
		return err
	}

	log.Info("✅ release completed", zap.String("version", cfg.Release.Version))
	return nil
}
