package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"jupiter-deploy/internal/config"
	"jupiter-deploy/internal/deploy"
	"jupiter-deploy/internal/pipeline"
	"jupiter-deploy/internal/pkg/logger"
	"jupiter-deploy/internal/pkg/ssh"
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

	if err := cfg.Deploy.Validate(); err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return err
	}

	log.Info("🚀 starting deployment",
		zap.String("server", cfg.Deploy.ServerIP),
		zap.String("deploy_path", cfg.Deploy.DeployPath))

	client := ssh.NewClient(ssh.Config{
		Host:           cfg.Deploy.ServerIP,
		Port:           cfg.Deploy.SSHPort,
		Username:       cfg.Deploy.SSHUsername,
		AuthType:       "password",
		Password:       cfg.Deploy.SSHPassword,
		ConnectTimeout: cfg.Deploy.ConnectTimeout,
	})

	log.StageStart("connect")
	if err := client.Connect(); err != nil {
		log.StageFailed("connect", err)
		return &pipeline.StageError{Stage: "connect", Err: err}
	}
	log.StageDone("connect")
	defer func() {
		if cerr := client.Close(); cerr != nil {
			log.Warn("closing remote session", zap.Error(cerr))
		}
	}()

	if err := deploy.NewPipeline(client, cfg.Deploy, log).Run(); err != nil {
		log.Error("❌ deployment failed", zap.Error(err))
		return err
	}

	log.Info("✅ deployment completed",
		zap.String("server", cfg.Deploy.ServerIP),
		zap.String("deploy_path", cfg.Deploy.DeployPath))
	return nil
}
