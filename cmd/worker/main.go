package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/hugh/go-projects/internal/blob"
	"github.com/hugh/go-projects/internal/tasks"
	"github.com/hugh/go-projects/pkg/config"
	"github.com/hugh/go-projects/pkg/crypto"
	"github.com/hugh/go-projects/pkg/queue"
	"github.com/hugh/go-projects/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting blob purge worker", "driver", cfg.Blob.Driver)

	if !blob.Shared(cfg.Blob.Driver) {
		logger.Warn("memory blob driver is process-local; the worker has nothing to purge")
	}

	var encryptor *crypto.Encryptor
	if cfg.Encryption.Key != "" {
		encryptor, err = crypto.NewEncryptor(cfg.Encryption.Key)
		if err != nil {
			logger.Error("failed to create encryptor", "error", err)
			os.Exit(1)
		}
	}

	storage, err := blob.New(context.Background(), cfg.Blob, encryptor, logger)
	if err != nil {
		logger.Error("failed to create blob storage", "error", err)
		os.Exit(1)
	}

	srv := queue.NewServer(&cfg.Redis, 10)

	handler := tasks.NewHandler(storage, logger)
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		srv.Shutdown()
		cancel()
	}()

	logger.Info("worker started, waiting for tasks...")

	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	<-ctx.Done()

	if err := blob.Close(storage); err != nil {
		logger.Warn("closing blob storage", "error", err)
	}

	logger.Info("worker stopped")
}
