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

	"github.com/hibiken/asynq"
	"github.com/hugh/go-projects/internal/api"
	"github.com/hugh/go-projects/internal/api/middleware"
	"github.com/hugh/go-projects/internal/auth"
	"github.com/hugh/go-projects/internal/blob"
	"github.com/hugh/go-projects/internal/database"
	"github.com/hugh/go-projects/internal/documents"
	"github.com/hugh/go-projects/internal/projects"
	"github.com/hugh/go-projects/internal/tasks"
	"github.com/hugh/go-projects/pkg/config"
	"github.com/hugh/go-projects/pkg/crypto"
	"github.com/hugh/go-projects/pkg/queue"
	"github.com/hugh/go-projects/pkg/util"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
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

	logger.Info("starting projects server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(context.Background(), db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("failed to connect to Redis, purging blobs inline", "error", err)
			redisClient.Close()
			redisClient = nil
		}
	}

	// Blob encryption at rest
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

	// The worker cannot reach an in-process memory store, so purges stay local.
	var (
		purger      documents.Purger
		asynqClient *asynq.Client
	)
	if redisClient != nil && blob.Shared(cfg.Blob.Driver) {
		asynqClient = queue.NewClient(&cfg.Redis)
		purger = tasks.NewEnqueuer(asynqClient)
	} else {
		purger = documents.NewInlinePurger(storage, logger)
	}

	secret := []byte(cfg.JWT.Secret)
	if len(secret) == 0 {
		secret, err = auth.GenerateSigningKey()
		if err != nil {
			logger.Error("failed to generate signing key", "error", err)
			os.Exit(1)
		}
		logger.Warn("JWT_SECRET not set, using generated key - tokens will be invalid after restart")
	}
	jwtService, err := auth.NewJWTService(secret, cfg.JWT.Expiry())
	if err != nil {
		logger.Error("failed to create JWT service", "error", err)
		os.Exit(1)
	}

	users := database.NewUserRepository(db)
	projectRepo := database.NewProjectRepository(db)

	authService := auth.NewService(users, projectRepo, jwtService, auth.WithLogger(logger))
	projectService := projects.NewService(projectRepo, users, purger, logger)
	documentService := documents.NewService(database.NewDocumentRepository(db), storage, purger, cfg.Upload.MaxBytes, logger)

	clientIPs, err := middleware.NewClientIP(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", "error", err)
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterConfig{
		DB:              db,
		Redis:           redisClient,
		Logger:          logger,
		AuthService:     authService,
		Projects:        projectService,
		Documents:       documentService,
		ClientIP:        clientIPs,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		RateLimitReqs:   cfg.RateLimit.Requests,
		RateLimitSecs:   cfg.RateLimit.WindowSeconds,
		LoginRateLimit:  cfg.RateLimit.LoginRequests,
		UploadRateLimit: cfg.RateLimit.UploadRequests,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	router.Close()

	if asynqClient != nil {
		asynqClient.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if err := blob.Close(storage); err != nil {
		logger.Warn("closing blob storage", "error", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
