//go:build ignore

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hugh/go-projects/internal/auth"
	"github.com/hugh/go-projects/internal/blob"
	"github.com/hugh/go-projects/internal/database"
	"github.com/hugh/go-projects/internal/documents"
	"github.com/hugh/go-projects/internal/projects"
	"github.com/hugh/go-projects/pkg/config"
	"github.com/hugh/go-projects/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)
	ctx := context.Background()

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	secret, err := auth.GenerateSigningKey()
	if err != nil {
		log.Fatalf("failed to generate signing key: %v", err)
	}
	jwtService, err := auth.NewJWTService(secret, cfg.JWT.Expiry())
	if err != nil {
		log.Fatalf("failed to create JWT service: %v", err)
	}

	users := database.NewUserRepository(db)
	projectRepo := database.NewProjectRepository(db)
	authService := auth.NewService(users, projectRepo, jwtService, auth.WithLogger(logger))
	storage := blob.NewMemoryStorage()
	projectService := projects.NewService(projectRepo, users, documents.NewInlinePurger(storage, logger), logger)

	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	if email == "" {
		email = "demo@example.com"
	}
	if password == "" {
		password = "demo123!"
	}

	user, err := authService.Register(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			fmt.Printf("Demo user already exists: %s\n", email)
			return
		}
		log.Fatalf("failed to create demo user: %v", err)
	}

	project, err := projectService.Create(ctx, user, "Demo Project", "Seeded on first run")
	if err != nil {
		log.Fatalf("failed to create demo project: %v", err)
	}

	fmt.Printf("Demo user created successfully!\n")
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Project: %s (id %d)\n", project.Name, project.ID)
}
