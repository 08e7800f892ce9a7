// Package main implements the entry point for the Orbita API server,
// the progression and reward engine behind the language-learning platform.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/orbita-learn/orbita-api/internal/config"
	"github.com/orbita-learn/orbita-api/internal/platform/logger"
)

func main() {
	// Load .env for local development; absence is not an error.
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment from .env")
	}

	if err := run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// run wires the application together and blocks until shutdown.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	if err := runMigrations(db, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	ctx := context.Background()

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.seedCurriculum(ctx); err != nil {
		return fmt.Errorf("failed to seed curriculum: %w", err)
	}

	return app.startHTTPServer(ctx, app.setupRouter())
}
