package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/orbita-learn/orbita-api/internal/config"
	"github.com/orbita-learn/orbita-api/internal/platform/postgres"
	"github.com/orbita-learn/orbita-api/internal/service"
	"github.com/orbita-learn/orbita-api/internal/service/auth"
	"github.com/orbita-learn/orbita-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore        store.UserStore
	curriculumStore  store.CurriculumStore
	curriculumWriter store.CurriculumWriter
	progressStore    store.ProgressStore
	statsStore       store.StatsStore
	certificateStore store.CertificateStore
	vocabularyStore  store.VocabularyStore

	// Service interfaces
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	userService      service.UserService
	progression      service.ProgressionService
}

// newApplication creates a new application instance with all dependencies
// initialized. Configuration, logger, and database connection must be
// established before application initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.passwordVerifier = auth.NewBcryptVerifier()

	bcryptCost := cfg.Auth.BcryptCost
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	app.userStore = postgres.NewPostgresUserStore(db, bcryptCost, logger)
	curriculumStore := postgres.NewPostgresCurriculumStore(db, logger)
	app.curriculumStore = curriculumStore
	app.curriculumWriter = curriculumStore
	app.progressStore = postgres.NewPostgresProgressStore(db, logger)
	app.statsStore = postgres.NewPostgresStatsStore(db, logger)
	app.certificateStore = postgres.NewPostgresCertificateStore(db, logger)
	app.vocabularyStore = postgres.NewPostgresVocabularyStore(db, logger)

	app.userService = service.NewUserService(
		db,
		app.userStore,
		app.statsStore,
		app.progressStore,
		app.curriculumStore,
		app.passwordVerifier,
		logger,
	)

	app.progression = service.NewProgressionService(
		db,
		app.curriculumStore,
		app.progressStore,
		app.statsStore,
		app.certificateStore,
		app.vocabularyStore,
		app.userStore,
		logger,
	)

	logger.Info("Application services initialized")
	return app, nil
}
