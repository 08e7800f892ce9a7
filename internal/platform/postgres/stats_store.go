package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/orbita-learn/orbita-api/internal/domain"
	"github.com/orbita-learn/orbita-api/internal/platform/logger"
	"github.com/orbita-learn/orbita-api/internal/store"
)

// PostgresStatsStore implements the store.StatsStore interface
// using a PostgreSQL database as the storage backend.
type PostgresStatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStatsStore creates a new PostgreSQL implementation of the
// StatsStore interface. If log is nil, a default logger is used.
func NewPostgresStatsStore(db store.DBTX, log *slog.Logger) *PostgresStatsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresStatsStore{
		db:     db,
		logger: log.With(slog.String("component", "stats_store")),
	}
}

// Ensure PostgresStatsStore implements store.StatsStore interface
var _ store.StatsStore = (*PostgresStatsStore)(nil)

// WithTx implements store.StatsStore.WithTx
func (s *PostgresStatsStore) WithTx(tx *sql.Tx) store.StatsStore {
	return &PostgresStatsStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.StatsStore.Create
// Returns store.ErrDuplicate if the user already has a stats row.
func (s *PostgresStatsStore) Create(ctx context.Context, stats *domain.UserStats) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := stats.Validate(); err != nil {
		log.Warn("stats validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", stats.UserID.String()))
		return err
	}

	query := `
		INSERT INTO user_stats (id, user_id, credits, xp_total, streak, last_activity_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		stats.ID, stats.UserID, stats.Credits, stats.XPTotal,
		stats.Streak, stats.LastActivityDate, stats.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create stats row",
			slog.String("error", err.Error()),
			slog.String("user_id", stats.UserID.String()))
		return MapError(err)
	}
	return nil
}

// Get implements store.StatsStore.Get
// Returns store.ErrStatsNotFound if no row exists yet.
func (s *PostgresStatsStore) Get(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	query := `
		SELECT id, user_id, credits, xp_total, streak, last_activity_date, updated_at
		FROM user_stats
		WHERE user_id = $1
	`
	return s.scanStats(s.db.QueryRowContext(ctx, query, userID))
}

// GetForUpdate implements store.StatsStore.GetForUpdate
// Takes a row-level lock; must run inside a transaction.
func (s *PostgresStatsStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	query := `
		SELECT id, user_id, credits, xp_total, streak, last_activity_date, updated_at
		FROM user_stats
		WHERE user_id = $1
		FOR UPDATE
	`
	return s.scanStats(s.db.QueryRowContext(ctx, query, userID))
}

// Update implements store.StatsStore.Update
// Returns store.ErrStatsNotFound if the row does not exist.
func (s *PostgresStatsStore) Update(ctx context.Context, stats *domain.UserStats) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := stats.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE user_stats
		SET credits = $2, xp_total = $3, streak = $4, last_activity_date = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		stats.ID, stats.Credits, stats.XPTotal, stats.Streak,
		stats.LastActivityDate, stats.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update stats row",
			slog.String("error", err.Error()),
			slog.String("user_id", stats.UserID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "user stats"); err != nil {
		return store.ErrStatsNotFound
	}
	return nil
}

func (s *PostgresStatsStore) scanStats(row *sql.Row) (*domain.UserStats, error) {
	var stats domain.UserStats
	err := row.Scan(
		&stats.ID, &stats.UserID, &stats.Credits, &stats.XPTotal,
		&stats.Streak, &stats.LastActivityDate, &stats.UpdatedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrStatsNotFound
		}
		return nil, MapError(err)
	}
	return &stats, nil
}
