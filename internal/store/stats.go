package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/orbita-learn/orbita-api/internal/domain"
)

// StatsStore defines the interface for the per-user gamification ledger.
// At most one row exists per user; it is created lazily on first need.
type StatsStore interface {
	// Create saves a new stats row.
	// Returns ErrDuplicate if the user already has one.
	Create(ctx context.Context, stats *domain.UserStats) error

	// Get retrieves the stats row for a user.
	// Returns ErrStatsNotFound if none exists yet.
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)

	// GetForUpdate retrieves the stats row with a row-level lock using
	// SELECT FOR UPDATE. Use within a transaction when applying rewards or
	// streak updates. Returns ErrStatsNotFound if none exists yet.
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)

	// Update modifies an existing stats row.
	// Returns ErrStatsNotFound if the row does not exist.
	Update(ctx context.Context, stats *domain.UserStats) error

	// WithTx returns a new StatsStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) StatsStore
}
