package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/orbita-learn/orbita-api/internal/domain"
)

// ProgressStore defines the interface for per-(user, mission) progress
// persistence. Absence of a row means the mission is locked for the user.
type ProgressStore interface {
	// Get retrieves the progress row for the (user, mission) pair.
	// Returns ErrProgressNotFound if no row exists.
	// NOTE: no row locking; do not use when you plan to update the row
	// under concurrency.
	Get(ctx context.Context, userID, missionID uuid.UUID) (*domain.UserMissionProgress, error)

	// GetForUpdate retrieves the progress row with a row-level lock using
	// SELECT FOR UPDATE. Use within a transaction when updating, so
	// concurrent submissions for the same (user, mission) serialize.
	// Returns ErrProgressNotFound if no row exists.
	GetForUpdate(ctx context.Context, userID, missionID uuid.UUID) (*domain.UserMissionProgress, error)

	// Create inserts a new progress row.
	// Returns ErrProgressExists if a row for the pair already exists.
	Create(ctx context.Context, progress *domain.UserMissionProgress) error

	// CreateIfAbsent inserts a progress row unless one already exists for
	// the (user, mission) pair. Returns true if a row was inserted. Safe
	// to call concurrently and repeatedly; the unlock cascades rely on it.
	CreateIfAbsent(ctx context.Context, progress *domain.UserMissionProgress) (bool, error)

	// Update modifies an existing progress row.
	// Returns ErrProgressNotFound if the row does not exist.
	Update(ctx context.Context, progress *domain.UserMissionProgress) error

	// ListByUserAndCourse returns all progress rows the user has for
	// missions of the given course.
	ListByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) ([]*domain.UserMissionProgress, error)

	// CountByCourse returns the number of progress rows (any status) the
	// user has in the course. Zero rows on an accessible course signals a
	// lost unlock cascade to the reconciler.
	CountByCourse(ctx context.Context, userID, courseID uuid.UUID) (int, error)

	// CountCompletedByCourse returns the number of completed missions the
	// user has in the course.
	CountCompletedByCourse(ctx context.Context, userID, courseID uuid.UUID) (int, error)

	// CountCompletedByUser returns the user's total completed missions.
	CountCompletedByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// SumCompletedDuration returns the total duration_min over the user's
	// completed missions.
	SumCompletedDuration(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a new ProgressStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ProgressStore
}
