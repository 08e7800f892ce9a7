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

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the
// ProgressStore interface. If log is nil, a default logger is used.
func NewPostgresProgressStore(db store.DBTX, log *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: log.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// WithTx implements store.ProgressStore.WithTx
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

const progressColumns = `id, user_id, mission_id, status, score, attempts, xp_earned, completed_at, updated_at`

// Get implements store.ProgressStore.Get
// Returns store.ErrProgressNotFound if no row exists.
func (s *PostgresProgressStore) Get(ctx context.Context, userID, missionID uuid.UUID) (*domain.UserMissionProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM user_mission_progress
		WHERE user_id = $1 AND mission_id = $2
	`
	return s.scanProgress(s.db.QueryRowContext(ctx, query, userID, missionID))
}

// GetForUpdate implements store.ProgressStore.GetForUpdate
// Takes a row-level lock so concurrent submissions for the same
// (user, mission) serialize. Must run inside a transaction.
func (s *PostgresProgressStore) GetForUpdate(ctx context.Context, userID, missionID uuid.UUID) (*domain.UserMissionProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM user_mission_progress
		WHERE user_id = $1 AND mission_id = $2
		FOR UPDATE
	`
	return s.scanProgress(s.db.QueryRowContext(ctx, query, userID, missionID))
}

// Create implements store.ProgressStore.Create
// Returns store.ErrProgressExists if a row for the pair already exists.
func (s *PostgresProgressStore) Create(ctx context.Context, progress *domain.UserMissionProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("progress validation failed during create",
			slog.String("error", err.Error()),
			slog.String("progress_id", progress.ID.String()))
		return err
	}

	query := `
		INSERT INTO user_mission_progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		progress.ID, progress.UserID, progress.MissionID, progress.Status,
		progress.Score, progress.Attempts, progress.XPEarned,
		progress.CompletedAt, progress.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return MapUniqueViolation(err, store.ErrProgressExists)
		}
		log.Error("failed to create progress row",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("mission_id", progress.MissionID.String()))
		return MapError(err)
	}
	return nil
}

// CreateIfAbsent implements store.ProgressStore.CreateIfAbsent
// Uses ON CONFLICT DO NOTHING on the (user_id, mission_id) unique index so
// the unlock cascades stay idempotent under concurrency.
func (s *PostgresProgressStore) CreateIfAbsent(ctx context.Context, progress *domain.UserMissionProgress) (bool, error) {
	if err := progress.Validate(); err != nil {
		return false, err
	}

	query := `
		INSERT INTO user_mission_progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, mission_id) DO NOTHING
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		progress.ID, progress.UserID, progress.MissionID, progress.Status,
		progress.Score, progress.Attempts, progress.XPEarned,
		progress.CompletedAt, progress.UpdatedAt,
	)
	if err != nil {
		return false, MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, MapError(err)
	}
	return rows > 0, nil
}

// Update implements store.ProgressStore.Update
// Returns store.ErrProgressNotFound if the row does not exist.
func (s *PostgresProgressStore) Update(ctx context.Context, progress *domain.UserMissionProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE user_mission_progress
		SET status = $2, score = $3, attempts = $4, xp_earned = $5, completed_at = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		progress.ID, progress.Status, progress.Score, progress.Attempts,
		progress.XPEarned, progress.CompletedAt, progress.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update progress row",
			slog.String("error", err.Error()),
			slog.String("progress_id", progress.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "mission progress"); err != nil {
		return store.ErrProgressNotFound
	}
	return nil
}

// ListByUserAndCourse implements store.ProgressStore.ListByUserAndCourse
func (s *PostgresProgressStore) ListByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) ([]*domain.UserMissionProgress, error) {
	query := `
		SELECT p.id, p.user_id, p.mission_id, p.status, p.score, p.attempts, p.xp_earned, p.completed_at, p.updated_at
		FROM user_mission_progress p
		JOIN missions m ON m.id = p.mission_id
		WHERE p.user_id = $1 AND m.course_id = $2
	`
	rows, err := s.db.QueryContext(ctx, query, userID, courseID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var list []*domain.UserMissionProgress
	for rows.Next() {
		var p domain.UserMissionProgress
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.MissionID, &p.Status, &p.Score,
			&p.Attempts, &p.XPEarned, &p.CompletedAt, &p.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// CountByCourse implements store.ProgressStore.CountByCourse
func (s *PostgresProgressStore) CountByCourse(ctx context.Context, userID, courseID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM user_mission_progress p
		JOIN missions m ON m.id = p.mission_id
		WHERE p.user_id = $1 AND m.course_id = $2
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, courseID).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// CountCompletedByCourse implements store.ProgressStore.CountCompletedByCourse
func (s *PostgresProgressStore) CountCompletedByCourse(ctx context.Context, userID, courseID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM user_mission_progress p
		JOIN missions m ON m.id = p.mission_id
		WHERE p.user_id = $1 AND m.course_id = $2 AND p.status = $3
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, courseID, domain.ProgressCompleted).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// CountCompletedByUser implements store.ProgressStore.CountCompletedByUser
func (s *PostgresProgressStore) CountCompletedByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM user_mission_progress
		WHERE user_id = $1 AND status = $2
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, domain.ProgressCompleted).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// SumCompletedDuration implements store.ProgressStore.SumCompletedDuration
func (s *PostgresProgressStore) SumCompletedDuration(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(SUM(m.duration_min), 0)
		FROM user_mission_progress p
		JOIN missions m ON m.id = p.mission_id
		WHERE p.user_id = $1 AND p.status = $2
	`
	var minutes int
	if err := s.db.QueryRowContext(ctx, query, userID, domain.ProgressCompleted).Scan(&minutes); err != nil {
		return 0, MapError(err)
	}
	return minutes, nil
}

func (s *PostgresProgressStore) scanProgress(row *sql.Row) (*domain.UserMissionProgress, error) {
	var p domain.UserMissionProgress
	err := row.Scan(
		&p.ID, &p.UserID, &p.MissionID, &p.Status, &p.Score,
		&p.Attempts, &p.XPEarned, &p.CompletedAt, &p.UpdatedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrProgressNotFound
		}
		return nil, MapError(err)
	}
	return &p, nil
}
