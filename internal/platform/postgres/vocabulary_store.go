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

// PostgresVocabularyStore implements the store.VocabularyStore interface
// using a PostgreSQL database as the storage backend.
type PostgresVocabularyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVocabularyStore creates a new PostgreSQL implementation of the
// VocabularyStore interface. If log is nil, a default logger is used.
func NewPostgresVocabularyStore(db store.DBTX, log *slog.Logger) *PostgresVocabularyStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresVocabularyStore{
		db:     db,
		logger: log.With(slog.String("component", "vocabulary_store")),
	}
}

// Ensure PostgresVocabularyStore implements store.VocabularyStore interface
var _ store.VocabularyStore = (*PostgresVocabularyStore)(nil)

// WithTx implements store.VocabularyStore.WithTx
func (s *PostgresVocabularyStore) WithTx(tx *sql.Tx) store.VocabularyStore {
	return &PostgresVocabularyStore{
		db:     tx,
		logger: s.logger,
	}
}

// CreateIfAbsent implements store.VocabularyStore.CreateIfAbsent
// Uses ON CONFLICT DO NOTHING on the (user_id, word) unique index so the
// bootstrap never touches an existing item.
func (s *PostgresVocabularyStore) CreateIfAbsent(ctx context.Context, item *domain.VocabularyItem) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("vocabulary item validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", item.UserID.String()))
		return false, err
	}

	query := `
		INSERT INTO vocabulary_items (id, user_id, word, translation, example, next_review, interval_days, ease_factor, streak, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, word) DO NOTHING
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		item.ID, item.UserID, item.Word, item.Translation, item.Example,
		item.NextReview, item.Interval, item.EaseFactor, item.Streak, item.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create vocabulary item",
			slog.String("error", err.Error()),
			slog.String("user_id", item.UserID.String()))
		return false, MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, MapError(err)
	}
	return rows > 0, nil
}

// ListByUser implements store.VocabularyStore.ListByUser
func (s *PostgresVocabularyStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.VocabularyItem, error) {
	query := `
		SELECT id, user_id, word, translation, example, next_review, interval_days, ease_factor, streak, created_at
		FROM vocabulary_items
		WHERE user_id = $1
		ORDER BY next_review, word
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var items []*domain.VocabularyItem
	for rows.Next() {
		var v domain.VocabularyItem
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.Word, &v.Translation, &v.Example,
			&v.NextReview, &v.Interval, &v.EaseFactor, &v.Streak, &v.CreatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		items = append(items, &v)
	}
	return items, rows.Err()
}

// CountByUser implements store.VocabularyStore.CountByUser
func (s *PostgresVocabularyStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM vocabulary_items WHERE user_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}
