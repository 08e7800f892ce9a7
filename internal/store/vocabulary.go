package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/orbita-learn/orbita-api/internal/domain"
)

// VocabularyStore defines the interface for per-(user, word)
// spaced-repetition record persistence.
type VocabularyStore interface {
	// CreateIfAbsent inserts a vocabulary item unless the user already has
	// one for the same word. Returns true if a row was inserted. Existing
	// items are never touched; the scheduler only bootstraps.
	CreateIfAbsent(ctx context.Context, item *domain.VocabularyItem) (bool, error)

	// ListByUser returns the user's vocabulary bank, due items first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.VocabularyItem, error)

	// CountByUser returns the size of the user's vocabulary bank.
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a new VocabularyStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) VocabularyStore
}
