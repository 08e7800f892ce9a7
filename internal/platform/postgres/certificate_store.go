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

// PostgresCertificateStore implements the store.CertificateStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCertificateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCertificateStore creates a new PostgreSQL implementation of
// the CertificateStore interface. If log is nil, a default logger is used.
func NewPostgresCertificateStore(db store.DBTX, log *slog.Logger) *PostgresCertificateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresCertificateStore{
		db:     db,
		logger: log.With(slog.String("component", "certificate_store")),
	}
}

// Ensure PostgresCertificateStore implements store.CertificateStore interface
var _ store.CertificateStore = (*PostgresCertificateStore)(nil)

// WithTx implements store.CertificateStore.WithTx
func (s *PostgresCertificateStore) WithTx(tx *sql.Tx) store.CertificateStore {
	return &PostgresCertificateStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.CertificateStore.Create
// Returns store.ErrCertificateExists if the user already holds a
// certificate with the same title.
func (s *PostgresCertificateStore) Create(ctx context.Context, cert *domain.Certificate) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := cert.Validate(); err != nil {
		log.Warn("certificate validation failed during create",
			slog.String("error", err.Error()),
			slog.String("certificate_id", cert.ID.String()))
		return err
	}

	query := `
		INSERT INTO certificates (id, user_id, title, level, awarded_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		cert.ID, cert.UserID, cert.Title, cert.Level, cert.AwardedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return MapUniqueViolation(err, store.ErrCertificateExists)
		}
		log.Error("failed to create certificate",
			slog.String("error", err.Error()),
			slog.String("user_id", cert.UserID.String()))
		return MapError(err)
	}

	log.Info("certificate issued",
		slog.String("user_id", cert.UserID.String()),
		slog.String("title", cert.Title))
	return nil
}

// ExistsForTitle implements store.CertificateStore.ExistsForTitle
func (s *PostgresCertificateStore) ExistsForTitle(ctx context.Context, userID uuid.UUID, title string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM certificates WHERE user_id = $1 AND title = $2
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, userID, title).Scan(&exists); err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// ListByUser implements store.CertificateStore.ListByUser
func (s *PostgresCertificateStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Certificate, error) {
	query := `
		SELECT id, user_id, title, level, awarded_at
		FROM certificates
		WHERE user_id = $1
		ORDER BY awarded_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var certs []*domain.Certificate
	for rows.Next() {
		var c domain.Certificate
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.Level, &c.AwardedAt); err != nil {
			return nil, MapError(err)
		}
		certs = append(certs, &c)
	}
	return certs, rows.Err()
}
