package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/orbita-learn/orbita-api/internal/domain"
)

// CertificateStore defines the interface for course-completion award
// persistence. Certificates are unique per (user, title) and immutable.
type CertificateStore interface {
	// Create saves a new certificate.
	// Returns ErrCertificateExists if the user already holds one with the
	// same title.
	Create(ctx context.Context, cert *domain.Certificate) error

	// ExistsForTitle reports whether the user already holds a certificate
	// with the given title. The course-completion bonus is guarded by this
	// check so the bonus and the certificate are issued together, once.
	ExistsForTitle(ctx context.Context, userID uuid.UUID, title string) (bool, error)

	// ListByUser returns the user's certificates, most recent first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Certificate, error)

	// WithTx returns a new CertificateStore instance that uses the
	// provided transaction.
	WithTx(tx *sql.Tx) CertificateStore
}
