package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Certificate
var (
	ErrEmptyCertificateID    = errors.New("certificate ID cannot be empty")
	ErrEmptyCertificateTitle = errors.New("certificate title cannot be empty")
)

// Certificate is a one-per-(user, course) award issued when every mission
// of a course is completed. It is created once and never updated.
type Certificate struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Level     string    `json:"level"`
	AwardedAt time.Time `json:"awarded_at"`
}

// NewCertificate creates a certificate for the given user and course title.
// Returns an error if validation fails.
func NewCertificate(userID uuid.UUID, title, level string) (*Certificate, error) {
	cert := &Certificate{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Level:     level,
		AwardedAt: time.Now().UTC(),
	}

	if err := cert.Validate(); err != nil {
		return nil, err
	}

	return cert, nil
}

// Validate checks if the Certificate has valid data.
func (c *Certificate) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCertificateID
	}
	if c.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if c.Title == "" {
		return ErrEmptyCertificateTitle
	}
	return nil
}
