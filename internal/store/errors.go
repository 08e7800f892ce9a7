package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic version of the entity-specific not found
	// errors (e.g., ErrUserNotFound, ErrMissionNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation fails, for example
	// because the entity does not exist or the update violates constraints.
	ErrUpdateFailed = errors.New("update failed")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrCourseNotFound indicates that the requested course does not exist.
	ErrCourseNotFound = fmt.Errorf("%w: course", ErrNotFound)

	// ErrTrackNotFound indicates that the requested track does not exist.
	ErrTrackNotFound = fmt.Errorf("%w: track", ErrNotFound)

	// ErrMissionNotFound indicates that the requested mission does not exist.
	ErrMissionNotFound = fmt.Errorf("%w: mission", ErrNotFound)

	// ErrStatsNotFound indicates that the user has no stats row yet.
	ErrStatsNotFound = fmt.Errorf("%w: user stats", ErrNotFound)

	// ErrProgressNotFound indicates that no progress row exists for the
	// (user, mission) pair. Callers treat this as status "locked".
	ErrProgressNotFound = fmt.Errorf("%w: mission progress", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already
	// exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrCertificateExists indicates that the user already holds a
	// certificate for the course.
	ErrCertificateExists = fmt.Errorf("%w: certificate", ErrDuplicate)

	// ErrVocabularyExists indicates that the user already has a vocabulary
	// item for the word.
	ErrVocabularyExists = fmt.Errorf("%w: vocabulary item", ErrDuplicate)

	// ErrProgressExists indicates that a progress row for the
	// (user, mission) pair already exists.
	ErrProgressExists = fmt.Errorf("%w: mission progress", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error,
// generic or entity-specific.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error,
// generic or entity-specific.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with
// additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "user", "mission")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation,
// message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
