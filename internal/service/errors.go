// Package service provides application-level services for the progression
// engine: course listing, mission submission, reconciliation, streaks,
// vocabulary bootstrap, and user account operations.
package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrInvalidCredentials indicates a login attempt with an unknown email
	// or a wrong password. API layer should map this to HTTP 401.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidItemGrant indicates an inventory grant with a non-positive
	// count or an empty item id. API layer should map this to HTTP 400.
	ErrInvalidItemGrant = errors.New("invalid inventory grant")
)

// ProgressionError is a wrapper error type for unexpected failures inside
// progression operations. Expected conditions use the sentinels above or the
// store sentinels instead.
type ProgressionError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ProgressionError.
func (e *ProgressionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("progression %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("progression %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ProgressionError) Unwrap() error {
	return e.Err
}

// NewProgressionError creates a new ProgressionError.
func NewProgressionError(operation, message string, err error) *ProgressionError {
	return &ProgressionError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
