package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidScore is returned when a mission score is outside 0-100.
	ErrInvalidScore = errors.New("score must be between 0 and 100")

	// ErrCompletedIsTerminal is returned on an attempt to move a completed
	// mission back to an earlier status.
	ErrCompletedIsTerminal = errors.New("completed mission cannot be reverted")

	// ErrItemNotInInventory is returned when consuming an item the user
	// does not hold.
	ErrItemNotInInventory = errors.New("item not in inventory")
)
