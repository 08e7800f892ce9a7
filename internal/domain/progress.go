package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ProgressStatus represents the per-user state of a mission.
type ProgressStatus string

// Possible progress status values. The status only advances forward:
// locked -> unlocked -> completed. Absence of a progress row is
// semantically equivalent to locked.
const (
	ProgressLocked    ProgressStatus = "locked"
	ProgressUnlocked  ProgressStatus = "unlocked"
	ProgressCompleted ProgressStatus = "completed"
)

// Common validation errors for UserMissionProgress
var (
	ErrEmptyProgressID       = errors.New("progress ID cannot be empty")
	ErrEmptyProgressUserID   = errors.New("progress user ID cannot be empty")
	ErrInvalidProgressStatus = errors.New("invalid progress status")
)

// UserMissionProgress is the per-(user, mission) state machine row.
// Attempts and Score record every submission; XPEarned and CompletedAt are
// set exactly once, on the first passing submission.
type UserMissionProgress struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	MissionID   uuid.UUID      `json:"mission_id"`
	Status      ProgressStatus `json:"status"`
	Score       int            `json:"score"`
	Attempts    int            `json:"attempts"`
	XPEarned    int            `json:"xp_earned"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewUserMissionProgress creates a progress row in the given status.
// Returns an error if validation fails.
func NewUserMissionProgress(
	userID, missionID uuid.UUID,
	status ProgressStatus,
) (*UserMissionProgress, error) {
	progress := &UserMissionProgress{
		ID:        uuid.New(),
		UserID:    userID,
		MissionID: missionID,
		Status:    status,
		UpdatedAt: time.Now().UTC(),
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// Validate checks if the UserMissionProgress has valid data.
func (p *UserMissionProgress) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProgressID
	}
	if p.UserID == uuid.Nil {
		return ErrEmptyProgressUserID
	}
	if p.MissionID == uuid.Nil {
		return ErrEmptyMissionID
	}
	if !isValidProgressStatus(p.Status) {
		return ErrInvalidProgressStatus
	}
	if p.Score < 0 || p.Score > 100 {
		return ErrInvalidScore
	}
	return nil
}

// RecordAttempt registers a submission: increments the attempt counter and
// overwrites the last score. It never changes the status; completion is a
// separate transition.
func (p *UserMissionProgress) RecordAttempt(score int) error {
	if score < 0 || score > 100 {
		return ErrInvalidScore
	}
	p.Attempts++
	p.Score = score
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete transitions the row to completed, stamps CompletedAt, and sets
// the earned reward. Completed is terminal: calling Complete on an already
// completed row returns ErrCompletedIsTerminal so the caller cannot grant
// the reward twice.
func (p *UserMissionProgress) Complete(xpReward int) error {
	if p.Status == ProgressCompleted {
		return ErrCompletedIsTerminal
	}
	now := time.Now().UTC()
	p.Status = ProgressCompleted
	p.CompletedAt = &now
	p.XPEarned = xpReward
	p.UpdatedAt = now
	return nil
}

func isValidProgressStatus(status ProgressStatus) bool {
	switch status {
	case ProgressLocked, ProgressUnlocked, ProgressCompleted:
		return true
	default:
		return false
	}
}
