package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for UserStats
var (
	ErrEmptyStatsID     = errors.New("stats ID cannot be empty")
	ErrEmptyStatsUserID = errors.New("stats user ID cannot be empty")
	ErrNegativeBalance  = errors.New("credits and XP cannot be negative")
)

// StreakNotice reports the outcome of a session-start streak evaluation.
type StreakNotice string

// Session-start outcomes. StreakNoticeNone means the streak was unaffected.
const (
	StreakNoticeNone  StreakNotice = ""
	StreakNoticeSaved StreakNotice = "streak_saved"
	StreakNoticeLost  StreakNotice = "streak_lost"
)

// UserStats is the single gamification ledger row per user: credit and XP
// balances plus daily-streak bookkeeping. LastActivityDate carries date
// precision only; nil means the user has no qualifying activity yet.
type UserStats struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	Credits          int        `json:"credits"`
	XPTotal          int        `json:"xp_total"`
	Streak           int        `json:"streak"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewUserStats creates a zeroed stats row for the given user.
// Returns an error if validation fails.
func NewUserStats(userID uuid.UUID) (*UserStats, error) {
	stats := &UserStats{
		ID:        uuid.New(),
		UserID:    userID,
		UpdatedAt: time.Now().UTC(),
	}

	if err := stats.Validate(); err != nil {
		return nil, err
	}

	return stats, nil
}

// Validate checks if the UserStats has valid data.
func (s *UserStats) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptyStatsID
	}
	if s.UserID == uuid.Nil {
		return ErrEmptyStatsUserID
	}
	if s.Credits < 0 || s.XPTotal < 0 {
		return ErrNegativeBalance
	}
	return nil
}

// ApplyReward credits the ledger. Negative amounts are rejected; no
// spending operations exist on this ledger.
func (s *UserStats) ApplyReward(xp, credits int) error {
	if xp < 0 || credits < 0 {
		return ErrNegativeBalance
	}
	s.XPTotal += xp
	s.Credits += credits
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Rank returns the rank tier for the current XP total.
func (s *UserStats) Rank() Rank {
	return RankForXP(s.XPTotal)
}

// RecordCompletion applies the completion-side streak rule: only the first
// qualifying completion of a calendar day increments the streak and stamps
// LastActivityDate. Returns true if the streak advanced.
func (s *UserStats) RecordCompletion(now time.Time) bool {
	today := dateOnly(now)
	if s.LastActivityDate != nil && dateOnly(*s.LastActivityDate).Equal(today) {
		return false
	}
	s.Streak++
	s.LastActivityDate = &today
	s.UpdatedAt = now.UTC()
	return true
}

// StartSession applies the session-start streak rule. A gap of zero or one
// day leaves everything untouched. A larger gap breaks the streak: if
// freezeAvailable, the caller must consume one streak-freeze token and the
// streak survives; otherwise the streak resets to zero. In both break
// cases LastActivityDate moves to today so the gap is not re-penalized.
// consumed reports whether the caller owes a token.
func (s *UserStats) StartSession(now time.Time, freezeAvailable bool) (notice StreakNotice, consumed bool) {
	if s.LastActivityDate == nil {
		return StreakNoticeNone, false
	}

	today := dateOnly(now)
	gap := int(today.Sub(dateOnly(*s.LastActivityDate)).Hours() / 24)
	if gap <= 1 {
		return StreakNoticeNone, false
	}

	s.LastActivityDate = &today
	s.UpdatedAt = now.UTC()
	if freezeAvailable {
		return StreakNoticeSaved, true
	}
	s.Streak = 0
	return StreakNoticeLost, false
}

// dateOnly truncates a timestamp to its UTC calendar date.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
