package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for VocabularyItem
var (
	ErrEmptyVocabularyID   = errors.New("vocabulary item ID cannot be empty")
	ErrEmptyVocabularyWord = errors.New("vocabulary word cannot be empty")
)

// Spaced-repetition seed values for a first-seen word.
const (
	vocabularySeedInterval   = 1
	vocabularySeedEaseFactor = 2.5
)

// VocabularyItem is a per-(user, word) spaced-repetition record. Items are
// bootstrapped once, on the first mission completion that exposes the word,
// and are immediately due. Review grading lives outside this system; the
// scheduling fields are seeds, not a running SM-2 state.
type VocabularyItem struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Word        string    `json:"word"`
	Translation string    `json:"translation"`
	Example     string    `json:"example"`
	NextReview  time.Time `json:"next_review"`
	Interval    int       `json:"interval"`
	EaseFactor  float64   `json:"ease_factor"`
	Streak      int       `json:"streak"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewVocabularyItem bootstraps a first-seen word for the user: one-day
// interval, 2.5 ease factor, zero review streak, due now. An empty example
// gets a generated placeholder.
func NewVocabularyItem(userID uuid.UUID, word, translation, example string) (*VocabularyItem, error) {
	if example == "" {
		example = fmt.Sprintf("Example with %s", word)
	}

	now := time.Now().UTC()
	item := &VocabularyItem{
		ID:          uuid.New(),
		UserID:      userID,
		Word:        word,
		Translation: translation,
		Example:     example,
		NextReview:  now,
		Interval:    vocabularySeedInterval,
		EaseFactor:  vocabularySeedEaseFactor,
		CreatedAt:   now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the VocabularyItem has valid data.
func (v *VocabularyItem) Validate() error {
	if v.ID == uuid.Nil {
		return ErrEmptyVocabularyID
	}
	if v.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if v.Word == "" {
		return ErrEmptyVocabularyWord
	}
	return nil
}
