package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for User
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// ItemStreakFreeze is the inventory identifier of the consumable that
// forgives one missed day without resetting the streak.
const ItemStreakFreeze = "streak_freeze"

// User represents a registered learner.
// Inventory is a multiset of consumable item identifiers keyed by item ID,
// persisted as JSON alongside the identity fields.
type User struct {
	ID             uuid.UUID      `json:"id"`
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	Password       string         `json:"-"` // Plaintext password, used temporarily during registration
	HashedPassword string         `json:"-"` // Never expose password hash in JSON
	Inventory      map[string]int `json:"inventory"`
	ActiveBadge    string         `json:"active_badge,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewUser creates a new User with the given email, name, and password.
// It generates a new UUID for the user ID and sets the creation/update
// timestamps. Returns an error if validation fails.
//
// NOTE: This function only sets up the user structure with the plaintext
// password. The caller is responsible for hashing the password before
// storing the user.
func NewUser(email, name, password string) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Password:  password,
		Inventory: map[string]int{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if u.Name == "" {
		return ErrEmptyName
	}

	if u.Password != "" {
		if len(u.Password) < 8 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 { // bcrypt's practical limit
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// GrantItem adds count instances of the given item to the inventory.
// A nil inventory map is initialized lazily.
func (u *User) GrantItem(itemID string, count int) {
	if u.Inventory == nil {
		u.Inventory = map[string]int{}
	}
	u.Inventory[itemID] += count
	u.UpdatedAt = time.Now().UTC()
}

// ConsumeItem removes exactly one instance of the given item.
// Returns ErrItemNotInInventory if the user holds none.
func (u *User) ConsumeItem(itemID string) error {
	if u.Inventory[itemID] <= 0 {
		return ErrItemNotInInventory
	}
	u.Inventory[itemID]--
	if u.Inventory[itemID] == 0 {
		delete(u.Inventory, itemID)
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// SetActiveBadge updates the badge shown on the user's profile.
func (u *User) SetActiveBadge(badge string) {
	u.ActiveBadge = badge
	u.UpdatedAt = time.Now().UTC()
}

// validateEmailFormat performs basic validation of email format.
// Returns true if the email appears to be in a valid format.
func validateEmailFormat(email string) bool {
	atIndex := -1
	for i, char := range email {
		if char == '@' {
			atIndex = i
			break
		}
	}

	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	domainPart := email[atIndex+1:]
	if len(domainPart) < 3 { // minimum would be "a.b"
		return false
	}

	dotIndex := -1
	for i, char := range domainPart {
		if char == '.' {
			dotIndex = i
			break
		}
	}

	return dotIndex > 0 && dotIndex < len(domainPart)-1
}
