package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/orbita-learn/orbita-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"userId"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`

	// StreakNotice reports a streak event evaluated at login: "streak_saved"
	// or "streak_lost". Omitted when the streak was unaffected.
	StreakNotice domain.StreakNotice `json:"streakNotice,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token
// refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ProfileResponse is the authenticated user's profile.
type ProfileResponse struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	ActiveBadge string         `json:"activeBadge,omitempty"`
	Inventory   map[string]int `json:"inventory"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// UpdateBadgeRequest defines the payload for setting the active badge.
type UpdateBadgeRequest struct {
	Badge string `json:"badge" validate:"required,max=100"`
}

// GrantItemRequest defines the payload for adding items to the inventory.
type GrantItemRequest struct {
	ItemID string `json:"itemId" validate:"required,max=100"`
	Count  int    `json:"count"  validate:"required,min=1"`
}

// SubmitMissionRequest defines the payload for a mission submission. Score
// is a pointer so a missing field is distinguishable from a zero score.
type SubmitMissionRequest struct {
	Score   *int                   `json:"score" validate:"required,min=0,max=100"`
	Answers map[string]interface{} `json:"answers,omitempty"`
}

// newProfileResponse builds a ProfileResponse from a domain user.
func newProfileResponse(user *domain.User) ProfileResponse {
	inventory := user.Inventory
	if inventory == nil {
		inventory = map[string]int{}
	}
	return ProfileResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		ActiveBadge: user.ActiveBadge,
		Inventory:   inventory,
		CreatedAt:   user.CreatedAt,
	}
}
