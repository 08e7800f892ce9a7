// Package api provides HTTP handlers for the API.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/orbita-learn/orbita-api/internal/api/shared"
	"github.com/orbita-learn/orbita-api/internal/domain"
	"github.com/orbita-learn/orbita-api/internal/platform/logger"
	"github.com/orbita-learn/orbita-api/internal/service"
	"github.com/orbita-learn/orbita-api/internal/service/auth"
	"github.com/orbita-learn/orbita-api/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userService service.UserService
	jwtService  auth.JWTService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userService service.UserService,
	jwtService auth.JWTService,
	log *slog.Logger,
) *AuthHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		logger:      log.With(slog.String("component", "auth_handler")),
	}
}

// tokenPair generates an access and refresh token for the user.
func (h *AuthHandler) tokenPair(r *http.Request, userID uuid.UUID) (access, refresh string, err error) {
	access, err = h.jwtService.GenerateToken(r.Context(), userID)
	if err != nil {
		return "", "", err
	}
	refresh, err = h.jwtService.GenerateRefreshToken(r.Context(), userID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userService.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Email already exists")
			return
		}
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrInvalidEmail) {
			HandleAPIError(w, r, err, "")
			return
		}
		log.Error("failed to register user", slog.String("error", err.Error()))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to create user", err)
		return
	}

	access, refresh, err := h.tokenPair(r, user.ID)
	if err != nil {
		log.Error("failed to generate tokens",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

// Login handles POST /auth/login. A successful login also runs the
// session-start streak evaluation and reports any streak notice.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Error("failed to authenticate user", slog.String("error", err.Error()))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to authenticate user", err)
		return
	}

	access, refresh, err := h.tokenPair(r, result.User.ID)
	if err != nil {
		log.Error("failed to generate tokens",
			slog.String("error", err.Error()),
			slog.String("user_id", result.User.ID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		UserID:       result.User.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		StreakNotice: result.StreakNotice,
	})
}

// RefreshToken handles POST /auth/refresh, exchanging a valid refresh token
// for a new token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RefreshTokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	access, refresh, err := h.tokenPair(r, claims.UserID)
	if err != nil {
		log.Error("failed to generate tokens",
			slog.String("error", err.Error()),
			slog.String("user_id", claims.UserID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RefreshTokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}
