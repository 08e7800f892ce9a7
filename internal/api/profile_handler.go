package api

import (
	"log/slog"
	"net/http"

	"github.com/orbita-learn/orbita-api/internal/api/shared"
	"github.com/orbita-learn/orbita-api/internal/platform/logger"
	"github.com/orbita-learn/orbita-api/internal/service"
)

// ProfileHandler handles profile and inventory HTTP requests.
type ProfileHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(userService service.UserService, log *slog.Logger) *ProfileHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProfileHandler")
	}
	return &ProfileHandler{
		userService: userService,
		logger:      log.With(slog.String("component", "profile_handler")),
	}
}

// Me handles GET /me requests.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newProfileResponse(user))
}

// UpdateBadge handles PUT /me/badge requests.
func (h *ProfileHandler) UpdateBadge(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req UpdateBadgeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if err := h.userService.SetActiveBadge(r.Context(), userID, req.Badge); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("updated active badge",
		slog.String("user_id", userID.String()),
		slog.String("badge", req.Badge))

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"badge": req.Badge})
}

// GrantItem handles POST /me/inventory requests.
func (h *ProfileHandler) GrantItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req GrantItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userService.GrantItem(r.Context(), userID, req.ItemID, req.Count)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("granted inventory item",
		slog.String("user_id", userID.String()),
		slog.String("item_id", req.ItemID),
		slog.Int("count", req.Count))

	shared.RespondWithJSON(w, r, http.StatusOK, newProfileResponse(user))
}
