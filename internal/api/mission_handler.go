package api

import (
	"log/slog"
	"net/http"

	"github.com/orbita-learn/orbita-api/internal/api/shared"
	"github.com/orbita-learn/orbita-api/internal/platform/logger"
	"github.com/orbita-learn/orbita-api/internal/service"
)

// MissionHandler handles mission content and submission HTTP requests.
type MissionHandler struct {
	progression service.ProgressionService
	logger      *slog.Logger
}

// NewMissionHandler creates a new MissionHandler.
func NewMissionHandler(progression service.ProgressionService, log *slog.Logger) *MissionHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for MissionHandler")
	}
	return &MissionHandler{
		progression: progression,
		logger:      log.With(slog.String("component", "mission_handler")),
	}
}

// GetMission handles GET /missions/{missionID} requests. Pure content
// lookup; the authenticated user's progress does not gate reading.
func (h *MissionHandler) GetMission(w http.ResponseWriter, r *http.Request) {
	_, missionID, ok := requireUserAndPathUUID(w, r, "missionID")
	if !ok {
		return
	}

	detail, err := h.progression.GetMission(r.Context(), missionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, detail)
}

// SubmitMission handles POST /missions/{missionID}/submit requests.
func (h *MissionHandler) SubmitMission(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, missionID, ok := requireUserAndPathUUID(w, r, "missionID")
	if !ok {
		return
	}

	var req SubmitMissionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.progression.SubmitMission(r.Context(), userID, missionID, *req.Score)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("processed submission",
		slog.String("user_id", userID.String()),
		slog.String("mission_id", missionID.String()),
		slog.Int("score", *req.Score),
		slog.String("status", string(result.Status)))

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
