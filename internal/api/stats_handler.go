package api

import (
	"log/slog"
	"net/http"

	"github.com/orbita-learn/orbita-api/internal/api/shared"
	"github.com/orbita-learn/orbita-api/internal/platform/logger"
	"github.com/orbita-learn/orbita-api/internal/service"
)

// StatsHandler handles the aggregate stats HTTP request.
type StatsHandler struct {
	progression service.ProgressionService
	logger      *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(progression service.ProgressionService, log *slog.Logger) *StatsHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StatsHandler")
	}
	return &StatsHandler{
		progression: progression,
		logger:      log.With(slog.String("component", "stats_handler")),
	}
}

// GetStats handles GET /stats requests.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	stats, err := h.progression.GetStats(r.Context(), userID)
	if err != nil {
		log.Error("failed to aggregate stats",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		HandleAPIError(w, r, err, "Failed to load stats")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}
