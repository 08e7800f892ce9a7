package api

import (
	"log/slog"
	"net/http"

	"github.com/orbita-learn/orbita-api/internal/api/shared"
	"github.com/orbita-learn/orbita-api/internal/platform/logger"
	"github.com/orbita-learn/orbita-api/internal/service"
)

// CourseHandler handles course listing and course tree HTTP requests.
type CourseHandler struct {
	progression service.ProgressionService
	logger      *slog.Logger
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(progression service.ProgressionService, log *slog.Logger) *CourseHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CourseHandler")
	}
	return &CourseHandler{
		progression: progression,
		logger:      log.With(slog.String("component", "course_handler")),
	}
}

// ListCourses handles GET /courses requests. The unlock chain is derived
// per user: a course opens once its predecessor is fully completed.
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	courses, err := h.progression.ListCourses(r.Context(), userID)
	if err != nil {
		log.Error("failed to list courses",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		HandleAPIError(w, r, err, "Failed to list courses")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, courses)
}

// GetCourseTree handles GET /courses/{courseID} requests. Reading the tree
// reconciles the user's access to the course first.
func (h *CourseHandler) GetCourseTree(w http.ResponseWriter, r *http.Request) {
	userID, courseID, ok := requireUserAndPathUUID(w, r, "courseID")
	if !ok {
		return
	}

	tree, err := h.progression.GetCourseTree(r.Context(), userID, courseID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tree)
}
