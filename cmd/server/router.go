package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/orbita-learn/orbita-api/internal/api"
	apiMiddleware "github.com/orbita-learn/orbita-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.logger)
	profileHandler := api.NewProfileHandler(app.userService, app.logger)
	courseHandler := api.NewCourseHandler(app.progression, app.logger)
	missionHandler := api.NewMissionHandler(app.progression, app.logger)
	statsHandler := api.NewStatsHandler(app.progression, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/me", profileHandler.Me)
			r.Put("/me/badge", profileHandler.UpdateBadge)
			r.Post("/me/inventory", profileHandler.GrantItem)

			r.Get("/courses", courseHandler.ListCourses)
			r.Get("/courses/{courseID}", courseHandler.GetCourseTree)

			r.Get("/missions/{missionID}", missionHandler.GetMission)
			r.Post("/missions/{missionID}/submit", missionHandler.SubmitMission)

			r.Get("/stats", statsHandler.GetStats)
		})
	})

	// Health check endpoint with a DB ping.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := contextWithTimeout(r, 2*time.Second)
		defer cancel()

		if err := app.db.PingContext(ctx); err != nil {
			app.logger.Error("health check DB ping failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return r
}
