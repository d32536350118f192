package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskmanager-api/internal/api"
	"github.com/phrazzld/taskmanager-api/internal/api/middleware"
	"github.com/phrazzld/taskmanager-api/internal/metrics"
)

// setupRouter registers every route and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware(app.logger))
	r.Use(middleware.RequestLogger(app.recorder))

	userHandler := api.NewUserHandler(app.users, app.logger)
	sessionHandler := api.NewSessionHandler(app.users, app.logger)
	taskHandler := api.NewTaskHandler(app.tasks, app.logger)
	authMiddleware := middleware.NewAuthMiddleware(app.users)

	// Public
	r.Post("/users", userHandler.Create)
	r.Post("/sessions", sessionHandler.Create)
	r.Delete("/sessions/{token}", sessionHandler.Destroy)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		if app.rateLimiter != nil {
			r.Use(app.rateLimiter.Middleware)
		}

		r.Get("/users/{id}", userHandler.Get)
		r.Put("/users/{id}", userHandler.Update)
		r.Delete("/users/{id}", userHandler.Delete)

		r.Get("/tasks", taskHandler.List)
		r.Post("/tasks", taskHandler.Create)
		r.Get("/tasks/{id}", taskHandler.Get)
		r.Put("/tasks/{id}", taskHandler.Update)
		r.Delete("/tasks/{id}", taskHandler.Delete)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	if app.registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(app.registry))
	}

	return r
}
