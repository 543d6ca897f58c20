/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the intranet frontend

ROUTE GROUPS:
  /api/roster/*     Shift grid import and duty resolution
  /api/tasks/*      Deletion-request queue
  /api/archive      Completed-task search
  /api/stats        Technician dashboard
  /api/profiles/*   Staff-number prefill
  /api/scenarios/*  Demo datasets
  /health           Liveness probe

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Roster routes
		r.Route("/roster", func(r chi.Router) {
			r.Post("/import", h.ImportRoster)
			r.Get("/active", h.ActiveStaff)
			r.Get("/entries", h.ListRosterEntries)
		})

		// Task routes
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.OpenTasks)
			r.Post("/", h.SubmitTask)
			r.Get("/recent", h.RecentTasks)
			r.Post("/{id}/claim", h.ClaimTask)
			r.Post("/{id}/complete", h.CompleteTask)
		})

		// Archive and dashboard routes
		r.Get("/archive", h.SearchArchive)
		r.Get("/stats", h.Stats)
		r.Get("/profiles/{name}", h.GetProfile)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
