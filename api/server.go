/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for admin frontends

ROUTE GROUPS:
  /api/events/*       Clock-punch ingestion
  /api/employees/*    Employees, classification, balances
  /api/leaves/*       Leave grants
  /api/tasks/*        Escalation-tracked tasks
  /api/rules          Rulebook management
  /api/admin/*        Admin operations

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

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
		// Event ingestion
		r.Post("/events", h.IngestEvent)

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Get("/{id}/classification", h.GetClassification)
			r.Get("/{id}/balance", h.GetBalance)
			r.Get("/{id}/comp-offs", h.ListCompOffs)
			r.Get("/{id}/leaves", h.ListLeaves)
		})

		// Leave routes
		r.Post("/leaves", h.SubmitLeave)

		// Task routes
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.ListOpenTasks)
			r.Post("/", h.CreateTask)
			r.Get("/{id}", h.GetTask)
			r.Get("/{id}/due-date", h.GetDueDate)
		})

		// Rulebook routes
		r.Get("/rules", h.GetRules)
		r.Put("/rules", h.UpdateRules)

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/month-reset", h.TriggerMonthReset)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
