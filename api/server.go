/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:       Request logging
  2. Recoverer:    Panic recovery (500 instead of crash)
  3. RequestID:    Unique ID per request for tracing
  4. CORS:         Cross-origin requests for frontend
  5. Authenticate: Bearer-token guard on everything but login

ROUTE GROUPS:
  /api/auth/*          Login and profile
  /api/session/*       Wizard session operations
  /api/itineraries/*   Dashboard
  /api/admin/*         Approval workflow

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Token middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
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
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		// Everything below requires a bearer token.
		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Get("/auth/profile", h.Profile)

			// Wizard session routes
			r.Route("/session", func(r chi.Router) {
				r.Post("/", h.CreateSession)
				r.Get("/", h.GetSession)
				r.Delete("/", h.DiscardSession)
				r.Put("/travel", h.SetTravel)
				r.Post("/modes/toggle", h.ToggleMode)
				r.Post("/modes/open", h.OpenMode)
				r.Put("/modes/field", h.SetEditorField)
				r.Post("/modes/cancel", h.CancelEdit)
				r.Post("/modes/commit", h.CommitMode)
				r.Post("/advance", h.Advance)
				r.Post("/retreat", h.Retreat)
				r.Post("/jump", h.Jump)
				r.Post("/submit", h.Submit)
			})

			// Dashboard routes
			r.Route("/itineraries", func(r chi.Router) {
				r.Get("/", h.ListItineraries)
				r.Get("/{id}", h.GetItinerary)
				r.Patch("/{id}/withdraw", h.WithdrawItinerary)
				r.Delete("/{id}", h.DeleteItinerary)
			})

			// Admin routes
			r.Route("/admin", func(r chi.Router) {
				r.Get("/itineraries", h.ListAllItineraries)
				r.Post("/itineraries/{id}/approve", h.ApproveItinerary)
				r.Post("/itineraries/{id}/reject", h.RejectItinerary)
			})
		})
	})

	return r
}
