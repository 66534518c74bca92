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
  4. CORS:       Cross-origin requests for the kiosk/admin frontends

ROUTE GROUPS:
  /api/kiosk/*       Clock-in/clock-out surface
  /api/entries/*     Entry listing, edits, approval workflow
  /api/volunteers/*  Roster management and YTD lookups
  /api/committees/*  Committee management
  /api/reports/*     Range and grant reports
  /api/admin/*       Sweep trigger, refresh pause/resume

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
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
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Kiosk routes
		r.Route("/kiosk", func(r chi.Router) {
			r.Post("/clock-in", h.ClockIn)
			r.Post("/clock-out", h.ClockOut)
			r.Get("/status/{id}", h.KioskStatus)
			r.Get("/ytd/{number}", h.GetYTDByNumber)
		})

		// Entry routes
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/bulk", h.BulkDecision)
			r.Post("/approve-window", h.ApproveWindow)
			r.Put("/{id}", h.EditEntry)
			r.Delete("/{id}", h.DeleteEntry)
			r.Post("/{id}/approve", h.ApproveEntry)
			r.Post("/{id}/reject", h.RejectEntry)
		})

		// Roster routes
		r.Route("/volunteers", func(r chi.Router) {
			r.Get("/", h.ListVolunteers)
			r.Post("/", h.SaveVolunteer)
			r.Post("/import", h.ImportVolunteers)
			r.Delete("/{id}", h.DeleteVolunteer)
			r.Get("/{id}/ytd", h.GetYTD)
		})

		r.Route("/committees", func(r chi.Router) {
			r.Get("/", h.ListCommittees)
			r.Post("/", h.SaveCommittee)
			r.Delete("/{id}", h.DeleteCommittee)
		})

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Get("/range", h.RangeReport)
			r.Get("/grant", h.GrantReport)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/sweep", h.TriggerSweep)
			r.Post("/refresh/pause", h.PauseRefresh)
			r.Post("/refresh/resume", h.ResumeRefresh)
		})
	})

	return r
}
