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
  1. RequestID:     Unique ID per request for tracing
  2. Recoverer:     Panic recovery (500 instead of crash)
  3. RequestLogger: Structured request logging (zerolog)
  4. CORS:          Cross-origin requests for the frontend
  5. RequireAuth:   Bearer token -> identity, on protected groups only

ROUTE GROUPS:
  /api/auth/*       Signup, signin, current user
  /api/donations/*  Ledger operations (authenticated)
  /api/users/*      Per-user history (authenticated)
  /api/ai/*         Impact messages (authenticated)

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Auth and logging middleware
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
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Auth routes (token issuance is public, /me is not)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.SignUp)
			r.Post("/signin", h.SignIn)
			r.With(RequireAuth(h.Auth)).Get("/me", h.Me)
		})

		// Everything below requires a resolved identity
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(h.Auth))

			r.Route("/donations", func(r chi.Router) {
				r.Get("/", h.ListDonations)
				r.Post("/", h.CreateDonation)
				r.Post("/claim", h.ClaimDonation)
			})

			r.Get("/users/{id}/history", h.GetUserHistory)

			r.Post("/ai/impact", h.WeightImpact)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
