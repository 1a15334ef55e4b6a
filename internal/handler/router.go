package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/caravan-share/internal/middleware"
)

// RouterConfig holds the cross-cutting settings of the HTTP stack.
type RouterConfig struct {
	CORSOrigins  []string
	MaxBodyBytes int64
	Verifier     middleware.TokenVerifier
	Log          *slog.Logger
}

// Router builds the chi mux with the middleware chain and every route.
//
// Middleware order: RequestID → RealIP → SlogLogger → Recoverer → CORS → MaxBodySize.
// Recoverer sits inside the logger so a panic is still logged as a 500.
func Router(s *Server, cfg RouterConfig) http.Handler {
	log := cfg.Log
	if log == nil {
		log = s.Log
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Post("/users", s.RegisterUser)
	r.Post("/auth/token", s.IssueToken)

	r.Get("/caravans", s.ListCaravans)
	r.Get("/caravans/{id}", s.GetCaravan)
	r.Get("/caravans/{id}/availability", s.GetAvailability)
	r.Get("/caravans/{id}/recommendations", s.GetRecommendations)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser(cfg.Verifier))

		r.Post("/caravans/{id}/reviews", s.CreateReview)
		r.Get("/reservations", s.ListReservations)
		r.Post("/reservations", s.CreateReservation)
		r.Post("/reservations/{id}/cancel", s.CancelReservation)
		if s.History != nil {
			r.Get("/reservations/{id}/history", s.GetReservationHistory)
		}
		if s.Sockets != nil {
			r.Get("/ws", s.ServeSocket)
		}
	})
	return r
}
