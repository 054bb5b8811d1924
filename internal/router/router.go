package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pollfish/pollfish-bridge/internal/handlers"
	"github.com/pollfish/pollfish-bridge/internal/metrics"
)

func New(h *handlers.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)

	r.Get("/", h.HandleIndex)
	r.Get("/qr", h.HandleQR)
	r.Get("/ws", h.HandleWS)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		// host apps call the API from their own origin
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Use(chimw.Timeout(30 * time.Second))

		r.Get("/state", h.HandleState)
		r.Post("/init", h.HandleInit)
		r.Post("/survey/{action}", h.HandleAction)
		r.Post("/emit/{eventType}", h.HandleEmit)
	})

	return r
}
