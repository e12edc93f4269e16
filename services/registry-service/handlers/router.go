package handlers

import (
	"net/http"

	"blood-donor-registry/pkg/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func NewRouter(h *Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.TraceHeader},
		ExposedHeaders:   []string{middleware.TraceHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(chimw.Recoverer)

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/health", h.Health)

	return r
}
