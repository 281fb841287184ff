package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/msvee3/Interview-prep/internal/handlers"
)

func HealthRoutes(router *chi.Mux, healthHandler *handlers.HealthHandler, metricsHandler http.Handler) {
	router.Get("/", healthHandler.RootHandler)
	router.Get("/health", healthHandler.HealthHandler)
	router.Get("/healthz", healthHandler.HealthzHandler)
	router.Get("/readyz", healthHandler.ReadyzHandler)
	router.Handle("/metrics", metricsHandler)
}
