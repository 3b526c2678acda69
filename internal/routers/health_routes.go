package routers

import (
	"github.com/go-chi/chi/v5"

	"routeiq/router/internal/handlers"
	"routeiq/router/internal/metrics"
)

func HealthRoutes(router *chi.Mux, healthHandler *handlers.HealthHandler) {
	router.Get("/healthz", healthHandler.HealthzHandler)
	router.Get("/readyz", healthHandler.ReadyzHandler)
	router.Get("/api/v1/health", healthHandler.ReadyzHandler)
	router.Handle("/metrics", metrics.Handler())
}
