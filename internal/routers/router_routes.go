package routers

import (
	"github.com/go-chi/chi/v5"

	"routeiq/router/internal/handlers"
	"routeiq/router/internal/middleware"
	"routeiq/router/internal/models"
)

func RouterRoutes(router *chi.Mux, routeHandler *handlers.RouteHandler, completionHandler *handlers.CompletionHandler, feedbackHandler *handlers.FeedbackHandler, analyticsHandler *handlers.AnalyticsHandler, retrainHandler *handlers.RetrainHandler) {
	router.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.RouteRequest]()).Post("/route", routeHandler.Route)
		r.With(middleware.ValidateRequest[*models.RouteRequest]()).Post("/route/explain", routeHandler.Explain)
		r.With(middleware.ValidateRequest[*models.RouteRequest]()).Post("/completions", completionHandler.Complete)
		r.With(middleware.ValidateRequest[*models.FeedbackRequest]()).Post("/feedback/{request_id}", feedbackHandler.SubmitFeedback)
		r.Get("/feedback/stats", feedbackHandler.GetFeedbackStats)
		r.Get("/analytics/summary", analyticsHandler.GetSummary)
		r.With(middleware.ValidateRequest[*models.RetrainRequest]()).Post("/retrain", retrainHandler.Retrain)
	})
}
