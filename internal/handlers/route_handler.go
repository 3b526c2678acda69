package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"routeiq/router/internal/config"
	"routeiq/router/internal/ledger"
	"routeiq/router/internal/metrics"
	"routeiq/router/internal/middleware"
	"routeiq/router/internal/models"
	"routeiq/router/internal/routing"
	"routeiq/router/internal/utils"
)

type RouteHandler struct {
	engine *routing.Engine
	ledger *ledger.Ledger
	config *config.Config
	logger *zap.Logger
}

func NewRouteHandler(engine *routing.Engine, l *ledger.Ledger, cfg *config.Config, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{
		engine: engine,
		ledger: l,
		config: cfg,
		logger: logger,
	}
}

// RouteHandler handles POST /api/v1/route
func (h *RouteHandler) Route(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.RouteRequest](r)
	req.RequestID = ensureRequestID(req.RequestID)

	decision, err := h.engine.Route(req.Prompt, h.autoRoute(req), routingContext(req, h.config))
	if err != nil {
		writeRoutingError(w, h.logger, req.RequestID, err)
		return
	}
	decision.RequestID = req.RequestID

	// The decision row must exist before the caller can rate it, so this
	// write is synchronous. A storage failure still returns the decision.
	if err := h.ledger.RecordDecision(decision); err != nil {
		h.logger.Error("Failed to persist routing decision",
			zap.Error(err), zap.String("request_id", req.RequestID))
	}
	h.ledger.Record(models.RequestMetric{
		RequestID:  req.RequestID,
		Strategy:   decision.Strategy,
		Provider:   decision.Provider,
		ModelName:  decision.ModelName,
		Confidence: decision.Confidence,
		Cost:       decision.EstimatedCost,
	})
	metrics.ObserveDecision(decision.Strategy, decision.Provider)

	utils.JSON(w, http.StatusOK, decisionPayload(decision))
}

// Explain handles POST /api/v1/route/explain. It previews the decision the
// hybrid strategy would make without persisting anything.
func (h *RouteHandler) Explain(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.RouteRequest](r)

	decision, err := h.engine.Explain(req.Prompt, routingContext(req, h.config))
	if err != nil {
		writeRoutingError(w, h.logger, req.RequestID, err)
		return
	}
	decision.RequestID = req.RequestID

	utils.JSON(w, http.StatusOK, decisionPayload(decision))
}

func (h *RouteHandler) autoRoute(req *models.RouteRequest) bool {
	if req.AutoRoute != nil {
		return *req.AutoRoute
	}
	return h.config.AutoRouteDefault
}

func routingContext(req *models.RouteRequest, cfg *config.Config) routing.Context {
	return routing.Context{
		Enabled:       cfg.EnabledSet(),
		Budget:        req.Budget,
		ForceProvider: utils.NormalizeProvider(req.Provider),
		ForceModel:    req.ModelName,
		MaxTokens:     req.MaxTokens,
	}
}

func writeRoutingError(w http.ResponseWriter, logger *zap.Logger, requestID string, err error) {
	if errors.Is(err, routing.ErrNoProviderAvailable) {
		utils.JSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{
			Code:    "no_provider_available",
			Message: err.Error(),
		})
		return
	}
	logger.Error("Routing failed", zap.Error(err), zap.String("request_id", requestID))
	utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
		Code:    "routing_error",
		Message: "Failed to produce a routing decision",
	})
}

func decisionPayload(d *routing.Decision) models.DecisionPayload {
	return models.DecisionPayload{
		RequestID:       d.RequestID,
		Provider:        d.Provider,
		ModelName:       d.ModelName,
		Strategy:        d.Strategy,
		Confidence:      d.Confidence,
		ConfidenceLevel: d.ConfidenceLevel,
		Reasoning:       d.Reasoning,
		EstimatedCost:   d.EstimatedCost,
		ComplexityScore: d.Complexity.Value,
		Tier:            d.Complexity.Tier,
		Pattern:         d.Complexity.Pattern,
		SnapshotVersion: d.SnapshotVersion,
	}
}

func generateRequestID() string {
	return uuid.New().String()
}

// ensureRequestID generates a request ID if one is not provided
func ensureRequestID(requestID string) string {
	if requestID == "" {
		return generateRequestID()
	}
	return requestID
}
