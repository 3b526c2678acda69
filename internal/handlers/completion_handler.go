package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"routeiq/router/internal/cache"
	"routeiq/router/internal/config"
	"routeiq/router/internal/ledger"
	"routeiq/router/internal/llm"
	"routeiq/router/internal/metrics"
	"routeiq/router/internal/middleware"
	"routeiq/router/internal/models"
	"routeiq/router/internal/routing"
	"routeiq/router/internal/utils"
)

type CompletionHandler struct {
	engine    *routing.Engine
	ledger    *ledger.Ledger
	cache     *cache.ResponseCache // nil when caching is disabled
	providers map[string]llm.Provider
	config    *config.Config
	logger    *zap.Logger
}

func NewCompletionHandler(engine *routing.Engine, l *ledger.Ledger, c *cache.ResponseCache, providers map[string]llm.Provider, cfg *config.Config, logger *zap.Logger) *CompletionHandler {
	return &CompletionHandler{
		engine:    engine,
		ledger:    l,
		cache:     c,
		providers: providers,
		config:    cfg,
		logger:    logger,
	}
}

// Complete handles POST /api/v1/completions. It routes the prompt, executes
// it against the chosen provider, and records the real cost.
func (h *CompletionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.RouteRequest](r)
	req.RequestID = ensureRequestID(req.RequestID)

	if h.cache != nil {
		if entry := h.cache.Lookup(r.Context(), req.Prompt); entry != nil {
			h.ledger.RecordCacheHit(req.RequestID, entry.Provider, entry.Model, entry.TokensIn, entry.TokensOut)
			metrics.ObserveCacheHit()
			utils.JSON(w, http.StatusOK, models.CompletionResponse{
				RequestID: req.RequestID,
				Text:      entry.Response,
				Provider:  entry.Provider,
				ModelName: entry.Model,
				TokensIn:  entry.TokensIn,
				TokensOut: entry.TokensOut,
				Cost:      0,
				Cached:    true,
			})
			return
		}
	}

	autoRoute := h.config.AutoRouteDefault
	if req.AutoRoute != nil {
		autoRoute = *req.AutoRoute
	}

	decision, err := h.engine.Route(req.Prompt, autoRoute, routingContext(req, h.config))
	if err != nil {
		writeRoutingError(w, h.logger, req.RequestID, err)
		return
	}
	decision.RequestID = req.RequestID

	if err := h.ledger.RecordDecision(decision); err != nil {
		h.logger.Error("Failed to persist routing decision",
			zap.Error(err), zap.String("request_id", req.RequestID))
	}

	provider, ok := h.providers[decision.Provider]
	if !ok {
		h.logger.Error("No client for routed provider",
			zap.String("provider", decision.Provider), zap.String("request_id", req.RequestID))
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    "provider_unavailable",
			Message: "No client configured for provider " + decision.Provider,
		})
		return
	}

	result, err := provider.Execute(r.Context(), req.Prompt, decision.ModelName, req.MaxTokens)
	if err != nil {
		h.logger.Error("Provider execution failed",
			zap.Error(err), zap.String("provider", decision.Provider), zap.String("request_id", req.RequestID))
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    "provider_error",
			Message: "Provider failed to generate a completion",
		})
		return
	}

	h.ledger.Record(models.RequestMetric{
		RequestID:  req.RequestID,
		Strategy:   decision.Strategy,
		Provider:   decision.Provider,
		ModelName:  decision.ModelName,
		Confidence: decision.Confidence,
		TokensIn:   result.TokensIn,
		TokensOut:  result.TokensOut,
		Cost:       result.Cost,
	})
	metrics.ObserveDecision(decision.Strategy, decision.Provider)

	if h.cache != nil {
		h.cache.Store(r.Context(), req.Prompt, &cache.Entry{
			Response:     result.Text,
			Provider:     decision.Provider,
			Model:        decision.ModelName,
			OriginalCost: result.Cost,
			TokensIn:     result.TokensIn,
			TokensOut:    result.TokensOut,
		})
	}

	payload := decisionPayload(decision)
	utils.JSON(w, http.StatusOK, models.CompletionResponse{
		RequestID: req.RequestID,
		Text:      result.Text,
		Provider:  decision.Provider,
		ModelName: decision.ModelName,
		TokensIn:  result.TokensIn,
		TokensOut: result.TokensOut,
		Cost:      result.Cost,
		Cached:    false,
		Decision:  &payload,
	})
}
