package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"routeiq/router/internal/ledger"
	"routeiq/router/internal/models"
	"routeiq/router/internal/utils"
)

type AnalyticsHandler struct {
	ledger *ledger.Ledger
	logger *zap.Logger
}

func NewAnalyticsHandler(l *ledger.Ledger, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		ledger: l,
		logger: logger,
	}
}

// GetSummary handles GET /api/v1/analytics/summary
func (ah *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := ah.ledger.Summarize()
	if err != nil {
		ah.logger.Error("Failed to summarize metrics", zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{
			OK:   false,
			Info: "failed to summarize metrics",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.Resp{
		OK:   true,
		Info: summary,
	})
}
