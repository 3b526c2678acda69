package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"routeiq/router/internal/jobs"
	"routeiq/router/internal/metrics"
	"routeiq/router/internal/middleware"
	"routeiq/router/internal/models"
	"routeiq/router/internal/utils"
)

type RetrainHandler struct {
	retrainer *jobs.Retrainer
	logger    *zap.Logger
}

func NewRetrainHandler(retrainer *jobs.Retrainer, logger *zap.Logger) *RetrainHandler {
	return &RetrainHandler{
		retrainer: retrainer,
		logger:    logger,
	}
}

// Retrain handles POST /api/v1/retrain
func (rh *RetrainHandler) Retrain(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.RetrainRequest](r)

	summary, err := rh.retrainer.Run(r.Context(), req.DryRun, req.MinSamples)
	if err != nil {
		if errors.Is(err, jobs.ErrRetrainInProgress) {
			utils.WriteJSON(w, http.StatusConflict, models.ErrorResponse{
				Code:    "retrain_in_progress",
				Message: "a retraining run is already in progress",
			})
			return
		}
		rh.logger.Error("Retraining run failed", zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "retrain_error",
			Message: "retraining run failed",
		})
		return
	}

	switch {
	case summary.Published:
		metrics.ObserveRetrain("published")
	case summary.DryRun:
		metrics.ObserveRetrain("dry_run")
	default:
		metrics.ObserveRetrain("skipped")
	}

	utils.WriteJSON(w, http.StatusOK, models.Resp{
		OK:   true,
		Info: summary,
	})
}
