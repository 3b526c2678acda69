package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"routeiq/router/internal/feedback"
	"routeiq/router/internal/middleware"
	"routeiq/router/internal/models"
	"routeiq/router/internal/utils"
)

type FeedbackHandler struct {
	store  *feedback.Store
	logger *zap.Logger
}

func NewFeedbackHandler(store *feedback.Store, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		store:  store,
		logger: logger,
	}
}

// SubmitFeedback handles POST /api/v1/feedback/{request_id}
func (fh *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "request_id")
	req := middleware.GetValidatedRequest[*models.FeedbackRequest](r)

	if _, err := fh.store.Submit(requestID, req.QualityScore, req.Correct, req.Helpful, req.Comment); err != nil {
		var vErr *feedback.ValidationError
		if errors.As(err, &vErr) {
			utils.WriteJSON(w, http.StatusBadRequest, models.ErrorResponse{
				Code:    "invalid_feedback",
				Message: vErr.Error(),
				Details: []models.ValidationErrorDetail{
					{Field: vErr.Field, Reason: vErr.Reason},
				},
			})
			return
		}
		fh.logger.Error("Failed to submit feedback",
			zap.Error(err), zap.String("request_id", requestID))
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{
			OK:   false,
			Info: "failed to submit feedback",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.Resp{
		OK:   true,
		Info: "feedback submitted successfully",
	})
}

// GetFeedbackStats handles GET /api/v1/feedback/stats
func (fh *FeedbackHandler) GetFeedbackStats(w http.ResponseWriter, r *http.Request) {
	stats, err := fh.store.Stats()
	if err != nil {
		fh.logger.Error("Failed to get feedback stats", zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{
			OK:   false,
			Info: "failed to get feedback stats",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.Resp{
		OK:   true,
		Info: stats,
	})
}
