package feedback

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"routeiq/router/internal/models"
)

// ValidationError marks a feedback submission that was rejected before
// persistence: out-of-range scores and request ids with no recorded
// routing decision behind them.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid feedback %s: %s", e.Field, e.Reason)
}

// Store validates and persists routing feedback. A record whose request id
// does not reference a stored RoutingDecision is rejected outright, since
// retraining depends on that link.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Submit validates and stores one feedback record. The decision's pattern,
// provider and model are copied onto the row so retraining can aggregate
// directly.
func (s *Store) Submit(requestID string, qualityScore int, correct, helpful bool, comment string) (*models.RoutingFeedback, error) {
	if requestID == "" {
		return nil, &ValidationError{Field: "request_id", Reason: "must not be empty"}
	}
	if qualityScore < models.MinQualityScore || qualityScore > models.MaxQualityScore {
		return nil, &ValidationError{
			Field:  "quality_score",
			Reason: fmt.Sprintf("must be between %d and %d", models.MinQualityScore, models.MaxQualityScore),
		}
	}

	var decision models.RoutingDecision
	err := s.db.First(&decision, "request_id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ValidationError{Field: "request_id", Reason: "no routing decision recorded for this request"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up decision %s: %w", requestID, err)
	}

	record := &models.RoutingFeedback{
		RequestID:    requestID,
		QualityScore: qualityScore,
		Correct:      correct,
		Helpful:      helpful,
		Comment:      comment,
		Pattern:      decision.Pattern,
		Provider:     decision.Provider,
		ModelName:    decision.ModelName,
		SubmittedAt:  time.Now(),
	}

	if err := s.db.Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ValidationError{Field: "request_id", Reason: "feedback already submitted for this request"}
		}
		// sqlite and postgres report unique violations differently; a
		// second submit for the same request id always lands here
		var existing int64
		s.db.Model(&models.RoutingFeedback{}).Where("request_id = ?", requestID).Count(&existing)
		if existing > 0 {
			return nil, &ValidationError{Field: "request_id", Reason: "feedback already submitted for this request"}
		}
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}

	s.logger.Info("feedback stored",
		zap.String("request_id", requestID),
		zap.Int("quality_score", qualityScore),
		zap.Bool("correct", correct),
		zap.String("pattern", record.Pattern))
	return record, nil
}

// TrainingRow is one feedback record joined with the estimated cost of the
// decision it rates, the shape retraining aggregates over.
type TrainingRow struct {
	Pattern      string
	Provider     string
	ModelName    string
	QualityScore int
	Correct      bool
	DecisionCost float64
}

// AllForRetraining returns the full feedback ledger joined with decisions,
// oldest first.
func (s *Store) AllForRetraining() ([]TrainingRow, error) {
	var rows []TrainingRow
	err := s.db.Model(&models.RoutingFeedback{}).
		Select("routing_feedbacks.pattern, routing_feedbacks.provider, routing_feedbacks.model_name, routing_feedbacks.quality_score, routing_feedbacks.correct, routing_decisions.estimated_cost AS decision_cost").
		Joins("JOIN routing_decisions ON routing_decisions.request_id = routing_feedbacks.request_id").
		Order("routing_feedbacks.submitted_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback for retraining: %w", err)
	}
	return rows, nil
}

// Stats returns counts useful for the health and analytics endpoints.
func (s *Store) Stats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalCount int64
	if err := s.db.Model(&models.RoutingFeedback{}).Count(&totalCount).Error; err != nil {
		return nil, err
	}
	stats["total_count"] = totalCount

	var correctCount int64
	if err := s.db.Model(&models.RoutingFeedback{}).Where("correct = ?", true).Count(&correctCount).Error; err != nil {
		return nil, err
	}
	stats["correct_count"] = correctCount

	var avg struct{ Avg float64 }
	if err := s.db.Model(&models.RoutingFeedback{}).
		Select("COALESCE(AVG(quality_score), 0) AS avg").
		Scan(&avg).Error; err != nil {
		return nil, err
	}
	stats["avg_quality_score"] = avg.Avg

	return stats, nil
}
