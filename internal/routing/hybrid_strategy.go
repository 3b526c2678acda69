package routing

import (
	"errors"
	"fmt"

	"routeiq/router/internal/models"
)

// DefaultCostRatio bounds a learned recommendation's cost against the
// complexity baseline pick for the same prompt. It guards against
// historical cost anomalies steering traffic to disproportionate models.
const DefaultCostRatio = 3.0

// HybridStrategy tries the learning strategy first and accepts its pick
// only when confidence is high and the cost stays within a bounded ratio of
// the complexity baseline. Every decision records which branch won and why.
type HybridStrategy struct {
	learning   *LearningStrategy
	complexity *ComplexityStrategy
	costRatio  float64
}

func NewHybridStrategy(learning *LearningStrategy, complexity *ComplexityStrategy, costRatio float64) *HybridStrategy {
	if costRatio <= 0 {
		costRatio = DefaultCostRatio
	}
	return &HybridStrategy{learning: learning, complexity: complexity, costRatio: costRatio}
}

func (s *HybridStrategy) Name() string {
	return "hybrid"
}

func (s *HybridStrategy) Route(prompt string, rctx Context) (*Decision, error) {
	baseline, baselineErr := s.complexity.Route(prompt, rctx)

	learned, err := s.learning.Route(prompt, rctx)
	if err != nil {
		if errors.Is(err, ErrLowConfidence) {
			return s.fallback(baseline, baselineErr, err.Error())
		}
		return nil, err
	}

	if learned.ConfidenceLevel != models.ConfidenceHigh {
		return s.fallback(baseline, baselineErr,
			fmt.Sprintf("learned pick %s/%s has %s confidence, high required",
				learned.Provider, learned.ModelName, learned.ConfidenceLevel))
	}

	if baselineErr != nil {
		// No baseline to sanity-check against; trust the high-confidence pick.
		return s.promote(learned, fmt.Sprintf("no complexity baseline available (%v)", baselineErr)), nil
	}

	if baseline.EstimatedCost > 0 && learned.EstimatedCost > s.costRatio*baseline.EstimatedCost {
		return s.fallback(baseline, nil,
			fmt.Sprintf("learned pick costs $%.6f, above %.1fx baseline $%.6f",
				learned.EstimatedCost, s.costRatio, baseline.EstimatedCost))
	}

	return s.promote(learned, fmt.Sprintf("within %.1fx of baseline %s/%s ($%.6f)",
		s.costRatio, baseline.Provider, baseline.ModelName, baseline.EstimatedCost)), nil
}

// promote re-attributes a learning decision to the hybrid-learning branch.
func (s *HybridStrategy) promote(learned *Decision, why string) *Decision {
	out := *learned
	out.Strategy = models.StrategyHybridLearning
	out.Reasoning = fmt.Sprintf("learned recommendation accepted: %s; %s", why, learned.Reasoning)
	return &out
}

// fallback re-attributes the complexity baseline to the hybrid-complexity
// branch, recording why the learning branch was not taken.
func (s *HybridStrategy) fallback(baseline *Decision, baselineErr error, why string) (*Decision, error) {
	if baselineErr != nil {
		return nil, baselineErr
	}
	out := *baseline
	out.Strategy = models.StrategyHybridComplexity
	out.Reasoning = fmt.Sprintf("falling back to complexity baseline: %s; %s", why, baseline.Reasoning)
	return &out, nil
}
