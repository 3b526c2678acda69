package routing

import (
	"fmt"
	"sort"

	"routeiq/router/internal/complexity"
	"routeiq/router/internal/models"
	"routeiq/router/internal/performance"
)

// Composite score weights: quality dominates, cost efficiency second,
// sample confidence third.
const (
	qualityWeight    = 0.5
	costWeight       = 0.3
	confidenceWeight = 0.2
)

// LearningStrategy ranks the learned records for the prompt's pattern by a
// weighted blend of quality, cost efficiency and sample confidence. It only
// recommends when the top candidate's confidence clears the floor;
// otherwise it reports ErrLowConfidence so the caller can fall back.
type LearningStrategy struct {
	table *TierTable
}

func NewLearningStrategy(table *TierTable) *LearningStrategy {
	return &LearningStrategy{table: table}
}

func (s *LearningStrategy) Name() string {
	return models.StrategyLearning
}

type rankedCandidate struct {
	record    performance.Record
	composite float64
}

func (s *LearningStrategy) Route(prompt string, rctx Context) (*Decision, error) {
	score := complexity.Assess(prompt, rctx.MaxTokens)

	if rctx.Snapshot == nil || rctx.Snapshot.Empty() {
		return nil, fmt.Errorf("performance store is empty: %w", ErrLowConfidence)
	}

	records := rctx.Snapshot.ForPattern(score.Pattern)
	candidates := s.rank(records, rctx)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no learned candidates for pattern %q: %w", score.Pattern, ErrLowConfidence)
	}

	top := candidates[0]
	if top.record.Confidence == models.ConfidenceLow {
		return nil, fmt.Errorf("best candidate %s/%s for pattern %q has low confidence: %w",
			top.record.Provider, top.record.ModelName, score.Pattern, ErrLowConfidence)
	}

	return &Decision{
		Provider:        top.record.Provider,
		ModelName:       top.record.ModelName,
		Strategy:        models.StrategyLearning,
		Confidence:      top.composite,
		ConfidenceLevel: top.record.Confidence,
		Reasoning: fmt.Sprintf(
			"pattern %s: %s/%s ranked first (composite %.3f, quality %.2f/5 over %d samples, %s confidence, mean cost $%.6f)",
			score.Pattern, top.record.Provider, top.record.ModelName, top.composite,
			top.record.MeanQuality, top.record.SampleCount, top.record.Confidence, top.record.MeanCost),
		EstimatedCost:   top.record.MeanCost,
		Complexity:      score,
		SnapshotVersion: rctx.snapshotVersion(),
	}, nil
}

// rank filters by enabled set, override and budget, then orders by
// composite score with a deterministic provider/model tie-break.
func (s *LearningStrategy) rank(records []performance.Record, rctx Context) []rankedCandidate {
	maxCost := 0.0
	for _, r := range records {
		if r.MeanCost > maxCost {
			maxCost = r.MeanCost
		}
	}

	var out []rankedCandidate
	for _, r := range records {
		if !rctx.providerEnabled(r.Provider) {
			continue
		}
		if rctx.ForceProvider != "" && r.Provider != rctx.ForceProvider {
			continue
		}
		if rctx.ForceModel != "" && r.ModelName != rctx.ForceModel {
			continue
		}
		if rctx.Budget > 0 && r.MeanCost > rctx.Budget {
			continue
		}
		out = append(out, rankedCandidate{record: r, composite: compositeScore(r, maxCost)})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].composite != out[j].composite {
			return out[i].composite > out[j].composite
		}
		if out[i].record.Provider != out[j].record.Provider {
			return out[i].record.Provider < out[j].record.Provider
		}
		return out[i].record.ModelName < out[j].record.ModelName
	})
	return out
}

// compositeScore = 0.5*quality + 0.3*(1 - normalized cost) + 0.2*confidence.
// Quality is normalized from the 1-5 feedback scale to [0,1]; cost is
// normalized against the most expensive candidate in the pattern.
func compositeScore(r performance.Record, maxCost float64) float64 {
	quality := (r.MeanQuality - float64(models.MinQualityScore)) /
		float64(models.MaxQualityScore-models.MinQualityScore)
	if quality < 0 {
		quality = 0
	}
	if quality > 1 {
		quality = 1
	}

	costEfficiency := 1.0
	if maxCost > 0 {
		costEfficiency = 1.0 - r.MeanCost/maxCost
	}

	return qualityWeight*quality +
		costWeight*costEfficiency +
		confidenceWeight*performance.ConfidenceWeight(r.Confidence)
}
