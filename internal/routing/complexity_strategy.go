package routing

import (
	"fmt"
	"strings"

	"routeiq/router/internal/complexity"
	"routeiq/router/internal/models"
)

// ComplexityStrategy maps the scored tier to a fixed, ordered preference
// list and picks the first entry that is enabled and within budget.
type ComplexityStrategy struct {
	table *TierTable
}

func NewComplexityStrategy(table *TierTable) *ComplexityStrategy {
	return &ComplexityStrategy{table: table}
}

func (s *ComplexityStrategy) Name() string {
	return models.StrategyComplexity
}

func (s *ComplexityStrategy) Route(prompt string, rctx Context) (*Decision, error) {
	score := complexity.Assess(prompt, rctx.MaxTokens)

	if rctx.ForceProvider != "" {
		return s.forced(score, rctx)
	}

	prefs := s.table.Preferences(score.Tier)
	for i, entry := range prefs {
		if !rctx.providerEnabled(entry.Provider) {
			continue
		}
		cost := s.table.EstimateCost(entry, score.TokenCount, rctx.MaxTokens)
		if rctx.Budget > 0 && cost > rctx.Budget {
			continue
		}
		return &Decision{
			Provider:        entry.Provider,
			ModelName:       entry.ModelName,
			Strategy:        models.StrategyComplexity,
			Confidence:      preferenceConfidence(i),
			Reasoning:       complexityReasoning(score, entry, i),
			EstimatedCost:   cost,
			Complexity:      score,
			SnapshotVersion: rctx.snapshotVersion(),
		}, nil
	}

	return nil, fmt.Errorf("tier %q has no enabled candidate within budget: %w", score.Tier, ErrNoProviderAvailable)
}

// forced honors a caller-supplied provider/model override. When the model is
// unknown to the table the cost estimate is zero rather than a guess.
func (s *ComplexityStrategy) forced(score complexity.Score, rctx Context) (*Decision, error) {
	if !rctx.providerEnabled(rctx.ForceProvider) {
		return nil, fmt.Errorf("forced provider %q is not enabled: %w", rctx.ForceProvider, ErrNoProviderAvailable)
	}

	model := rctx.ForceModel
	cost := 0.0
	if entry, ok := s.table.Entry(rctx.ForceProvider, model); ok {
		cost = s.table.EstimateCost(entry, score.TokenCount, rctx.MaxTokens)
	} else if model == "" {
		// provider forced without a model: use its best entry for the tier
		for _, entry := range s.table.Preferences(score.Tier) {
			if entry.Provider == rctx.ForceProvider {
				model = entry.ModelName
				cost = s.table.EstimateCost(entry, score.TokenCount, rctx.MaxTokens)
				break
			}
		}
		if model == "" {
			return nil, fmt.Errorf("forced provider %q has no candidate for tier %q: %w", rctx.ForceProvider, score.Tier, ErrNoProviderAvailable)
		}
	}
	if rctx.Budget > 0 && cost > rctx.Budget {
		return nil, fmt.Errorf("forced candidate exceeds budget %.4f: %w", rctx.Budget, ErrNoProviderAvailable)
	}

	return &Decision{
		Provider:        rctx.ForceProvider,
		ModelName:       model,
		Strategy:        models.StrategyComplexity,
		Confidence:      1.0,
		Reasoning:       fmt.Sprintf("caller forced provider %s model %s", rctx.ForceProvider, model),
		EstimatedCost:   cost,
		Complexity:      score,
		SnapshotVersion: rctx.snapshotVersion(),
	}, nil
}

// preferenceConfidence decays with list position: the first choice for a
// tier is the configured best fit.
func preferenceConfidence(position int) float64 {
	conf := 0.9 - 0.15*float64(position)
	if conf < 0.3 {
		conf = 0.3
	}
	return conf
}

func complexityReasoning(score complexity.Score, entry ModelEntry, position int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tier %s (score %.2f, %d tokens", score.Tier, score.Value, score.TokenCount)
	if len(score.KeywordHits) > 0 {
		fmt.Fprintf(&sb, ", keywords: %s", strings.Join(score.KeywordHits, ", "))
	}
	if score.HasCodeFence {
		sb.WriteString(", code detected")
	}
	fmt.Fprintf(&sb, ") mapped to %s/%s (preference #%d)", entry.Provider, entry.ModelName, position+1)
	return sb.String()
}
