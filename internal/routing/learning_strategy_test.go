package routing

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"routeiq/router/internal/models"
	"routeiq/router/internal/performance"
)

func snapshotWith(records ...performance.Record) *performance.Snapshot {
	return performance.NewSnapshot("test-v1", time.Unix(1700000000, 0), records)
}

func codeRecord(provider, model string, quality, cost float64, samples int, confidence string) performance.Record {
	return performance.Record{
		Pattern:         models.PatternCode,
		Provider:        provider,
		ModelName:       model,
		SampleCount:     samples,
		MeanQuality:     quality,
		CorrectnessRate: 0.9,
		MeanCost:        cost,
		QualityStdDev:   0.5,
		Confidence:      confidence,
	}
}

const codePrompt = "Debug this function\n```python\ndef f(x):\n    return x\n```"

func TestLearningRouteEmptySnapshot(t *testing.T) {
	strategy := NewLearningStrategy(newTestTable(t))

	_, err := strategy.Route(codePrompt, Context{})
	if !errors.Is(err, ErrLowConfidence) {
		t.Fatalf("expected ErrLowConfidence for nil snapshot, got %v", err)
	}

	_, err = strategy.Route(codePrompt, Context{Snapshot: snapshotWith()})
	if !errors.Is(err, ErrLowConfidence) {
		t.Fatalf("expected ErrLowConfidence for empty snapshot, got %v", err)
	}
}

func TestLearningRoutePicksBestComposite(t *testing.T) {
	strategy := NewLearningStrategy(newTestTable(t))

	snap := snapshotWith(
		codeRecord("gemini", "gemini-2.5-flash", 4.5, 0.002, 40, models.ConfidenceHigh),
		codeRecord("openai", "gpt-4o", 4.5, 0.010, 40, models.ConfidenceHigh),
	)

	decision, err := strategy.Route(codePrompt, Context{Snapshot: snap})
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}

	// equal quality and confidence: the cheaper candidate must win on the
	// cost-efficiency term
	if decision.Provider != "gemini" {
		t.Fatalf("expected gemini to win on cost efficiency, got %s", decision.Provider)
	}
	if decision.Strategy != models.StrategyLearning {
		t.Fatalf("expected learning attribution, got %s", decision.Strategy)
	}
	if decision.ConfidenceLevel != models.ConfidenceHigh {
		t.Fatalf("expected high confidence level, got %s", decision.ConfidenceLevel)
	}
	if decision.SnapshotVersion != "test-v1" {
		t.Fatalf("expected snapshot version on decision, got %q", decision.SnapshotVersion)
	}
}

func TestLearningRouteQualityOutweighsCost(t *testing.T) {
	strategy := NewLearningStrategy(newTestTable(t))

	// a large quality gap must beat a cost advantage
	snap := snapshotWith(
		codeRecord("openai", "gpt-4o", 5.0, 0.010, 40, models.ConfidenceHigh),
		codeRecord("gemini", "gemini-2.0-flash-lite", 2.0, 0.0002, 40, models.ConfidenceHigh),
	)

	decision, err := strategy.Route(codePrompt, Context{Snapshot: snap})
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if decision.Provider != "openai" {
		t.Fatalf("expected quality to dominate, got %s", decision.Provider)
	}
}

func TestLearningRouteLowConfidenceFloor(t *testing.T) {
	strategy := NewLearningStrategy(newTestTable(t))

	snap := snapshotWith(
		codeRecord("gemini", "gemini-2.5-flash", 4.9, 0.002, 5, models.ConfidenceLow),
	)

	_, err := strategy.Route(codePrompt, Context{Snapshot: snap})
	if !errors.Is(err, ErrLowConfidence) {
		t.Fatalf("expected ErrLowConfidence below floor, got %v", err)
	}
}

func TestLearningRouteRespectsEnabledAndBudget(t *testing.T) {
	strategy := NewLearningStrategy(newTestTable(t))

	snap := snapshotWith(
		codeRecord("gemini", "gemini-2.5-flash", 4.5, 0.002, 40, models.ConfidenceHigh),
		codeRecord("openai", "gpt-4o-mini", 4.0, 0.001, 40, models.ConfidenceHigh),
	)

	decision, err := strategy.Route(codePrompt, Context{
		Snapshot: snap,
		Enabled:  map[string]bool{"openai": true},
	})
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if decision.Provider != "openai" {
		t.Fatalf("enabled-set filter ignored, got %s", decision.Provider)
	}

	decision, err = strategy.Route(codePrompt, Context{Snapshot: snap, Budget: 0.0015})
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if decision.EstimatedCost > 0.0015 {
		t.Fatalf("budget ignored: cost %f", decision.EstimatedCost)
	}
}

func TestLearningRouteUnknownPattern(t *testing.T) {
	strategy := NewLearningStrategy(newTestTable(t))

	// snapshot only knows creative prompts; a code prompt has no candidates
	snap := snapshotWith(performance.Record{
		Pattern: models.PatternCreative, Provider: "gemini", ModelName: "gemini-2.5-flash",
		SampleCount: 40, MeanQuality: 4.2, MeanCost: 0.002, QualityStdDev: 0.4,
		Confidence: models.ConfidenceHigh,
	})

	_, err := strategy.Route(codePrompt, Context{Snapshot: snap})
	if !errors.Is(err, ErrLowConfidence) {
		t.Fatalf("expected ErrLowConfidence for unlearned pattern, got %v", err)
	}
}

func TestLearningRouteIsDeterministic(t *testing.T) {
	strategy := NewLearningStrategy(newTestTable(t))

	snap := snapshotWith(
		codeRecord("gemini", "gemini-2.5-flash", 4.5, 0.002, 40, models.ConfidenceHigh),
		codeRecord("openai", "gpt-4o", 4.3, 0.008, 30, models.ConfidenceHigh),
		codeRecord("anthropic", "claude-sonnet-4-20250514", 4.4, 0.006, 25, models.ConfidenceMedium),
	)
	rctx := Context{Snapshot: snap}

	first, err := strategy.Route(codePrompt, rctx)
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := strategy.Route(codePrompt, rctx)
		if err != nil {
			t.Fatalf("Route error on repeat: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("decision not deterministic: %+v vs %+v", first, again)
		}
	}
}
