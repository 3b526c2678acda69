package routing

import (
	"errors"
	"reflect"
	"testing"

	"routeiq/router/internal/models"
)

func newTestTable(t *testing.T) *TierTable {
	t.Helper()
	table, err := LoadTierTable()
	if err != nil {
		t.Fatalf("LoadTierTable error: %v", err)
	}
	return table
}

func TestComplexityRoutePicksFirstPreference(t *testing.T) {
	table := newTestTable(t)
	strategy := NewComplexityStrategy(table)

	decision, err := strategy.Route("What is AI?", Context{})
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}

	first := table.Preferences(models.TierFree)[0]
	if decision.Provider != first.Provider || decision.ModelName != first.ModelName {
		t.Fatalf("expected %s/%s, got %s/%s", first.Provider, first.ModelName, decision.Provider, decision.ModelName)
	}
	if decision.Strategy != models.StrategyComplexity {
		t.Fatalf("expected complexity attribution, got %s", decision.Strategy)
	}
	if decision.Complexity.Tier != models.TierFree {
		t.Fatalf("expected free tier, got %s", decision.Complexity.Tier)
	}
	if decision.Reasoning == "" {
		t.Fatal("expected non-empty reasoning")
	}
}

func TestComplexityRouteSkipsDisabledProvider(t *testing.T) {
	table := newTestTable(t)
	strategy := NewComplexityStrategy(table)

	prefs := table.Preferences(models.TierFree)
	enabled := map[string]bool{}
	for _, p := range prefs[1:] {
		enabled[p.Provider] = true
	}

	decision, err := strategy.Route("What is AI?", Context{Enabled: enabled})
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if decision.Provider == prefs[0].Provider {
		t.Fatalf("disabled provider %s was selected", prefs[0].Provider)
	}
}

func TestComplexityRouteNoProviderAvailable(t *testing.T) {
	table := newTestTable(t)
	strategy := NewComplexityStrategy(table)

	_, err := strategy.Route("What is AI?", Context{Enabled: map[string]bool{}})
	if !errors.Is(err, ErrNoProviderAvailable) {
		t.Fatalf("expected ErrNoProviderAvailable, got %v", err)
	}

	// a budget nothing can meet behaves the same way
	_, err = strategy.Route("What is AI?", Context{Budget: 0.0000000001})
	if !errors.Is(err, ErrNoProviderAvailable) {
		t.Fatalf("expected ErrNoProviderAvailable on impossible budget, got %v", err)
	}
}

func TestComplexityRouteBudgetSkipsToAffordable(t *testing.T) {
	table := newTestTable(t)
	strategy := NewComplexityStrategy(table)

	prompt := "Explain the architecture of microservices for a distributed analytics platform"
	prefs := table.Preferences(models.TierPremium)

	// budget just above the second candidate but below the first, when
	// ordered that way in the table
	firstCost := table.EstimateCost(prefs[0], 11, 0)
	decision, err := strategy.Route(prompt, Context{Budget: firstCost})
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if decision.EstimatedCost > firstCost {
		t.Fatalf("selected candidate exceeds budget: %f > %f", decision.EstimatedCost, firstCost)
	}
}

func TestComplexityRouteForcedProvider(t *testing.T) {
	table := newTestTable(t)
	strategy := NewComplexityStrategy(table)

	decision, err := strategy.Route("What is AI?", Context{ForceProvider: "anthropic", ForceModel: "claude-3-5-haiku-latest"})
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if decision.Provider != "anthropic" || decision.ModelName != "claude-3-5-haiku-latest" {
		t.Fatalf("forced override ignored: %s/%s", decision.Provider, decision.ModelName)
	}

	_, err = strategy.Route("What is AI?", Context{
		ForceProvider: "anthropic",
		Enabled:       map[string]bool{"gemini": true},
	})
	if !errors.Is(err, ErrNoProviderAvailable) {
		t.Fatalf("expected ErrNoProviderAvailable for disabled forced provider, got %v", err)
	}
}

func TestComplexityRouteIsDeterministic(t *testing.T) {
	table := newTestTable(t)
	strategy := NewComplexityStrategy(table)
	rctx := Context{Budget: 1.0, MaxTokens: 256}

	first, err := strategy.Route("Refactor this code\n```go\npackage main\n```", rctx)
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := strategy.Route("Refactor this code\n```go\npackage main\n```", rctx)
		if err != nil {
			t.Fatalf("Route error on repeat: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("decision not deterministic: %+v vs %+v", first, again)
		}
	}
}
