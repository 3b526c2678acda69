package routing

import (
	"testing"

	"routeiq/router/internal/models"
)

func TestLoadTierTable(t *testing.T) {
	table, err := LoadTierTable()
	if err != nil {
		t.Fatalf("LoadTierTable error: %v", err)
	}

	for _, tier := range models.ValidTiersList() {
		prefs := table.Preferences(tier)
		if len(prefs) == 0 {
			t.Fatalf("tier %s has no preferences", tier)
		}
		for _, entry := range prefs {
			if entry.Provider == "" || entry.ModelName == "" {
				t.Fatalf("tier %s has incomplete entry %+v", tier, entry)
			}
			if entry.PromptPer1K <= 0 || entry.CompletionPer1K <= 0 {
				t.Fatalf("tier %s entry %s/%s has no pricing", tier, entry.Provider, entry.ModelName)
			}
		}
	}
}

func TestEstimateCost(t *testing.T) {
	table, err := LoadTierTable()
	if err != nil {
		t.Fatalf("LoadTierTable error: %v", err)
	}

	entry := ModelEntry{Provider: "x", ModelName: "y", PromptPer1K: 0.001, CompletionPer1K: 0.002}

	got := table.EstimateCost(entry, 1000, 500)
	want := 0.001 + 0.001
	if got != want {
		t.Fatalf("EstimateCost = %f, want %f", got, want)
	}

	// zero hint falls back to the default completion budget
	withDefault := table.EstimateCost(entry, 0, 0)
	if withDefault != float64(DefaultMaxTokens)/1000.0*0.002 {
		t.Fatalf("default-token estimate wrong: %f", withDefault)
	}
}

func TestBaselineCostUsesTopPremiumEntry(t *testing.T) {
	table, err := LoadTierTable()
	if err != nil {
		t.Fatalf("LoadTierTable error: %v", err)
	}

	top := table.Preferences(models.TierPremium)[0]
	if got, want := table.BaselineCost(100, 100), table.EstimateCost(top, 100, 100); got != want {
		t.Fatalf("BaselineCost = %f, want %f", got, want)
	}
}

func TestEntryLookup(t *testing.T) {
	table, err := LoadTierTable()
	if err != nil {
		t.Fatalf("LoadTierTable error: %v", err)
	}

	first := table.Preferences(models.TierFree)[0]
	if _, ok := table.Entry(first.Provider, first.ModelName); !ok {
		t.Fatalf("expected to find %s/%s", first.Provider, first.ModelName)
	}
	if _, ok := table.Entry("nope", "nothing"); ok {
		t.Fatal("unexpected entry for unknown pair")
	}
}
