package routing

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"routeiq/router/internal/models"
)

// embeds the routing tables into the binary at compile time
//
//go:embed tables/*.yaml
var tableFS embed.FS

// DefaultMaxTokens is the completion budget assumed for cost estimation
// when the caller gives no hint.
const DefaultMaxTokens = 1024

// ModelEntry is one (provider, model) candidate with its list pricing.
type ModelEntry struct {
	Provider        string  `yaml:"provider"`
	ModelName       string  `yaml:"model"`
	PromptPer1K     float64 `yaml:"prompt_per_1k"`
	CompletionPer1K float64 `yaml:"completion_per_1k"`
}

type tierFile struct {
	Tiers map[string][]ModelEntry `yaml:"tiers"`
}

// TierTable holds the ordered preference lists per tier.
type TierTable struct {
	tiers map[string][]ModelEntry
}

// LoadTierTable parses the embedded tier preference tables.
func LoadTierTable() (*TierTable, error) {
	data, err := tableFS.ReadFile("tables/tiers.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read tier table: %w", err)
	}

	var parsed tierFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse tier table: %w", err)
	}

	for _, tier := range models.ValidTiersList() {
		if len(parsed.Tiers[tier]) == 0 {
			return nil, fmt.Errorf("tier table missing entries for tier %q", tier)
		}
	}
	for tier := range parsed.Tiers {
		if !models.ValidTiers[tier] {
			return nil, fmt.Errorf("tier table contains unknown tier %q", tier)
		}
	}

	return &TierTable{tiers: parsed.Tiers}, nil
}

// Preferences returns the ordered candidate list for a tier. Callers must
// not mutate the returned slice.
func (t *TierTable) Preferences(tier string) []ModelEntry {
	return t.tiers[tier]
}

// Entry finds a (provider, model) pair anywhere in the table.
func (t *TierTable) Entry(provider, model string) (ModelEntry, bool) {
	for _, entries := range t.tiers {
		for _, e := range entries {
			if e.Provider == provider && e.ModelName == model {
				return e, true
			}
		}
	}
	return ModelEntry{}, false
}

// EstimateCost projects the USD cost of a request against an entry's list
// pricing. maxTokens <= 0 falls back to DefaultMaxTokens.
func (t *TierTable) EstimateCost(e ModelEntry, promptTokens, maxTokens int) float64 {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return (float64(promptTokens)/1000.0)*e.PromptPer1K + (float64(maxTokens)/1000.0)*e.CompletionPer1K
}

// BaselineCost is the projected per-request spend of always picking the top
// premium candidate; the ledger's savings figure is measured against it.
func (t *TierTable) BaselineCost(promptTokens, maxTokens int) float64 {
	prefs := t.Preferences(models.TierPremium)
	if len(prefs) == 0 {
		return 0
	}
	return t.EstimateCost(prefs[0], promptTokens, maxTokens)
}
