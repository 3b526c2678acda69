package performance

import (
	"sort"
	"time"

	"routeiq/router/internal/models"
)

// Record is the learned quality/cost profile of one (pattern, provider,
// model) group. Records are immutable once published in a snapshot.
type Record struct {
	Pattern         string  `json:"pattern"`
	Provider        string  `json:"provider"`
	ModelName       string  `json:"model"`
	SampleCount     int     `json:"sample_count"`
	MeanQuality     float64 `json:"mean_quality"` // on the 1-5 feedback scale
	CorrectnessRate float64 `json:"correctness_rate"`
	MeanCost        float64 `json:"mean_cost"`
	QualityStdDev   float64 `json:"quality_std_dev"`
	Confidence      string  `json:"confidence"`
}

// Snapshot is an immutable, versioned view of all learned records. It is
// built once by retraining and read concurrently without locking.
type Snapshot struct {
	Version   string
	CreatedAt time.Time

	byPattern map[string][]Record
	total     int
}

// NewSnapshot builds a snapshot from records, indexing by pattern. Records
// within a pattern are kept in a stable provider/model order.
func NewSnapshot(version string, createdAt time.Time, records []Record) *Snapshot {
	byPattern := make(map[string][]Record)
	for _, r := range records {
		byPattern[r.Pattern] = append(byPattern[r.Pattern], r)
	}
	for pattern := range byPattern {
		rs := byPattern[pattern]
		sort.Slice(rs, func(i, j int) bool {
			if rs[i].Provider != rs[j].Provider {
				return rs[i].Provider < rs[j].Provider
			}
			return rs[i].ModelName < rs[j].ModelName
		})
	}
	return &Snapshot{
		Version:   version,
		CreatedAt: createdAt,
		byPattern: byPattern,
		total:     len(records),
	}
}

// ForPattern returns the records learned for a pattern. Callers must not
// mutate the returned slice.
func (s *Snapshot) ForPattern(pattern string) []Record {
	if s == nil {
		return nil
	}
	return s.byPattern[pattern]
}

// All returns every record across patterns in a stable order.
func (s *Snapshot) All() []Record {
	if s == nil {
		return nil
	}
	patterns := make([]string, 0, len(s.byPattern))
	for p := range s.byPattern {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)

	out := make([]Record, 0, s.total)
	for _, p := range patterns {
		out = append(out, s.byPattern[p]...)
	}
	return out
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return s.total
}

func (s *Snapshot) Empty() bool {
	return s.Len() == 0
}

// Confidence thresholds: joint gates on sample count and outcome spread.
// Holding the spread fixed, more samples never lowers the level.
const (
	highConfidenceSamples   = 25
	mediumConfidenceSamples = 10
	highConfidenceStdDev    = 0.75
	mediumConfidenceStdDev  = 1.25
)

// ConfidenceLevel derives the qualitative reliability label for a group.
func ConfidenceLevel(sampleCount int, qualityStdDev float64) string {
	switch {
	case sampleCount >= highConfidenceSamples && qualityStdDev <= highConfidenceStdDev:
		return models.ConfidenceHigh
	case sampleCount >= mediumConfidenceSamples && qualityStdDev <= mediumConfidenceStdDev:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// ConfidenceWeight maps a confidence level to the sample-confidence term of
// the learning strategy's composite score.
func ConfidenceWeight(level string) float64 {
	switch level {
	case models.ConfidenceHigh:
		return 1.0
	case models.ConfidenceMedium:
		return 0.6
	default:
		return 0.2
	}
}
