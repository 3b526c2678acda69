package ledger

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"routeiq/router/internal/models"
	"routeiq/router/internal/routing"
)

// Ledger appends one metrics row per request and records decisions for
// later feedback validation. Metric writes are fire-and-forget: a slow or
// broken backend is logged and never fails the routing response.
type Ledger struct {
	db           *gorm.DB
	logger       *zap.Logger
	baselineCost float64
	wg           sync.WaitGroup
}

// NewLedger creates a ledger. baselineCost is the per-request spend of the
// always-premium policy that the savings figure is measured against.
func NewLedger(db *gorm.DB, baselineCost float64, logger *zap.Logger) *Ledger {
	return &Ledger{db: db, logger: logger, baselineCost: baselineCost}
}

// RecordDecision durably stores a routing decision. Feedback submitted for
// this request id is validated against this row, so the write is
// synchronous; the caller logs and continues on failure.
func (l *Ledger) RecordDecision(d *routing.Decision) error {
	row := models.RoutingDecision{
		RequestID:       d.RequestID,
		Provider:        d.Provider,
		ModelName:       d.ModelName,
		Strategy:        d.Strategy,
		Confidence:      d.Confidence,
		Reasoning:       d.Reasoning,
		EstimatedCost:   d.EstimatedCost,
		ComplexityScore: d.Complexity.Value,
		Tier:            d.Complexity.Tier,
		Pattern:         d.Complexity.Pattern,
		SnapshotVersion: d.SnapshotVersion,
	}
	if err := l.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record decision %s: %w", d.RequestID, err)
	}
	return nil
}

// Record appends the analytics row asynchronously. The row is either fully
// written or not written at all; the request path never waits on it.
func (l *Ledger) Record(metric models.RequestMetric) {
	if metric.RecordedAt.IsZero() {
		metric.RecordedAt = time.Now()
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := l.db.Create(&metric).Error; err != nil {
			l.logger.Warn("metrics write failed, continuing",
				zap.String("request_id", metric.RequestID),
				zap.Error(err))
		}
	}()
}

// RecordCacheHit appends the zero-cost row for a request served from cache.
func (l *Ledger) RecordCacheHit(requestID, provider, model string, tokensIn, tokensOut int) {
	l.Record(models.RequestMetric{
		RequestID: requestID,
		Provider:  provider,
		ModelName: model,
		TokensIn:  tokensIn,
		TokensOut: tokensOut,
		Cost:      0,
		CacheHit:  true,
	})
}

// Flush waits for in-flight metric writes. Used on shutdown and in tests.
func (l *Ledger) Flush() {
	l.wg.Wait()
}

// StrategyStats aggregates the ledger by routing strategy.
type StrategyStats struct {
	Strategy      string  `json:"strategy"`
	Requests      int64   `json:"requests"`
	AvgCost       float64 `json:"avg_cost"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// ProviderStats aggregates the ledger by provider.
type ProviderStats struct {
	Provider  string  `json:"provider"`
	Requests  int64   `json:"requests"`
	AvgCost   float64 `json:"avg_cost"`
	TotalCost float64 `json:"total_cost"`
}

// Summary is the read-side analytics view over the full ledger.
type Summary struct {
	TotalRequests int64           `json:"total_requests"`
	CacheHits     int64           `json:"cache_hits"`
	TotalCost     float64         `json:"total_cost"`
	BaselineCost  float64         `json:"baseline_cost"`
	CostSavings   float64         `json:"cost_savings"`
	ByStrategy    []StrategyStats `json:"by_strategy"`
	ByProvider    []ProviderStats `json:"by_provider"`
}

// Summarize computes counts, averages and the savings versus the
// always-premium baseline.
func (l *Ledger) Summarize() (*Summary, error) {
	out := &Summary{}

	if err := l.db.Model(&models.RequestMetric{}).Count(&out.TotalRequests).Error; err != nil {
		return nil, fmt.Errorf("failed to count metrics: %w", err)
	}
	if err := l.db.Model(&models.RequestMetric{}).Where("cache_hit = ?", true).Count(&out.CacheHits).Error; err != nil {
		return nil, fmt.Errorf("failed to count cache hits: %w", err)
	}

	var total struct{ Total float64 }
	if err := l.db.Model(&models.RequestMetric{}).
		Select("COALESCE(SUM(cost), 0) AS total").
		Scan(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to sum cost: %w", err)
	}
	out.TotalCost = total.Total

	out.BaselineCost = l.baselineCost * float64(out.TotalRequests)
	out.CostSavings = out.BaselineCost - out.TotalCost

	if err := l.db.Model(&models.RequestMetric{}).
		Select("strategy, COUNT(*) AS requests, AVG(cost) AS avg_cost, AVG(confidence) AS avg_confidence").
		Where("strategy <> ''").
		Group("strategy").
		Order("strategy").
		Scan(&out.ByStrategy).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate by strategy: %w", err)
	}

	if err := l.db.Model(&models.RequestMetric{}).
		Select("provider, COUNT(*) AS requests, AVG(cost) AS avg_cost, SUM(cost) AS total_cost").
		Where("provider <> ''").
		Group("provider").
		Order("provider").
		Scan(&out.ByProvider).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate by provider: %w", err)
	}

	return out, nil
}
