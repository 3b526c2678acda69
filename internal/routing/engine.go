package routing

import (
	"go.uber.org/zap"

	"routeiq/router/internal/performance"
)

// Engine is the routing facade. It selects the complexity strategy when
// auto-routing is off and the hybrid strategy when it is on, and pins every
// call to one immutable performance snapshot.
type Engine struct {
	perf       *performance.Store
	complexity *ComplexityStrategy
	learning   *LearningStrategy
	hybrid     *HybridStrategy
	logger     *zap.Logger
}

func NewEngine(table *TierTable, perf *performance.Store, costRatio float64, logger *zap.Logger) *Engine {
	complexityStrategy := NewComplexityStrategy(table)
	learningStrategy := NewLearningStrategy(table)
	return &Engine{
		perf:       perf,
		complexity: complexityStrategy,
		learning:   learningStrategy,
		hybrid:     NewHybridStrategy(learningStrategy, complexityStrategy, costRatio),
		logger:     logger,
	}
}

// Route produces a routing decision. The snapshot is loaded once at entry
// so a retraining publish mid-call can never mix old and new records.
func (e *Engine) Route(prompt string, autoRoute bool, rctx Context) (*Decision, error) {
	e.pinSnapshot(&rctx)

	strategy := Strategy(e.complexity)
	if autoRoute {
		strategy = e.hybrid
	}

	decision, err := strategy.Route(prompt, rctx)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("routing decision",
		zap.String("strategy", decision.Strategy),
		zap.String("provider", decision.Provider),
		zap.String("model", decision.ModelName),
		zap.String("tier", decision.Complexity.Tier),
		zap.String("pattern", decision.Complexity.Pattern),
		zap.Float64("estimated_cost", decision.EstimatedCost))
	return decision, nil
}

// Explain runs the hybrid strategy for preview purposes. It has no side
// effects: no provider execution and no ledger writes happen here.
func (e *Engine) Explain(prompt string, rctx Context) (*Decision, error) {
	e.pinSnapshot(&rctx)
	return e.hybrid.Route(prompt, rctx)
}

// SnapshotVersion reports the live snapshot version, empty when none.
func (e *Engine) SnapshotVersion() string {
	if e.perf == nil {
		return ""
	}
	if snap := e.perf.Current(); snap != nil {
		return snap.Version
	}
	return ""
}

func (e *Engine) pinSnapshot(rctx *Context) {
	if rctx.Snapshot == nil && e.perf != nil {
		rctx.Snapshot = e.perf.Current()
	}
}
