package jobs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"routeiq/router/internal/feedback"
	"routeiq/router/internal/performance"
)

// ErrRetrainInProgress is returned when a run is triggered while another is
// still executing. Retraining is strictly single-flight.
var ErrRetrainInProgress = errors.New("retraining run already in progress")

// RetrainerConfig contains configuration for the retraining job
type RetrainerConfig struct {
	Schedule   string // cron schedule (e.g. "0 3 * * *" for 3 AM daily)
	Enabled    bool   // whether the scheduled job runs
	MinSamples int    // minimum feedback rows per (pattern, model) group
}

// Retrainer rebuilds the performance snapshot from accumulated feedback,
// on a schedule or on demand.
type Retrainer struct {
	feedback *feedback.Store
	perf     *performance.Store
	config   *RetrainerConfig
	cron     *cron.Cron
	running  atomic.Bool
	logger   *zap.Logger
}

func NewRetrainer(fs *feedback.Store, perf *performance.Store, config *RetrainerConfig, logger *zap.Logger) *Retrainer {
	return &Retrainer{
		feedback: fs,
		perf:     perf,
		config:   config,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start schedules the periodic run.
func (r *Retrainer) Start() error {
	if !r.config.Enabled {
		r.logger.Info("scheduled retraining disabled")
		return nil
	}

	_, err := r.cron.AddFunc(r.config.Schedule, func() {
		if _, err := r.Run(context.Background(), false, 0); err != nil && !errors.Is(err, ErrRetrainInProgress) {
			r.logger.Error("scheduled retraining failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retraining: %w", err)
	}

	r.cron.Start()
	r.logger.Info("retraining scheduled", zap.String("schedule", r.config.Schedule))
	return nil
}

// Stop halts the scheduler; an in-flight run finishes on its own.
func (r *Retrainer) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

// Summary reports the outcome of one retraining run.
type Summary struct {
	Version         string               `json:"version,omitempty"`
	DryRun          bool                 `json:"dry_run"`
	Published       bool                 `json:"published"`
	GateMet         bool                 `json:"gate_met"`
	FeedbackCount   int                  `json:"feedback_count"`
	GroupsEvaluated int                  `json:"groups_evaluated"`
	GroupsPublished int                  `json:"groups_published"`
	MinSamples      int                  `json:"min_samples"`
	Records         []performance.Record `json:"records,omitempty"`
}

type group struct {
	pattern, provider, model string
	qualities                []float64
	correct                  int
	totalCost                float64
}

// Run aggregates the feedback ledger into a fresh snapshot and publishes it
// atomically. minSamples <= 0 uses the configured default. A run in which no
// group clears the gate is a successful no-op, not an error. With dryRun the
// would-be snapshot is returned but nothing is persisted or swapped.
func (r *Retrainer) Run(ctx context.Context, dryRun bool, minSamples int) (*Summary, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRetrainInProgress
	}
	defer r.running.Store(false)

	if minSamples <= 0 {
		minSamples = r.config.MinSamples
	}

	rows, err := r.feedback.AllForRetraining()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	groups := make(map[string]*group)
	for _, row := range rows {
		key := row.Pattern + "|" + row.Provider + "|" + row.ModelName
		g, ok := groups[key]
		if !ok {
			g = &group{pattern: row.Pattern, provider: row.Provider, model: row.ModelName}
			groups[key] = g
		}
		g.qualities = append(g.qualities, float64(row.QualityScore))
		if row.Correct {
			g.correct++
		}
		g.totalCost += row.DecisionCost
	}

	summary := &Summary{
		DryRun:          dryRun,
		FeedbackCount:   len(rows),
		GroupsEvaluated: len(groups),
		MinSamples:      minSamples,
	}

	var records []performance.Record
	for _, g := range groups {
		if len(g.qualities) < minSamples {
			continue
		}
		mean, stddev := meanStdDev(g.qualities)
		records = append(records, performance.Record{
			Pattern:         g.pattern,
			Provider:        g.provider,
			ModelName:       g.model,
			SampleCount:     len(g.qualities),
			MeanQuality:     mean,
			CorrectnessRate: float64(g.correct) / float64(len(g.qualities)),
			MeanCost:        g.totalCost / float64(len(g.qualities)),
			QualityStdDev:   stddev,
			Confidence:      performance.ConfidenceLevel(len(g.qualities), stddev),
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Pattern != records[j].Pattern {
			return records[i].Pattern < records[j].Pattern
		}
		if records[i].Provider != records[j].Provider {
			return records[i].Provider < records[j].Provider
		}
		return records[i].ModelName < records[j].ModelName
	})

	if len(records) == 0 {
		r.logger.Info("retraining gate not met, keeping current snapshot",
			zap.Int("feedback", len(rows)),
			zap.Int("groups", len(groups)),
			zap.Int("min_samples", minSamples))
		return summary, nil
	}

	summary.GateMet = true
	summary.GroupsPublished = len(records)
	summary.Records = records
	summary.Version = uuid.New().String()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := performance.NewSnapshot(summary.Version, time.Now(), records)
	if dryRun {
		r.logger.Info("retraining dry run complete",
			zap.String("version", summary.Version),
			zap.Int("records", len(records)))
		return summary, nil
	}

	if err := r.perf.Publish(snap, len(rows)); err != nil {
		return nil, err
	}
	summary.Published = true

	r.logger.Info("retraining complete",
		zap.String("version", summary.Version),
		zap.Int("records", len(records)),
		zap.Int("feedback", len(rows)))
	return summary, nil
}

// meanStdDev computes the mean and population standard deviation.
func meanStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
