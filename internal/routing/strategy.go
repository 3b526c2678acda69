package routing

import (
	"errors"

	"routeiq/router/internal/complexity"
	"routeiq/router/internal/performance"
)

// ErrNoProviderAvailable means no candidate satisfied the enabled-set and
// budget constraints. It is fatal for the request and surfaced to the
// caller, never silently substituted.
var ErrNoProviderAvailable = errors.New("no provider available for request constraints")

// ErrLowConfidence is the learning strategy's explicit non-error signal that
// it has no confident recommendation. Callers fall back rather than fail.
var ErrLowConfidence = errors.New("no confident recommendation from learned performance data")

// Decision is the output of a single routing call. It is created once and
// never mutated after the strategy returns it.
type Decision struct {
	RequestID       string
	Provider        string
	ModelName       string
	Strategy        string
	Confidence      float64
	ConfidenceLevel string
	Reasoning       string
	EstimatedCost   float64
	Complexity      complexity.Score
	SnapshotVersion string
}

// Context carries the per-call routing constraints plus the performance
// snapshot the strategy must consult. Strategies never reach for shared
// mutable state beyond it.
type Context struct {
	// Enabled restricts candidate providers; nil means all are enabled.
	Enabled map[string]bool
	// Budget is a USD ceiling per request; 0 means unlimited.
	Budget float64
	// ForceProvider/ForceModel override selection entirely when set.
	ForceProvider string
	ForceModel    string
	// MaxTokens is the caller's completion-size hint.
	MaxTokens int
	// Snapshot is the performance view for this call; may be nil when
	// nothing has been learned yet.
	Snapshot *performance.Snapshot
}

func (c Context) providerEnabled(provider string) bool {
	if c.Enabled == nil {
		return true
	}
	return c.Enabled[provider]
}

func (c Context) snapshotVersion() string {
	if c.Snapshot == nil {
		return ""
	}
	return c.Snapshot.Version
}

// Strategy converts a prompt plus routing context into a decision.
type Strategy interface {
	Name() string
	Route(prompt string, rctx Context) (*Decision, error)
}
