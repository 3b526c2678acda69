package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"routeiq/router/internal/jobs"
	"routeiq/router/internal/middleware"
	"routeiq/router/internal/models"
)

func newRetrainer(env *testEnv) *jobs.Retrainer {
	return jobs.NewRetrainer(env.feedback, env.perf, &jobs.RetrainerConfig{
		Schedule:   "@hourly",
		Enabled:    false,
		MinSamples: 10,
	}, zap.NewNop())
}

func TestRetrainHandlerBelowGate(t *testing.T) {
	env := newTestEnv(t)
	handler := NewRetrainHandler(newRetrainer(env), zap.NewNop())
	wrapped := middleware.ValidateRequest[*models.RetrainRequest]()(http.HandlerFunc(handler.Retrain))

	rec := performRequest(wrapped, `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.Resp
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.OK {
		t.Fatal("expected ok response")
	}
	if env.perf.Current() != nil {
		t.Fatal("expected no snapshot published from an empty ledger")
	}
}

func TestRetrainHandlerPublishes(t *testing.T) {
	env := newTestEnv(t)

	// twelve rated code decisions for one provider/model
	for i := 0; i < 12; i++ {
		requestID := "req-code-" + string(rune('a'+i))
		decision := &models.RoutingDecision{
			RequestID:     requestID,
			Provider:      "gemini",
			ModelName:     "gemini-2.5-flash",
			Strategy:      models.StrategyComplexity,
			EstimatedCost: 0.001,
			Tier:          models.TierMedium,
			Pattern:       models.PatternCode,
		}
		if err := env.db.Create(decision).Error; err != nil {
			t.Fatalf("failed to seed decision: %v", err)
		}
		if _, err := env.feedback.Submit(requestID, 4, true, true, ""); err != nil {
			t.Fatalf("failed to submit feedback: %v", err)
		}
	}

	handler := NewRetrainHandler(newRetrainer(env), zap.NewNop())
	wrapped := middleware.ValidateRequest[*models.RetrainRequest]()(http.HandlerFunc(handler.Retrain))

	rec := performRequest(wrapped, `{"min_samples":10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	snap := env.perf.Current()
	if snap == nil {
		t.Fatal("expected a published snapshot")
	}
	if snap.Len() != 1 {
		t.Fatalf("expected one aggregated record, got %d", snap.Len())
	}
}

func TestRetrainHandlerDryRun(t *testing.T) {
	env := newTestEnv(t)
	handler := NewRetrainHandler(newRetrainer(env), zap.NewNop())
	wrapped := middleware.ValidateRequest[*models.RetrainRequest]()(http.HandlerFunc(handler.Retrain))

	rec := performRequest(wrapped, `{"dry_run":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.perf.Current() != nil {
		t.Fatal("expected dry run to publish nothing")
	}
}

func TestRetrainHandlerRejectsNegativeMinSamples(t *testing.T) {
	env := newTestEnv(t)
	handler := NewRetrainHandler(newRetrainer(env), zap.NewNop())
	wrapped := middleware.ValidateRequest[*models.RetrainRequest]()(http.HandlerFunc(handler.Retrain))

	rec := performRequest(wrapped, `{"min_samples":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
