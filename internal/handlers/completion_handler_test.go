package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"routeiq/router/internal/cache"
	"routeiq/router/internal/llm"
	"routeiq/router/internal/middleware"
	"routeiq/router/internal/models"
)

func newCompletionHandler(t *testing.T, env *testEnv, c *cache.ResponseCache, providers map[string]llm.Provider) http.Handler {
	t.Helper()
	handler := NewCompletionHandler(env.engine, env.ledger, c, providers, env.config, zap.NewNop())
	return middleware.ValidateRequest[*models.RouteRequest]()(http.HandlerFunc(handler.Complete))
}

func newTestCache(t *testing.T) *cache.ResponseCache {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewResponseCache(client, time.Minute, zap.NewNop())
}

func TestCompleteExecutesRoutedProvider(t *testing.T) {
	env := newTestEnv(t)
	providers := map[string]llm.Provider{
		"gemini": &mockProvider{name: "gemini"},
	}
	wrapped := newCompletionHandler(t, env, nil, providers)

	rec := performRequest(wrapped, `{"prompt":"What is AI?","request_id":"req-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.CompletionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Text != "answer" {
		t.Fatalf("unexpected completion text: %q", resp.Text)
	}
	if resp.Cached {
		t.Fatal("expected uncached response")
	}
	if resp.Provider != "gemini" {
		t.Fatalf("expected gemini, got %s", resp.Provider)
	}
	if resp.Decision == nil || resp.Decision.RequestID != "req-1" {
		t.Fatalf("expected attached decision, got %+v", resp.Decision)
	}

	// the real cost must land in the metrics ledger
	env.ledger.Flush()
	var metric models.RequestMetric
	if err := env.db.Where("request_id = ?", "req-1").First(&metric).Error; err != nil {
		t.Fatalf("expected persisted metric: %v", err)
	}
	if metric.Cost != 0.0001 {
		t.Fatalf("expected executed cost 0.0001, got %f", metric.Cost)
	}
	if metric.CacheHit {
		t.Fatal("expected cache_hit false")
	}
}

func TestCompleteServesFromCache(t *testing.T) {
	env := newTestEnv(t)
	c := newTestCache(t)
	c.Store(context.Background(), "What is AI?", &cache.Entry{
		Response:     "cached answer",
		Provider:     "gemini",
		Model:        "gemini-2.0-flash-lite",
		OriginalCost: 0.0003,
		TokensIn:     3,
		TokensOut:    5,
	})

	// provider must never be called on a hit
	providers := map[string]llm.Provider{
		"gemini": &mockProvider{executeFn: func(context.Context, string, string, int) (*llm.CompletionResult, error) {
			t.Fatal("provider called despite cache hit")
			return nil, nil
		}},
	}
	wrapped := newCompletionHandler(t, env, c, providers)

	rec := performRequest(wrapped, `{"prompt":"What is AI?","request_id":"req-hit"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp models.CompletionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Cached {
		t.Fatal("expected cached response")
	}
	if resp.Text != "cached answer" {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if resp.Cost != 0 {
		t.Fatalf("expected zero cost on hit, got %f", resp.Cost)
	}

	env.ledger.Flush()
	var metric models.RequestMetric
	if err := env.db.Where("request_id = ?", "req-hit").First(&metric).Error; err != nil {
		t.Fatalf("expected persisted cache-hit metric: %v", err)
	}
	if !metric.CacheHit || metric.Cost != 0 {
		t.Fatalf("expected zero-cost cache hit metric, got %+v", metric)
	}
}

func TestCompletePopulatesCache(t *testing.T) {
	env := newTestEnv(t)
	c := newTestCache(t)
	providers := map[string]llm.Provider{
		"gemini": &mockProvider{},
	}
	wrapped := newCompletionHandler(t, env, c, providers)

	rec := performRequest(wrapped, `{"prompt":"Summarize this paragraph for me please"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	entry := c.Lookup(context.Background(), "Summarize this paragraph for me please")
	if entry == nil {
		t.Fatal("expected completion to be cached")
	}
	if entry.Response != "answer" {
		t.Fatalf("unexpected cached response: %q", entry.Response)
	}
}

func TestCompleteProviderFailure(t *testing.T) {
	env := newTestEnv(t)
	providers := map[string]llm.Provider{
		"gemini": &mockProvider{executeFn: func(context.Context, string, string, int) (*llm.CompletionResult, error) {
			return nil, &llm.ProviderError{Provider: "gemini", Code: llm.ErrCodeServiceDown, Message: "down", Err: errors.New("boom")}
		}},
	}
	wrapped := newCompletionHandler(t, env, nil, providers)

	rec := performRequest(wrapped, `{"prompt":"What is AI?"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on provider failure, got %d", rec.Code)
	}
}

func TestCompleteNoClientForProvider(t *testing.T) {
	env := newTestEnv(t)
	wrapped := newCompletionHandler(t, env, nil, map[string]llm.Provider{})

	rec := performRequest(wrapped, `{"prompt":"What is AI?"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 when no client exists, got %d", rec.Code)
	}
}
