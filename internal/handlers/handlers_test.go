package handlers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"routeiq/router/internal/config"
	"routeiq/router/internal/feedback"
	"routeiq/router/internal/ledger"
	"routeiq/router/internal/llm"
	"routeiq/router/internal/models"
	"routeiq/router/internal/performance"
	"routeiq/router/internal/routing"
)

type mockProvider struct {
	executeFn func(ctx context.Context, prompt, model string, maxTokens int) (*llm.CompletionResult, error)
	name      string
}

func (m *mockProvider) Execute(ctx context.Context, prompt, model string, maxTokens int) (*llm.CompletionResult, error) {
	if m.executeFn == nil {
		return &llm.CompletionResult{
			Text:      "answer",
			TokensIn:  4,
			TokensOut: 2,
			Cost:      0.0001,
		}, nil
	}
	return m.executeFn(ctx, prompt, model, maxTokens)
}

func (m *mockProvider) GetProviderName() string {
	if m.name == "" {
		return "mock"
	}
	return m.name
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.RoutingDecision{},
		&models.RequestMetric{},
		&models.RoutingFeedback{},
		&models.PerformanceSnapshotMeta{},
		&models.PerformanceRow{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Port:              "8086",
		EnabledProviders:  []string{"gemini", "openai", "anthropic"},
		AutoRouteDefault:  true,
		HybridCostRatio:   3.0,
		RetrainMinSamples: 10,
	}
}

type testEnv struct {
	db       *gorm.DB
	config   *config.Config
	engine   *routing.Engine
	ledger   *ledger.Ledger
	feedback *feedback.Store
	perf     *performance.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	cfg := newTestConfig()

	table, err := routing.LoadTierTable()
	if err != nil {
		t.Fatalf("failed to load tier table: %v", err)
	}

	perf := performance.NewStore(db, zap.NewNop())
	l := ledger.NewLedger(db, table.BaselineCost(100, 1024), zap.NewNop())
	t.Cleanup(l.Flush)

	return &testEnv{
		db:       db,
		config:   cfg,
		engine:   routing.NewEngine(table, perf, cfg.HybridCostRatio, zap.NewNop()),
		ledger:   l,
		feedback: feedback.NewStore(db, zap.NewNop()),
		perf:     perf,
	}
}
