package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"routeiq/router/internal/cache"
	"routeiq/router/internal/config"
	"routeiq/router/internal/feedback"
	"routeiq/router/internal/handlers"
	"routeiq/router/internal/jobs"
	"routeiq/router/internal/ledger"
	"routeiq/router/internal/llm"
	_ "routeiq/router/internal/llm/gemini"
	"routeiq/router/internal/metrics"
	"routeiq/router/internal/models"
	"routeiq/router/internal/performance"
	"routeiq/router/internal/routers"
	"routeiq/router/internal/routing"
)

func registerRoutes(router *chi.Mux, routeHandler *handlers.RouteHandler, completionHandler *handlers.CompletionHandler, feedbackHandler *handlers.FeedbackHandler, analyticsHandler *handlers.AnalyticsHandler, retrainHandler *handlers.RetrainHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.RouterRoutes(router, routeHandler, completionHandler, feedbackHandler, analyticsHandler, retrainHandler)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// initDatabase initializes the PostgreSQL database connection
func initDatabase() (*gorm.DB, error) {
	host := getEnv("POSTGRES_HOST", "localhost")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "postgres")
	dbname := getEnv("POSTGRES_DB", "postgres")
	port := getEnv("POSTGRES_PORT", "5432")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.RoutingDecision{},
		&models.RequestMetric{},
		&models.RoutingFeedback{},
		&models.PerformanceSnapshotMeta{},
		&models.PerformanceRow{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.Strings("providers", cfg.EnabledProviders),
		zap.Bool("auto_route_default", cfg.AutoRouteDefault),
		zap.Float64("hybrid_cost_ratio", cfg.HybridCostRatio))

	db, err := initDatabase()
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	table, err := routing.LoadTierTable()
	if err != nil {
		logger.Fatal("Failed to load tier table", zap.Error(err))
	}

	perfStore := performance.NewStore(db, logger)
	if err := perfStore.LoadLatest(); err != nil {
		logger.Warn("Failed to load latest performance snapshot, starting unlearned", zap.Error(err))
	}

	engine := routing.NewEngine(table, perfStore, cfg.HybridCostRatio, logger)
	metricsLedger := ledger.NewLedger(db, table.BaselineCost(100, 1024), logger)
	feedbackStore := feedback.NewStore(db, logger)

	// LLM clients for the enabled providers. A provider that fails to
	// initialize stays routable but cannot serve completions.
	providers := make(map[string]llm.Provider)
	for _, name := range cfg.EnabledProviders {
		provider, err := llm.NewProvider(name)
		if err != nil {
			logger.Warn("Failed to initialize provider client", zap.String("provider", name), zap.Error(err))
			continue
		}
		providers[name] = provider
	}
	if len(providers) == 0 {
		logger.Fatal("No LLM provider clients available")
	}

	var responseCache *cache.ResponseCache
	if cfg.CacheEnabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unreachable, response cache disabled", zap.Error(err))
		} else {
			responseCache = cache.NewResponseCache(rdb, cfg.CacheTTL, logger)
			logger.Info("Response cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
		}
	}

	retrainer := jobs.NewRetrainer(feedbackStore, perfStore, &jobs.RetrainerConfig{
		Schedule:   cfg.RetrainSchedule,
		Enabled:    cfg.RetrainEnabled,
		MinSamples: cfg.RetrainMinSamples,
	}, logger)
	if cfg.RetrainEnabled {
		if err := retrainer.Start(); err != nil {
			logger.Error("Failed to start retraining job", zap.Error(err))
		} else {
			logger.Info("Retraining job started", zap.String("schedule", cfg.RetrainSchedule))
		}
	}

	routeHandler := handlers.NewRouteHandler(engine, metricsLedger, cfg, logger)
	completionHandler := handlers.NewCompletionHandler(engine, metricsLedger, responseCache, providers, cfg, logger)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackStore, logger)
	analyticsHandler := handlers.NewAnalyticsHandler(metricsLedger, logger)
	retrainHandler := handlers.NewRetrainHandler(retrainer, logger)
	healthHandler := handlers.NewHealthHandler(db, engine, providers, cfg)

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware("router"))

	registerRoutes(router, routeHandler, completionHandler, feedbackHandler, analyticsHandler, retrainHandler, healthHandler)

	serverAddr := ":" + cfg.Port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Router service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Router service shutting down...")

	retrainer.Stop()
	metricsLedger.Flush()

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Router service exited")
}
