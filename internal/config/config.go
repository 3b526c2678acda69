package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"routeiq/router/internal/llm"
)

// app config loaded from environment variables
type Config struct {
	Port string

	// Providers eligible for routing, in no particular order
	EnabledProviders []string
	// Whether /route picks a strategy adaptively when the request is silent
	AutoRouteDefault bool
	// Learned picks costing more than this multiple of the complexity
	// baseline fall back to the baseline
	HybridCostRatio float64

	DatabaseURL string

	CacheEnabled bool
	RedisAddr    string
	CacheTTL     time.Duration

	RetrainEnabled    bool
	RetrainSchedule   string
	RetrainMinSamples int
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Port:              getEnvOrDefault("PORT", "8086"),
		EnabledProviders:  splitList(getEnvOrDefault("ENABLED_PROVIDERS", "gemini,mock")),
		AutoRouteDefault:  getEnvBool("AUTO_ROUTE_DEFAULT", true),
		HybridCostRatio:   getEnvFloat("HYBRID_COST_RATIO", 3.0),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		CacheEnabled:      getEnvBool("CACHE_ENABLED", false),
		RedisAddr:         getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		CacheTTL:          getEnvDuration("CACHE_TTL", time.Hour),
		RetrainEnabled:    getEnvBool("RETRAIN_ENABLED", true),
		RetrainSchedule:   getEnvOrDefault("RETRAIN_SCHEDULE", "@hourly"),
		RetrainMinSamples: getEnvInt("RETRAIN_MIN_SAMPLES", 10),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if len(config.EnabledProviders) == 0 {
		return errors.New("ENABLED_PROVIDERS must name at least one provider")
	}
	for _, name := range config.EnabledProviders {
		if !llm.Registered(name) {
			return errors.New("unsupported provider: " + name)
		}
	}
	if config.HybridCostRatio < 1.0 {
		return errors.New("HYBRID_COST_RATIO must be at least 1.0")
	}
	if config.RetrainMinSamples < 1 {
		return errors.New("RETRAIN_MIN_SAMPLES must be at least 1")
	}
	return nil
}

// EnabledSet returns the enabled providers as a lookup map for routing.
func (c *Config) EnabledSet() map[string]bool {
	set := make(map[string]bool, len(c.EnabledProviders))
	for _, name := range c.EnabledProviders {
		set[name] = true
	}
	return set
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
