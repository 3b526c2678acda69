package gemini

import (
	"errors"
	"os"
	"strconv"
)

// holds Gemini-specific configuration
type Config struct {
	APIKey          string
	PromptPer1K     float64
	CompletionPer1K float64
}

func NewConfig() (*Config, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}

	return &Config{
		APIKey:          apiKey,
		PromptPer1K:     envFloat("GEMINI_PROMPT_PER_1K", 0.0003),
		CompletionPer1K: envFloat("GEMINI_COMPLETION_PER_1K", 0.0025),
	}, nil
}

func envFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
