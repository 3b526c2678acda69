package llm

import (
	"context"
)

// CompletionResult is the uniform outcome of executing a completion
// against any provider.
type CompletionResult struct {
	Text      string
	TokensIn  int
	TokensOut int
	Cost      float64 // USD
}

// defines the interface for LLM providers
type Provider interface {
	Execute(ctx context.Context, prompt, model string, maxTokens int) (*CompletionResult, error)
	GetProviderName() string
}

// represents an error from an LLM provider. The routing core treats any
// provider failure as "this candidate is unavailable" and never inspects
// the code beyond logging.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
// For current and future use across different providers
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
)
