package llm

import (
	"context"
	"strings"
)

// MockProvider returns deterministic responses for local runs and tests.
// It never fails and charges a fixed per-token cost.
type MockProvider struct {
	Response  string
	CostPer1K float64
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		Response:  "mock completion",
		CostPer1K: 0.0001,
	}
}

func (m *MockProvider) Execute(ctx context.Context, prompt, model string, maxTokens int) (*CompletionResult, error) {
	tokensIn := len(strings.Fields(prompt))
	tokensOut := len(strings.Fields(m.Response))
	return &CompletionResult{
		Text:      m.Response,
		TokensIn:  tokensIn,
		TokensOut: tokensOut,
		Cost:      float64(tokensIn+tokensOut) / 1000.0 * m.CostPer1K,
	}, nil
}

func (m *MockProvider) GetProviderName() string {
	return "mock"
}

func init() {
	RegisterProvider("mock", func() (Provider, error) {
		return NewMockProvider(), nil
	})
}
