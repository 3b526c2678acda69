package gemini

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"routeiq/router/internal/llm"
)

// Client represents a Gemini LLM client

type Client struct {
	client *genai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	return &Client{
		client: client,
		config: config,
	}, nil
}

func (c *Client) Execute(ctx context.Context, prompt, model string, maxTokens int) (*llm.CompletionResult, error) {
	var genConfig *genai.GenerateContentConfig
	if maxTokens > 0 {
		genConfig = &genai.GenerateContentConfig{
			MaxOutputTokens: int32(maxTokens),
		}
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		model,
		genai.Text(prompt),
		genConfig,
	)
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeServiceDown,
			Message:  "Failed to generate completion",
			Err:      err,
		}
	}

	if result == nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "No response generated",
		}
	}

	text := result.Text()
	if text == "" {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}

	tokensIn, tokensOut := usageTokens(result, prompt, text)

	return &llm.CompletionResult{
		Text:      text,
		TokensIn:  tokensIn,
		TokensOut: tokensOut,
		Cost: float64(tokensIn)/1000.0*c.config.PromptPer1K +
			float64(tokensOut)/1000.0*c.config.CompletionPer1K,
	}, nil
}

// usageTokens reads the API usage metadata, falling back to whitespace
// token counts when the metadata is absent.
func usageTokens(result *genai.GenerateContentResponse, prompt, text string) (int, int) {
	if result.UsageMetadata != nil {
		return int(result.UsageMetadata.PromptTokenCount), int(result.UsageMetadata.CandidatesTokenCount)
	}
	return len(strings.Fields(prompt)), len(strings.Fields(text))
}

func (c *Client) GetProviderName() string {
	return "gemini"
}
