package models

import (
	"fmt"
	"strings"
)

const (
	// MaxPromptLength bounds the accepted prompt size to keep scoring cheap
	MaxPromptLength = 32768
	// MaxTokensCeiling is the largest completion budget a caller may request
	MaxTokensCeiling = 65536
)

// RouteRequest is the body for route, explain and completion calls
type RouteRequest struct {
	Prompt    string  `json:"prompt"`
	AutoRoute *bool   `json:"auto_route,omitempty"` // nil = server default
	MaxTokens int     `json:"max_tokens,omitempty"`
	Budget    float64 `json:"budget,omitempty"` // USD ceiling per request, 0 = unlimited
	Provider  string  `json:"provider,omitempty"`
	ModelName string  `json:"model,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
}

// implements the Validator interface
func (r *RouteRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return &ErrorResponse{Code: "missing_prompt", Message: "prompt is required"}
	}
	if len(r.Prompt) > MaxPromptLength {
		return &ErrorResponse{Code: "prompt_too_long", Message: fmt.Sprintf("prompt must not exceed %d characters", MaxPromptLength)}
	}
	if r.MaxTokens < 0 || r.MaxTokens > MaxTokensCeiling {
		return &ErrorResponse{Code: "invalid_max_tokens", Message: fmt.Sprintf("max_tokens must be between 0 and %d", MaxTokensCeiling)}
	}
	if r.Budget < 0 {
		return &ErrorResponse{Code: "invalid_budget", Message: "budget must not be negative"}
	}
	if r.ModelName != "" && r.Provider == "" {
		return &ErrorResponse{Code: "missing_provider", Message: "provider is required when model is forced"}
	}
	return nil
}

// FeedbackRequest is the body for feedback submissions; the request id being
// rated comes from the URL
type FeedbackRequest struct {
	QualityScore int    `json:"quality_score"`
	Correct      bool   `json:"correct"`
	Helpful      bool   `json:"helpful"`
	Comment      string `json:"comment,omitempty"`
}

func (r *FeedbackRequest) Validate() error {
	if r.QualityScore < MinQualityScore || r.QualityScore > MaxQualityScore {
		return &ErrorResponse{
			Code:    "invalid_quality_score",
			Message: fmt.Sprintf("quality_score must be between %d and %d", MinQualityScore, MaxQualityScore),
		}
	}
	return nil
}

// RetrainRequest triggers a retraining run
type RetrainRequest struct {
	DryRun     bool `json:"dry_run,omitempty"`
	MinSamples int  `json:"min_samples,omitempty"` // 0 = server default
}

func (r *RetrainRequest) Validate() error {
	if r.MinSamples < 0 {
		return &ErrorResponse{Code: "invalid_min_samples", Message: "min_samples must not be negative"}
	}
	return nil
}
