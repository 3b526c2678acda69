package utils

import "strings"

// NormalizePrompt lowercases, trims, and collapses internal whitespace so
// that trivially reformatted prompts share a cache key.
func NormalizePrompt(prompt string) string {
	return strings.Join(strings.Fields(strings.ToLower(prompt)), " ")
}

func NormalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}
