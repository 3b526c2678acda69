package complexity

import (
	"strings"

	"routeiq/router/internal/models"
)

// Score is the deterministic assessment of a single prompt. Identical input
// always produces an identical Score.
type Score struct {
	Value        float64  `json:"value"` // 0 (trivial) to 1 (most complex)
	Tier         string   `json:"tier"`
	Pattern      string   `json:"pattern"`
	TokenCount   int      `json:"token_count"`
	KeywordHits  []string `json:"keyword_hits,omitempty"`
	HasCodeFence bool     `json:"has_code_fence"`
}

// complexityKeywords signal analytical or open-ended work regardless of
// prompt length
var complexityKeywords = []string{
	"explain", "analyze", "analyse", "design", "architecture",
	"refactor", "optimize", "implement", "compare", "prove",
}

var codeKeywords = []string{
	"code", "function", "debug", "compile", "bug", "stack trace",
	"refactor", "implement", "algorithm", "regex", "sql",
}

var creativeKeywords = []string{
	"write a story", "poem", "creative", "imagine", "fiction",
	"brainstorm", "slogan", "lyrics",
}

var analysisKeywords = []string{
	"analyze", "analyse", "analysis", "compare", "evaluate",
	"trade-off", "tradeoff", "pros and cons", "design", "architecture",
}

var factualKeywords = []string{
	"what is", "what are", "who is", "who was", "when did",
	"where is", "define", "definition of", "how many",
}

const (
	longPromptTokens = 40
	shortPromptCap   = 20
)

// Assess scores a prompt. maxTokens is an optional completion-size hint; it
// nudges the numeric score but never the tier rules.
func Assess(prompt string, maxTokens int) Score {
	lower := strings.ToLower(prompt)
	tokens := len(strings.Fields(prompt))

	var hits []string
	for _, kw := range complexityKeywords {
		if containsWord(lower, kw) {
			hits = append(hits, kw)
		}
	}

	hasFence := strings.Contains(prompt, "```") || looksLikeCode(lower)

	// Weighted blend of length, keyword and code signals
	lengthSignal := float64(tokens) / 100.0
	if lengthSignal > 1 {
		lengthSignal = 1
	}
	keywordSignal := float64(len(hits)) / 2.0
	if keywordSignal > 1 {
		keywordSignal = 1
	}
	value := 0.4*lengthSignal + 0.4*keywordSignal
	if hasFence {
		value += 0.2
	}
	if maxTokens > 2048 {
		value += 0.05
	}
	if value > 1 {
		value = 1
	}

	return Score{
		Value:        value,
		Tier:         assignTier(tokens, len(hits), hasFence, value),
		Pattern:      classifyPattern(lower, hasFence),
		TokenCount:   tokens,
		KeywordHits:  hits,
		HasCodeFence: hasFence,
	}
}

// assignTier applies the threshold rules: short keyword-free prompts are
// free, keyword-heavy or long prompts are premium, the rest fall in between.
func assignTier(tokens, keywordHits int, hasFence bool, value float64) string {
	switch {
	case keywordHits >= 2 || (keywordHits >= 1 && tokens > longPromptTokens) || value >= 0.7:
		return models.TierPremium
	case keywordHits == 1 || hasFence || value >= 0.45:
		return models.TierMedium
	case tokens > shortPromptCap || value >= 0.2:
		return models.TierCheap
	default:
		return models.TierFree
	}
}

// classifyPattern labels the prompt with a coarse semantic category.
// Precedence: code, analysis, creative, factual, then general.
func classifyPattern(lower string, hasFence bool) string {
	if hasFence || matchesAny(lower, codeKeywords) {
		return models.PatternCode
	}
	if matchesAny(lower, analysisKeywords) {
		return models.PatternAnalysis
	}
	if matchesAny(lower, creativeKeywords) {
		return models.PatternCreative
	}
	if matchesAny(lower, factualKeywords) {
		return models.PatternFactual
	}
	return models.PatternGeneral
}

func matchesAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if containsWord(lower, kw) {
			return true
		}
	}
	return false
}

// looksLikeCode catches unfenced code-ish content
func looksLikeCode(lower string) bool {
	markers := []string{"func ", "def ", "class ", "import ", "#include", "=> {", "); }"}
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// containsWord checks for the keyword at word boundaries so "design" does
// not match "designated"
func containsWord(prompt, keyword string) bool {
	idx := 0
	for {
		i := strings.Index(prompt[idx:], keyword)
		if i == -1 {
			return false
		}
		start := idx + i
		end := start + len(keyword)
		okBefore := start == 0 || !isWordChar(prompt[start-1])
		okAfter := end >= len(prompt) || !isWordChar(prompt[end])
		if okBefore && okAfter {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}
