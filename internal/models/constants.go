package models

// Cost/quality tiers assigned by the complexity scorer (in ascending cost order)
const (
	TierFree    = "free"
	TierCheap   = "cheap"
	TierMedium  = "medium"
	TierPremium = "premium"
)

// Query patterns used as the unit of learning aggregation
const (
	PatternCode     = "code"
	PatternCreative = "creative"
	PatternFactual  = "factual"
	PatternAnalysis = "analysis"
	PatternGeneral  = "general"
)

// Qualitative confidence levels on learned performance records
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Strategy attributions recorded on routing decisions
const (
	StrategyComplexity       = "complexity"
	StrategyLearning         = "learning"
	StrategyHybridLearning   = "hybrid-learning"
	StrategyHybridComplexity = "hybrid-complexity"
)

// Quality score bounds for feedback submissions
const (
	MinQualityScore = 1
	MaxQualityScore = 5
)

// contains all valid tiers (in lowercase)
var ValidTiers = map[string]bool{
	TierFree:    true,
	TierCheap:   true,
	TierMedium:  true,
	TierPremium: true,
}

// contains all valid query patterns (in lowercase)
var ValidPatterns = map[string]bool{
	PatternCode:     true,
	PatternCreative: true,
	PatternFactual:  true,
	PatternAnalysis: true,
	PatternGeneral:  true,
}

func ValidTiersList() []string {
	return []string{TierFree, TierCheap, TierMedium, TierPremium}
}

func ValidPatternsList() []string {
	return []string{PatternCode, PatternCreative, PatternFactual, PatternAnalysis, PatternGeneral}
}
