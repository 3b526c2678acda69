package models

import (
	"gorm.io/gorm"
)

// PerformanceSnapshotMeta identifies one published snapshot of learned
// performance statistics. Snapshots are written once and never updated;
// the newest row is the live one.
type PerformanceSnapshotMeta struct {
	gorm.Model
	Version       string `gorm:"uniqueIndex;not null" json:"version"`
	RecordCount   int    `gorm:"not null" json:"record_count"`
	FeedbackCount int    `gorm:"not null" json:"feedback_count"`
}

// PerformanceRow is one learned (pattern, provider, model) aggregate
// belonging to a snapshot version.
type PerformanceRow struct {
	gorm.Model
	Version         string  `gorm:"index;not null" json:"version"`
	Pattern         string  `gorm:"not null" json:"pattern"`
	Provider        string  `gorm:"not null" json:"provider"`
	ModelName       string  `gorm:"not null" json:"model"`
	SampleCount     int     `gorm:"not null" json:"sample_count"`
	MeanQuality     float64 `json:"mean_quality"`
	CorrectnessRate float64 `json:"correctness_rate"`
	MeanCost        float64 `json:"mean_cost"`
	QualityStdDev   float64 `json:"quality_std_dev"`
	ConfidenceLevel string  `gorm:"not null" json:"confidence_level"`
}
