package models

import (
	"gorm.io/gorm"
)

// RoutingDecision persists the outcome of a single routing call so that
// feedback submitted later can be validated against it
type RoutingDecision struct {
	gorm.Model
	RequestID       string  `gorm:"uniqueIndex;not null" json:"request_id"`
	Provider        string  `gorm:"not null" json:"provider"`
	ModelName       string  `gorm:"not null" json:"model"`
	Strategy        string  `gorm:"not null;index" json:"strategy"`
	Confidence      float64 `json:"confidence"`
	Reasoning       string  `gorm:"type:text" json:"reasoning"`
	EstimatedCost   float64 `json:"estimated_cost"`
	ComplexityScore float64 `json:"complexity_score"`
	Tier            string  `json:"tier"`
	Pattern         string  `gorm:"index" json:"pattern"`
	SnapshotVersion string  `json:"snapshot_version"`
}
