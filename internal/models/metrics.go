package models

import (
	"time"

	"gorm.io/gorm"
)

// RequestMetric is the append-only analytics row written once per request,
// cache hits included. Rows are never mutated or deleted by the service.
type RequestMetric struct {
	gorm.Model
	RequestID  string    `gorm:"index;not null" json:"request_id"`
	Strategy   string    `gorm:"index" json:"strategy"`
	Provider   string    `gorm:"index" json:"provider"`
	ModelName  string    `json:"model"`
	Confidence float64   `json:"confidence"`
	TokensIn   int       `json:"tokens_in"`
	TokensOut  int       `json:"tokens_out"`
	Cost       float64   `json:"cost"`
	CacheHit   bool      `gorm:"index" json:"cache_hit"`
	RecordedAt time.Time `gorm:"not null" json:"recorded_at"`
}
