package models

import (
	"time"

	"gorm.io/gorm"
)

// RoutingFeedback stores user-submitted outcome quality for a prior routing
// decision. Pattern/provider/model are denormalized from the decision at
// submission time so retraining can aggregate without joins on every group.
// Note: user IDs are intentionally excluded for privacy.
type RoutingFeedback struct {
	gorm.Model
	RequestID    string    `gorm:"uniqueIndex;not null" json:"request_id"`
	QualityScore int       `gorm:"not null" json:"quality_score"` // 1 (poor) to 5 (excellent)
	Correct      bool      `gorm:"not null" json:"correct"`
	Helpful      bool      `gorm:"not null" json:"helpful"`
	Comment      string    `gorm:"type:text" json:"comment,omitempty"`
	Pattern      string    `gorm:"not null;index" json:"pattern"`
	Provider     string    `gorm:"not null" json:"provider"`
	ModelName    string    `gorm:"not null" json:"model"`
	SubmittedAt  time.Time `gorm:"not null" json:"submitted_at"`
}
