package performance

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"routeiq/router/internal/models"
)

// Store owns the current snapshot pointer and its durable copy. Routing
// reads the pointer lock-free; only retraining publishes a replacement.
type Store struct {
	db      *gorm.DB
	logger  *zap.Logger
	current atomic.Pointer[Snapshot]
}

func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Current returns the live snapshot, or nil when nothing has been published.
// The returned snapshot is immutable and safe to read from any goroutine.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// LoadLatest restores the most recently published snapshot from the
// database. A store with no published snapshot is not an error.
func (s *Store) LoadLatest() error {
	var meta models.PerformanceSnapshotMeta
	err := s.db.Order("created_at DESC").First(&meta).Error
	if err == gorm.ErrRecordNotFound {
		s.logger.Info("no performance snapshot published yet")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load snapshot metadata: %w", err)
	}

	var rows []models.PerformanceRow
	if err := s.db.Where("version = ?", meta.Version).Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to load snapshot %s: %w", meta.Version, err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{
			Pattern:         row.Pattern,
			Provider:        row.Provider,
			ModelName:       row.ModelName,
			SampleCount:     row.SampleCount,
			MeanQuality:     row.MeanQuality,
			CorrectnessRate: row.CorrectnessRate,
			MeanCost:        row.MeanCost,
			QualityStdDev:   row.QualityStdDev,
			Confidence:      row.ConfidenceLevel,
		})
	}

	snap := NewSnapshot(meta.Version, meta.CreatedAt, records)
	s.current.Store(snap)
	s.logger.Info("performance snapshot restored",
		zap.String("version", snap.Version),
		zap.Int("records", snap.Len()))
	return nil
}

// Publish persists a snapshot and then swaps the live pointer. The database
// write happens in one transaction so a failed publish leaves both the
// stored and the in-memory state untouched.
func (s *Store) Publish(snap *Snapshot, feedbackCount int) error {
	if snap == nil {
		return fmt.Errorf("cannot publish nil snapshot")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		meta := models.PerformanceSnapshotMeta{
			Version:       snap.Version,
			RecordCount:   snap.Len(),
			FeedbackCount: feedbackCount,
		}
		if err := tx.Create(&meta).Error; err != nil {
			return err
		}
		for _, r := range snap.All() {
			row := models.PerformanceRow{
				Version:         snap.Version,
				Pattern:         r.Pattern,
				Provider:        r.Provider,
				ModelName:       r.ModelName,
				SampleCount:     r.SampleCount,
				MeanQuality:     r.MeanQuality,
				CorrectnessRate: r.CorrectnessRate,
				MeanCost:        r.MeanCost,
				QualityStdDev:   r.QualityStdDev,
				ConfidenceLevel: r.Confidence,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to persist snapshot %s: %w", snap.Version, err)
	}

	s.current.Store(snap)
	s.logger.Info("performance snapshot published",
		zap.String("version", snap.Version),
		zap.Int("records", snap.Len()),
		zap.Time("created_at", snap.CreatedAt))
	return nil
}
