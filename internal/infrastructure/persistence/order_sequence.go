package persistence

import (
	"context"
	"time"

	"github.com/pozinox/backend/internal/domain/trade"
	"github.com/pozinox/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderSequence issues per-day order numbers from the order_sequences table.
// The upsert takes a row lock, so concurrent callers never share a value.
type GormOrderSequence struct {
	db *gorm.DB
}

// NewGormOrderSequence creates a new GormOrderSequence
func NewGormOrderSequence(db *gorm.DB) *GormOrderSequence {
	return &GormOrderSequence{db: db}
}

// Next returns the next sequence value for day, starting at 1
func (s *GormOrderSequence) Next(ctx context.Context, day time.Time) (int64, error) {
	key := day.Format("20060102")
	var next int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`INSERT INTO order_sequences (day, last_value, updated_at) VALUES (?, 1, ?)
			 ON CONFLICT (day) DO UPDATE SET last_value = order_sequences.last_value + 1, updated_at = excluded.updated_at`,
			key, time.Now(),
		).Error; err != nil {
			return err
		}
		var seq models.OrderSequenceModel
		if err := tx.First(&seq, "day = ?", key).Error; err != nil {
			return err
		}
		next = seq.LastValue
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// Ensure GormOrderSequence implements OrderSequence
var _ trade.OrderSequence = (*GormOrderSequence)(nil)
