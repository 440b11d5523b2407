package persist

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carestay-backend/internal/model"
)

// GormSlot keeps the snapshot in the snapshots table.
type GormSlot struct {
	db  *gorm.DB
	key string
}

// NewGormSlot creates a slot bound to key. An empty key selects DefaultKey.
func NewGormSlot(db *gorm.DB, key string) *GormSlot {
	if key == "" {
		key = DefaultKey
	}
	return &GormSlot{db: db, key: key}
}

func (s *GormSlot) Load(ctx context.Context) ([]byte, error) {
	var row model.Snapshot
	err := s.db.WithContext(ctx).First(&row, "slot_key = ?", s.key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %q: %w", s.key, err)
	}
	return row.Payload, nil
}

func (s *GormSlot) Save(ctx context.Context, payload []byte) error {
	row := model.Snapshot{Key: s.key, Payload: payload}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write snapshot %q: %w", s.key, err)
	}
	return nil
}
