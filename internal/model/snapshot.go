package model

import "time"

// Snapshot is the durable key/value row holding a serialized store state.
type Snapshot struct {
	Key       string    `gorm:"column:slot_key;primaryKey;size:128"`
	Payload   []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
