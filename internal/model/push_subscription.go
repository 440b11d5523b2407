package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Sectors []SubscriptionSector `gorm:"foreignKey:Endpoint;references:Endpoint"`
}

// SubscriptionSector records that a subscription wants vacancy alerts for a sector.
type SubscriptionSector struct {
	Endpoint string `gorm:"primaryKey"`
	Sector   Sector `gorm:"primaryKey;size:16"`
}
