package model

import "time"

// PushSubscription holds the information for a browser push subscription
// registered by a resort guest.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	ClientUID string    `gorm:"column:client_uid;size:128;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}
