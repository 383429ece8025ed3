package model

import "time"

// PushSubscription holds a merchant's browser push subscription, used to
// deliver moderation decisions.
type PushSubscription struct {
	Endpoint   string    `gorm:"primaryKey"`
	MerchantID int64     `gorm:"index;not null"`
	P256DH     string    `gorm:"column:p256dh;not null"`
	Auth       string    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}
