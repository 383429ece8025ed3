package model

import "time"

// Merchant holds the display information for a listing owner. Identity comes
// from the auth token; this row only exists so the moderation queue can show
// a name next to each pending listing.
type Merchant struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	DisplayName string    `gorm:"size:128;not null" json:"display_name"`
	CreatedAt   time.Time `gorm:"not null" json:"create_time"`
	UpdatedAt   time.Time `gorm:"not null" json:"update_time"`

	// Associations
	Listings []Listing `gorm:"foreignKey:MerchantID" json:"-"`
}
