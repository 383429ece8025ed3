package model

import "time"

// Listing represents one hotel submission owned by a merchant.
type Listing struct {
	ID         int64 `gorm:"primaryKey" json:"id"`
	MerchantID int64 `gorm:"index;not null" json:"merchant_id"`

	Name        string  `gorm:"size:255;not null" json:"name"`
	City        string  `gorm:"size:128;not null" json:"city"`
	Address     string  `gorm:"type:text;not null" json:"address"`
	Phone       string  `gorm:"size:50" json:"phone"`
	Price       float64 `json:"price"`
	StarLevel   int     `json:"star_level"`
	Tags        string  `gorm:"size:512" json:"tags"` // comma-delimited set, see internal/parse
	ImageURL    string  `gorm:"size:512" json:"image_url"`
	Description string  `gorm:"type:text" json:"description"`

	Status ListingStatus `gorm:"not null;index" json:"status"`
	// Cancellation is the admin's reason for the last reject/offline action.
	// It is nil in Pending/Published and non-nil (possibly "") otherwise.
	Cancellation *string `json:"cancellation"`
	// Version is the optimistic lock: every guarded write increments it, so
	// an operation validated against a stale read loses its compare-and-set
	// even when the status happens to match again.
	Version int64 `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"create_time"`
	UpdatedAt time.Time `gorm:"not null" json:"update_time"`

	// Associations
	RoomTypes []RoomType `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"room_types"`
}
