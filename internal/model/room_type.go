package model

import "time"

// RoomType is one bookable room category of a listing. It has no lifecycle of
// its own: the rows are replaced together with the parent listing's content.
type RoomType struct {
	ID        int64 `gorm:"primaryKey" json:"id"`
	ListingID int64 `gorm:"index;not null" json:"listing_id"`

	Name        string  `gorm:"size:255;not null" json:"name"`
	Price       float64 `gorm:"not null" json:"price"`
	Description string  `gorm:"type:text" json:"description"`
	ImageURL    string  `gorm:"size:512" json:"image_url"`

	CreatedAt time.Time `json:"create_time"`
	UpdatedAt time.Time `json:"update_time"`
}
