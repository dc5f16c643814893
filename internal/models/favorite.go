package models

import (
	"gorm.io/gorm"
)

// Favorite links a user to a listing they bookmarked
type Favorite struct {
	ID        uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	UserID    string `json:"userId" gorm:"column:user_id;index;not null;uniqueIndex:idx_user_listing"`
	ListingID string `json:"listingId" gorm:"column:listing_id;not null;uniqueIndex:idx_user_listing"`
	gorm.Model
}

// TableName specifies the table name for Favorite Model
func (Favorite) TableName() string {
	return "favorites"
}
