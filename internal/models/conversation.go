package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation represents a buyer-seller chat thread about one listing
type Conversation struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	ListingID     string    `json:"listingId" gorm:"column:listing_id;index;not null"`
	BuyerID       string    `json:"buyerId" gorm:"column:buyer_id;index;not null"`
	SellerID      string    `json:"sellerId" gorm:"column:seller_id;index;not null"`
	LastMessageAt time.Time `json:"lastMessageAt" gorm:"column:last_message_at"`
	gorm.Model
}

// TableName specifies the table name for Conversation Model
func (Conversation) TableName() string {
	return "conversations"
}

// HasParticipant reports whether the given user is the buyer or seller.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.BuyerID == userID || c.SellerID == userID
}
