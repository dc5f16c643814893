package models

import (
	"gorm.io/gorm"
)

// Message represents a single chat message inside a conversation
type Message struct {
	ID             string `json:"id" gorm:"primaryKey"`
	ConversationID string `json:"conversationId" gorm:"column:conversation_id;index;not null"`
	SenderID       string `json:"senderId" gorm:"column:sender_id;not null"`
	Content        string `json:"content" gorm:"not null"`
	Read           bool   `json:"read" gorm:"default:false"`
	gorm.Model
}

// TableName specifies the table name for Message Model
func (Message) TableName() string {
	return "messages"
}
