package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"marketplace-api/internal/cache"
	"marketplace-api/internal/database"
	"marketplace-api/internal/models"
	"marketplace-api/internal/realtime"

	"github.com/gin-gonic/gin"
)

// SendMessageRequest represents the request payload for sending a message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// MessageHandler serves the message endpoints of a conversation.
type MessageHandler struct {
	cache cache.Cache
	hub   *realtime.Hub
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(c cache.Cache, hub *realtime.Hub) *MessageHandler {
	return &MessageHandler{cache: c, hub: hub}
}

// GetMessages handles GET /api/conversations/:id/messages
// Returns a conversation's messages, oldest first. Only participants may read.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	conversationID := c.Param("id")
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Conversation ID is required"})
		return
	}

	if _, ok := loadConversationForParticipant(c, conversationID, userID); !ok {
		return
	}

	key := cache.MessagesKey(conversationID)
	if cached, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	var messages []models.Message
	err := database.GetDB().
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	payload := gin.H{
		"messages": messages,
		"count":    len(messages),
	}
	h.cache.Set(key, payload)
	c.JSON(http.StatusOK, payload)
}

/*
*
SendMessage handles POST /api/conversations/:id/messages
Persists the message, bumps the conversation's last-activity timestamp,
invalidates the conversation's message cache plus both participants'
conversation-list caches (their ordering changed), and notifies connected
participants over websocket.
*/
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	conversationID := c.Param("id")
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Conversation ID is required"})
		return
	}

	conversation, ok := loadConversationForParticipant(c, conversationID, userID)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message := models.Message{
		ID:             fmt.Sprintf("msg-%d", time.Now().UnixNano()),
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        req.Content,
	}
	if err := database.GetDB().Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	if err := database.GetDB().Model(conversation).Update("last_message_at", time.Now()).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update conversation"})
		return
	}

	h.cache.Delete(cache.MessagesKey(conversationID))
	h.cache.Delete(cache.ConversationKey(conversationID))
	h.cache.Delete(cache.ConversationsKey(conversation.BuyerID))
	h.cache.Delete(cache.ConversationsKey(conversation.SellerID))

	// Notify both participants' open connections
	evt := map[string]any{
		"type":           "message_created",
		"conversationId": conversationID,
		"messageId":      message.ID,
		"senderId":       userID,
	}
	if bytes, err := json.Marshal(evt); err == nil {
		h.hub.Broadcast(conversation.BuyerID, bytes)
		h.hub.Broadcast(conversation.SellerID, bytes)
	}

	c.JSON(http.StatusCreated, message)
}
