package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"marketplace-api/internal/cache"
	"marketplace-api/internal/database"
	"marketplace-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateConversationRequest represents the request payload for starting a chat
type CreateConversationRequest struct {
	ListingID string `json:"listingId" binding:"required"`
}

// ConversationHandler serves the conversation endpoints.
type ConversationHandler struct {
	cache cache.Cache
}

// NewConversationHandler constructs a ConversationHandler.
func NewConversationHandler(c cache.Cache) *ConversationHandler {
	return &ConversationHandler{cache: c}
}

/*
*
GetConversations handles GET /api/conversations
Returns the authenticated user's conversations, most recently active first.
*/
func (h *ConversationHandler) GetConversations(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	key := cache.ConversationsKey(userID)
	if cached, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	var conversations []models.Conversation
	err := database.GetDB().
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("last_message_at desc").
		Find(&conversations).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}

	payload := gin.H{
		"conversations": conversations,
		"count":         len(conversations),
	}
	h.cache.Set(key, payload)
	c.JSON(http.StatusOK, payload)
}

// GetConversationByID handles GET /api/conversations/:id
// Only participants may read a conversation.
func (h *ConversationHandler) GetConversationByID(c *gin.Context) {
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

	// A cached hit is only served when the participant check can actually
	// run against it; anything else under the key is treated as a miss and
	// recomputed from the database.
	key := cache.ConversationKey(conversationID)
	if cached, ok := h.cache.Get(key); ok {
		if conv, ok := cached.(*models.Conversation); ok {
			if !conv.HasParticipant(userID) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this conversation"})
				return
			}
			c.JSON(http.StatusOK, conv)
			return
		}
	}

	conversation, ok := loadConversationForParticipant(c, conversationID, userID)
	if !ok {
		return
	}

	h.cache.Set(key, conversation)
	c.JSON(http.StatusOK, conversation)
}

/*
*
CreateConversation handles POST /api/conversations
Starts a conversation between the authenticated user (buyer) and the
listing's owner (seller). Both participants' cached conversation lists
are invalidated.
*/
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var listing models.Listing
	if err := database.GetDB().Where("id = ?", req.ListingID).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Listing not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listing"})
		}
		return
	}

	if listing.UserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot start a conversation about your own listing"})
		return
	}

	// Reuse an existing thread for the same buyer and listing
	var existing models.Conversation
	err := database.GetDB().
		Where("listing_id = ? AND buyer_id = ?", req.ListingID, userID).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, existing)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing conversation"})
		return
	}

	conversation := models.Conversation{
		ID:            fmt.Sprintf("conv-%d", time.Now().UnixNano()),
		ListingID:     req.ListingID,
		BuyerID:       userID,
		SellerID:      listing.UserID,
		LastMessageAt: time.Now(),
	}
	if err := database.GetDB().Create(&conversation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}

	h.cache.Delete(cache.ConversationsKey(conversation.BuyerID))
	h.cache.Delete(cache.ConversationsKey(conversation.SellerID))

	c.JSON(http.StatusCreated, conversation)
}

// loadConversationForParticipant fetches a conversation and enforces that
// the user is one of its two participants, writing the error response
// itself when not.
func loadConversationForParticipant(c *gin.Context, conversationID, userID string) (*models.Conversation, bool) {
	var conversation models.Conversation
	result := database.GetDB().Where("id = ?", conversationID).First(&conversation)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		}
		return nil, false
	}
	if !conversation.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this conversation"})
		return nil, false
	}
	return &conversation, true
}
