package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"marketplace-api/internal/auth"
	"marketplace-api/internal/cache"
	"marketplace-api/internal/database"
	"marketplace-api/internal/middleware"
	"marketplace-api/internal/models"
	"marketplace-api/internal/realtime"
	"marketplace-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupChatRouter(t *testing.T) (*gin.Engine, *cache.ResponseCache, *realtime.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	respCache := cache.New(cache.Config{TTL: time.Minute})
	hub := realtime.NewHub()
	ch := NewConversationHandler(respCache)
	mh := NewMessageHandler(respCache, hub)

	r := gin.New()
	r.Use(middleware.JWTAuthMiddleware())
	r.GET("/api/conversations", ch.GetConversations)
	r.GET("/api/conversations/:id", ch.GetConversationByID)
	r.POST("/api/conversations", ch.CreateConversation)
	r.GET("/api/conversations/:id/messages", mh.GetMessages)
	r.POST("/api/conversations/:id/messages", mh.SendMessage)

	return r, respCache, hub
}

func seedConversation(t *testing.T, id, listingID, buyerID, sellerID string) {
	t.Helper()
	require.NoError(t, database.GetDB().Create(&models.Conversation{
		ID: id, ListingID: listingID, BuyerID: buyerID, SellerID: sellerID,
		LastMessageAt: time.Now(),
	}).Error)
}

// recordingClient captures hub broadcasts for assertions.
type recordingClient struct {
	messages [][]byte
}

func (c *recordingClient) Send(message []byte) bool {
	c.messages = append(c.messages, message)
	return true
}

func (c *recordingClient) Close() {}

func TestSendMessage_InvalidatesMessageAndConversationCaches(t *testing.T) {
	r, respCache, _ := setupChatRouter(t)
	seedUser(t, "u-1", "alice")
	seedUser(t, "u-2", "bob")
	seedListing(t, "l-1", "u-2", models.CategoryVehicle, "Car")
	seedConversation(t, "c-123", "l-1", "u-1", "u-2")

	tokenBuyer, _ := auth.GenerateToken("u-1", "alice")
	tokenSeller, _ := auth.GenerateToken("u-2", "bob")

	// populate all three cache entries
	w := doJSON(t, r, http.MethodGet, "/api/conversations/c-123/messages", tokenBuyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodGet, "/api/conversations", tokenBuyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodGet, "/api/conversations", tokenSeller, nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, ok := respCache.Get(cache.MessagesKey("c-123"))
	require.True(t, ok)
	_, ok = respCache.Get(cache.ConversationsKey("u-1"))
	require.True(t, ok)
	_, ok = respCache.Get(cache.ConversationsKey("u-2"))
	require.True(t, ok)

	// sending a message drops all three entries
	w = doJSON(t, r, http.MethodPost, "/api/conversations/c-123/messages", tokenBuyer,
		map[string]string{"content": "Is it still available?"})
	require.Equal(t, http.StatusCreated, w.Code)

	_, ok = respCache.Get(cache.MessagesKey("c-123"))
	require.False(t, ok)
	_, ok = respCache.Get(cache.ConversationsKey("u-1"))
	require.False(t, ok)
	_, ok = respCache.Get(cache.ConversationsKey("u-2"))
	require.False(t, ok)

	// the next read bypasses the dropped cache and sees the new message
	w = doJSON(t, r, http.MethodGet, "/api/conversations/c-123/messages", tokenSeller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Messages []models.Message `json:"messages"`
		Count    int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	require.Equal(t, "Is it still available?", resp.Messages[0].Content)
}

func TestSendMessage_NotifiesParticipants(t *testing.T) {
	r, _, hub := setupChatRouter(t)
	seedUser(t, "u-1", "alice")
	seedUser(t, "u-2", "bob")
	seedListing(t, "l-1", "u-2", models.CategoryVehicle, "Car")
	seedConversation(t, "c-123", "l-1", "u-1", "u-2")

	seller := &recordingClient{}
	hub.Register("u-2", seller)

	token, _ := auth.GenerateToken("u-1", "alice")
	w := doJSON(t, r, http.MethodPost, "/api/conversations/c-123/messages", token,
		map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, seller.messages, 1)
	var evt map[string]any
	require.NoError(t, json.Unmarshal(seller.messages[0], &evt))
	require.Equal(t, "message_created", evt["type"])
	require.Equal(t, "c-123", evt["conversationId"])
}

func TestGetMessages_NonParticipantForbidden(t *testing.T) {
	r, _, _ := setupChatRouter(t)
	seedUser(t, "u-1", "alice")
	seedUser(t, "u-2", "bob")
	seedUser(t, "u-3", "carol")
	seedListing(t, "l-1", "u-2", models.CategoryVehicle, "Car")
	seedConversation(t, "c-123", "l-1", "u-1", "u-2")

	token, _ := auth.GenerateToken("u-3", "carol")
	w := doJSON(t, r, http.MethodGet, "/api/conversations/c-123/messages", token, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetConversationByID_CachedHitStillChecksParticipant(t *testing.T) {
	r, respCache, _ := setupChatRouter(t)
	seedUser(t, "u-1", "alice")
	seedUser(t, "u-2", "bob")
	seedUser(t, "u-3", "carol")
	seedListing(t, "l-1", "u-2", models.CategoryVehicle, "Car")
	seedConversation(t, "c-123", "l-1", "u-1", "u-2")

	// warm the cache as a participant
	tokenBuyer, _ := auth.GenerateToken("u-1", "alice")
	w := doJSON(t, r, http.MethodGet, "/api/conversations/c-123", tokenBuyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, ok := respCache.Get(cache.ConversationKey("c-123"))
	require.True(t, ok)

	// a cached entry must not leak to an outsider
	tokenOutsider, _ := auth.GenerateToken("u-3", "carol")
	w = doJSON(t, r, http.MethodGet, "/api/conversations/c-123", tokenOutsider, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetConversationByID_ForeignCachedValueNotServed(t *testing.T) {
	r, respCache, _ := setupChatRouter(t)
	seedUser(t, "u-1", "alice")
	seedUser(t, "u-2", "bob")
	seedUser(t, "u-3", "carol")
	seedListing(t, "l-1", "u-2", models.CategoryVehicle, "Car")
	seedConversation(t, "c-123", "l-1", "u-1", "u-2")

	// an unexpected value type under the key is recomputed, never echoed
	respCache.Set(cache.ConversationKey("c-123"), gin.H{"secret": "data"})

	tokenOutsider, _ := auth.GenerateToken("u-3", "carol")
	w := doJSON(t, r, http.MethodGet, "/api/conversations/c-123", tokenOutsider, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.NotContains(t, w.Body.String(), "secret")

	tokenBuyer, _ := auth.GenerateToken("u-1", "alice")
	w = doJSON(t, r, http.MethodGet, "/api/conversations/c-123", tokenBuyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var conv models.Conversation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conv))
	require.Equal(t, "c-123", conv.ID)
}

func TestCreateConversation_InvalidatesBothParticipantLists(t *testing.T) {
	r, respCache, _ := setupChatRouter(t)
	seedUser(t, "u-1", "alice")
	seedUser(t, "u-2", "bob")
	seedListing(t, "l-1", "u-2", models.CategoryVehicle, "Car")

	tokenBuyer, _ := auth.GenerateToken("u-1", "alice")
	tokenSeller, _ := auth.GenerateToken("u-2", "bob")

	// populate both conversation-list entries (empty lists)
	w := doJSON(t, r, http.MethodGet, "/api/conversations", tokenBuyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodGet, "/api/conversations", tokenSeller, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/conversations", tokenBuyer,
		map[string]string{"listingId": "l-1"})
	require.Equal(t, http.StatusCreated, w.Code)

	_, ok := respCache.Get(cache.ConversationsKey("u-1"))
	require.False(t, ok)
	_, ok = respCache.Get(cache.ConversationsKey("u-2"))
	require.False(t, ok)

	// both participants now see the thread
	w = doJSON(t, r, http.MethodGet, "/api/conversations", tokenSeller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
}

func TestCreateConversation_ReusesExistingThread(t *testing.T) {
	r, _, _ := setupChatRouter(t)
	seedUser(t, "u-1", "alice")
	seedUser(t, "u-2", "bob")
	seedListing(t, "l-1", "u-2", models.CategoryVehicle, "Car")

	token, _ := auth.GenerateToken("u-1", "alice")

	w := doJSON(t, r, http.MethodPost, "/api/conversations", token, map[string]string{"listingId": "l-1"})
	require.Equal(t, http.StatusCreated, w.Code)
	var first models.Conversation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = doJSON(t, r, http.MethodPost, "/api/conversations", token, map[string]string{"listingId": "l-1"})
	require.Equal(t, http.StatusOK, w.Code)
	var second models.Conversation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	require.Equal(t, first.ID, second.ID)
}

func TestCreateConversation_OwnListingRejected(t *testing.T) {
	r, _, _ := setupChatRouter(t)
	seedUser(t, "u-1", "alice")
	seedListing(t, "l-1", "u-1", models.CategoryVehicle, "Car")

	token, _ := auth.GenerateToken("u-1", "alice")
	w := doJSON(t, r, http.MethodPost, "/api/conversations", token, map[string]string{"listingId": "l-1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
