package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"marketplace-api/internal/cache"
	"marketplace-api/internal/database"
	"marketplace-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateListingRequest represents the request payload for creating a listing
type CreateListingRequest struct {
	Title       string                 `json:"title" binding:"required"`
	Description string                 `json:"description"`
	Price       int64                  `json:"price" binding:"required"`
	Currency    string                 `json:"currency"`
	Category    models.ListingCategory `json:"category" binding:"required"`
	Type        models.ListingType     `json:"type"`
	Location    string                 `json:"location"`
	Images      string                 `json:"images"`
}

// UpdateListingRequest represents the request payload for updating a listing
type UpdateListingRequest struct {
	Title       *string                 `json:"title"`
	Description *string                 `json:"description"`
	Price       *int64                  `json:"price"`
	Currency    *string                 `json:"currency"`
	Category    *models.ListingCategory `json:"category"`
	Type        *models.ListingType     `json:"type"`
	Status      *models.ListingStatus   `json:"status"`
	Location    *string                 `json:"location"`
	Images      *string                 `json:"images"`
}

// ListingHandler serves the listing endpoints. The response cache is
// injected so tests can run isolated instances.
type ListingHandler struct {
	cache cache.Cache
}

// NewListingHandler constructs a ListingHandler.
func NewListingHandler(c cache.Cache) *ListingHandler {
	return &ListingHandler{cache: c}
}

func validCategory(c models.ListingCategory) bool {
	return c == models.CategoryVehicle || c == models.CategoryRealEstate
}

func validType(t models.ListingType) bool {
	return t == models.TypeSale || t == models.TypeRent
}

// enrichSellers fills the embedded seller summary from the users table.
func enrichSellers(listings []models.Listing) {
	var users []models.User
	if err := database.GetDB().Find(&users).Error; err != nil {
		return
	}
	userByID := make(map[string]models.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}
	for i := range listings {
		if u, ok := userByID[listings[i].UserID]; ok {
			listings[i].Seller = models.Seller{ID: u.ID, Name: u.Username}
		}
	}
}

/*
*
GetListings handles GET /api/listings
Returns active listings filtered by category, type and search text,
paginated with limit/offset. Results are served from the response cache
when a fresh entry for the same filter set exists.
*/
func (h *ListingHandler) GetListings(c *gin.Context) {
	category := c.Query("category")
	listingType := c.Query("type")
	search := strings.TrimSpace(c.Query("search"))

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	// The filter map doubles as the cache key identity; only set filters
	// participate so "no filter" and "empty filter" share a key.
	filters := map[string]any{"limit": limit, "offset": offset}
	if category != "" {
		filters["category"] = category
	}
	if listingType != "" {
		filters["type"] = listingType
	}
	if search != "" {
		filters["search"] = search
	}

	key := cache.ListingsQueryKey(filters)
	if cached, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	db := database.GetDB()
	query := db.Model(&models.Listing{}).Where("status = ?", models.StatusActive)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if listingType != "" {
		query = query.Where("type = ?", listingType)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count listings"})
		return
	}

	var listings []models.Listing
	result := query.Session(&gorm.Session{}).Order("created_at desc").Limit(limit).Offset(offset).Find(&listings)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listings"})
		return
	}

	enrichSellers(listings)

	payload := gin.H{
		"listings": listings,
		"count":    len(listings),
		"total":    total,
	}
	h.cache.Set(key, payload)
	c.JSON(http.StatusOK, payload)
}

// GetListingByID handles GET /api/listings/:id
func (h *ListingHandler) GetListingByID(c *gin.Context) {
	listingID := c.Param("id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Listing ID is required"})
		return
	}

	key := cache.ListingKey(listingID)
	if cached, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	var listing models.Listing
	result := database.GetDB().Where("id = ?", listingID).First(&listing)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listing"})
		}
		return
	}

	single := []models.Listing{listing}
	enrichSellers(single)
	listing = single[0]

	h.cache.Set(key, listing)
	c.JSON(http.StatusOK, listing)
}

/*
*
CreateListing handles POST /api/listings
Creates a new listing for the authenticated user. Any cached collection
query might now be stale, so the whole collection namespace is invalidated.
*/
func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !validCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}
	listingType := req.Type
	if listingType == "" {
		listingType = models.TypeSale
	}
	if !validType(listingType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type"})
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	listing := models.Listing{
		ID:          fmt.Sprintf("listing-%d", time.Now().UnixNano()),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Currency:    currency,
		Category:    req.Category,
		Type:        listingType,
		Status:      models.StatusActive,
		Location:    req.Location,
		Images:      req.Images,
		UserID:      userID,
	}

	if err := database.GetDB().Create(&listing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
		return
	}

	h.invalidateListing(listing.ID, userID)
	// seed the individual entry with the freshly known value
	h.cache.Set(cache.ListingKey(listing.ID), listing)

	c.JSON(http.StatusCreated, listing)
}

// UpdateListing handles PUT /api/listings/:id
// Updates a listing owned by the authenticated user
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	listingID := c.Param("id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Listing ID is required"})
		return
	}

	var existing models.Listing
	result := database.GetDB().Where("id = ? AND user_id = ?", listingID, userID).First(&existing)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listing"})
		}
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		existing.Title = *req.Title
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Price != nil {
		existing.Price = *req.Price
	}
	if req.Currency != nil {
		existing.Currency = *req.Currency
	}
	if req.Category != nil {
		if !validCategory(*req.Category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		existing.Category = *req.Category
	}
	if req.Type != nil {
		if !validType(*req.Type) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type"})
			return
		}
		existing.Type = *req.Type
	}
	if req.Status != nil {
		existing.Status = *req.Status
	}
	if req.Location != nil {
		existing.Location = *req.Location
	}
	if req.Images != nil {
		existing.Images = *req.Images
	}

	if err := database.GetDB().Save(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update listing"})
		return
	}

	h.invalidateListing(existing.ID, userID)
	h.cache.Set(cache.ListingKey(existing.ID), existing)

	c.JSON(http.StatusOK, existing)
}

// DeleteListing handles DELETE /api/listings/:id
// Deletes a listing owned by the authenticated user
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	listingID := c.Param("id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Listing ID is required"})
		return
	}

	var listing models.Listing
	result := database.GetDB().Where("id = ? AND user_id = ?", listingID, userID).First(&listing)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listing"})
		}
		return
	}

	if err := database.GetDB().Delete(&listing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete listing"})
		return
	}

	h.invalidateListing(listingID, userID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Listing deleted successfully",
		"id":      listingID,
	})
}

// GetMyListings handles GET /api/my-listings
func (h *ListingHandler) GetMyListings(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	key := cache.UserListingsKey(userID)
	if cached, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	var listings []models.Listing
	if err := database.GetDB().Where("user_id = ?", userID).Order("created_at desc").Find(&listings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listings"})
		return
	}
	enrichSellers(listings)

	payload := gin.H{
		"listings": listings,
		"count":    len(listings),
		"total":    int64(len(listings)),
	}
	h.cache.Set(key, payload)
	c.JSON(http.StatusOK, payload)
}

// invalidateListing applies the write-side invalidation policy: the
// individual entry, every cached collection-query variant, and the owner's
// own-listings entry.
func (h *ListingHandler) invalidateListing(listingID, userID string) {
	h.cache.Delete(cache.ListingKey(listingID))
	h.cache.InvalidateByPrefix(cache.ListingsQueryPrefix)
	h.cache.Delete(cache.UserListingsKey(userID))
}
