package handlers

import (
	"errors"
	"net/http"

	"marketplace-api/internal/cache"
	"marketplace-api/internal/database"
	"marketplace-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UpdateProfileRequest represents the profile update payload
type UpdateProfileRequest struct {
	Phone    *string `json:"phone"`
	Location *string `json:"location"`
	Avatar   *string `json:"avatar"`
}

// UserHandler serves profile and favorites endpoints.
type UserHandler struct {
	cache cache.Cache
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(c cache.Cache) *UserHandler {
	return &UserHandler{cache: c}
}

// GetProfile handles GET /api/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var user models.User
	if err := database.GetDB().Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /api/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var user models.User
	if err := database.GetDB().Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}

	if err := database.GetDB().Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetFavorites handles GET /api/favorites
// Returns the listings the authenticated user bookmarked.
func (h *UserHandler) GetFavorites(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	key := cache.FavoritesKey(userID)
	if cached, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	var favorites []models.Favorite
	if err := database.GetDB().Where("user_id = ?", userID).Find(&favorites).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch favorites"})
		return
	}

	listingIDs := make([]string, 0, len(favorites))
	for _, f := range favorites {
		listingIDs = append(listingIDs, f.ListingID)
	}

	listings := []models.Listing{}
	if len(listingIDs) > 0 {
		if err := database.GetDB().Where("id IN ?", listingIDs).Find(&listings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listings"})
			return
		}
		enrichSellers(listings)
	}

	payload := gin.H{
		"listings": listings,
		"count":    len(listings),
	}
	h.cache.Set(key, payload)
	c.JSON(http.StatusOK, payload)
}

// AddFavorite handles POST /api/favorites/:listingId
func (h *UserHandler) AddFavorite(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	listingID := c.Param("listingId")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Listing ID is required"})
		return
	}

	var listing models.Listing
	if err := database.GetDB().Where("id = ?", listingID).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listing"})
		}
		return
	}

	var existing models.Favorite
	err := database.GetDB().Where("user_id = ? AND listing_id = ?", userID, listingID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Already favorited"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check favorite"})
		return
	}

	favorite := models.Favorite{UserID: userID, ListingID: listingID}
	if err := database.GetDB().Create(&favorite).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add favorite"})
		return
	}

	h.cache.Delete(cache.FavoritesKey(userID))

	c.JSON(http.StatusCreated, gin.H{"message": "Favorite added", "listingId": listingID})
}

// RemoveFavorite handles DELETE /api/favorites/:listingId
func (h *UserHandler) RemoveFavorite(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	listingID := c.Param("listingId")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Listing ID is required"})
		return
	}

	result := database.GetDB().Where("user_id = ? AND listing_id = ?", userID, listingID).Delete(&models.Favorite{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favorite"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Favorite not found"})
		return
	}

	h.cache.Delete(cache.FavoritesKey(userID))

	c.JSON(http.StatusOK, gin.H{"message": "Favorite removed", "listingId": listingID})
}
