package routes

import (
	"marketplace-api/internal/cache"
	"marketplace-api/internal/handlers"
	"marketplace-api/internal/middleware"
	"marketplace-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes wires the handlers over the injected response cache and hub.
func SetupRoutes(respCache cache.Cache, hub *realtime.Hub) *gin.Engine {
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Marketplace API is running",
		})
	})

	// Prometheus metrics
	ginRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	listingHandler := handlers.NewListingHandler(respCache)
	conversationHandler := handlers.NewConversationHandler(respCache)
	messageHandler := handlers.NewMessageHandler(respCache, hub)
	userHandler := handlers.NewUserHandler(respCache)
	wsHandler := handlers.NewWSHandler(hub)

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/register", handlers.Register)
		api.POST("/login", handlers.Login)

		// Browsing is public
		api.GET("/listings", listingHandler.GetListings)
		api.GET("/listings/:id", listingHandler.GetListingByID)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		protectedRoutes.GET("/me", handlers.Me)

		// Listing endpoints
		protectedRoutes.POST("/listings", listingHandler.CreateListing)
		protectedRoutes.PUT("/listings/:id", listingHandler.UpdateListing)
		protectedRoutes.DELETE("/listings/:id", listingHandler.DeleteListing)
		protectedRoutes.GET("/my-listings", listingHandler.GetMyListings)

		// Conversation and message endpoints
		protectedRoutes.GET("/conversations", conversationHandler.GetConversations)
		protectedRoutes.GET("/conversations/:id", conversationHandler.GetConversationByID)
		protectedRoutes.POST("/conversations", conversationHandler.CreateConversation)
		protectedRoutes.GET("/conversations/:id/messages", messageHandler.GetMessages)
		protectedRoutes.POST("/conversations/:id/messages", messageHandler.SendMessage)

		// Profile and favorites endpoints
		protectedRoutes.GET("/profile", userHandler.GetProfile)
		protectedRoutes.PUT("/profile", userHandler.UpdateProfile)
		protectedRoutes.GET("/favorites", userHandler.GetFavorites)
		protectedRoutes.POST("/favorites/:listingId", userHandler.AddFavorite)
		protectedRoutes.DELETE("/favorites/:listingId", userHandler.RemoveFavorite)

		// Realtime message events
		protectedRoutes.GET("/ws", wsHandler.Handle)
	}

	return ginRouter
}
