package main

import (
	"log"

	"marketplace-api/internal/auth"
	"marketplace-api/internal/cache"
	"marketplace-api/internal/config"
	"marketplace-api/internal/database"
	"marketplace-api/internal/logging"
	"marketplace-api/internal/realtime"
	"marketplace-api/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger := logging.Setup(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	auth.Configure(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)

	// Init database
	database.InitDB(cfg.DBPath)

	// Response cache and realtime hub live for the process lifetime
	respCache := cache.New(cache.Config{TTL: cfg.CacheTTL})
	hub := realtime.NewHub()

	ginRoutes := routes.SetupRoutes(respCache, hub)

	addr := ":" + cfg.AppPort
	logger.Info().Str("addr", addr).Dur("cache_ttl", cfg.CacheTTL).Msg("server starting")

	if err := ginRoutes.Run(addr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
