package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/auto-strada/site/cardata"
	"github.com/auto-strada/site/config"
	"github.com/auto-strada/site/db"
	h "github.com/auto-strada/site/handlers"
	"github.com/auto-strada/site/redis"
	"github.com/auto-strada/site/reservation"
	"github.com/auto-strada/site/valuation"
	"github.com/auto-strada/site/vincache"
)

func main() {
	// Initialize database
	if err := db.Init(config.DatabaseURL); err != nil {
		log.Fatalf("error initializing database: %v", err)
	}

	// Monitor the secondary cache backend
	redis.StartHealthCheck()

	// Initialize valuation cache: SQLite first, Redis as fallback
	store, err := vincache.New(vincache.SQLiteBackend{}, vincache.RedisBackend{})
	if err != nil {
		log.Fatalf("Failed to initialize valuation cache: %v", err)
	}

	resolver := valuation.NewResolver(cardata.New(), store, reservation.Sink{})
	h.Init(resolver, store)

	app := fiber.New(fiber.Config{
		ErrorHandler: h.CustomErrorHandler,
		ReadTimeout:  30 * time.Second, // Prevent long-running requests
		WriteTimeout: 30 * time.Second, // Prevent long-running responses
	})

	// Add rate limiter
	app.Use(limiter.New(limiter.Config{
		Max:        config.ServerRateLimitMax,
		Expiration: config.ServerRateLimitExp,
	}))

	// Add logger middleware
	app.Use(logger.New())

	// Valuation API
	app.Post("/api/valuation", h.HandleValuation)
	app.Post("/api/seller-valuation", h.HandleSellerValuation)

	// Health and admin
	app.Get("/health", h.HandleHealth)
	app.Get("/api/admin/valuation-cache-stats", h.HandleValuationCacheStats)

	log.Fatal(app.Listen(":" + config.ServerPort))
}
