package handlers

import (
	"encoding/json"

	"github.com/auto-strada/site/db"
	"github.com/auto-strada/site/redis"
	"github.com/gofiber/fiber/v2"
)

// HandleHealth returns the health status of the application
func HandleHealth(c *fiber.Ctx) error {
	health := map[string]string{
		"status": "ok",
	}

	// Check database connectivity
	if err := db.Get().Ping(); err != nil {
		health["status"] = "unhealthy"
		health["database"] = "down"
		c.Status(fiber.StatusServiceUnavailable)
	} else {
		health["database"] = "up"
	}

	// Redis only backs the secondary cache path; report it but stay healthy
	// without it.
	if err := redis.Client.Ping(c.Context()).Err(); err != nil {
		health["redis"] = "down"
	} else {
		health["redis"] = "up"
	}

	// Return JSON response
	c.Set("Content-Type", "application/json")
	return json.NewEncoder(c).Encode(health)
}
