package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HandleValuationCacheStats returns valuation cache statistics for admin
// monitoring.
func HandleValuationCacheStats(c *fiber.Ctx) error {
	if store == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "cache not initialized")
	}
	return c.JSON(store.Stats())
}
