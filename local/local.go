package local

import "github.com/gofiber/fiber/v2"

func GetUserID(c *fiber.Ctx) int {
	userID, _ := c.Locals("userID").(int)
	return userID
}

func SetUserID(c *fiber.Ctx, userID int) {
	c.Locals("userID", userID)
}
