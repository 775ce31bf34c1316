package middleware

import (
	"github.com/gofiber/fiber/v2"

	"tech2gether/internal/database"
)

// AdminMiddleware gates routes on the credential's admin flag. Must run
// after AuthMiddleware.
func AdminMiddleware(c *fiber.Ctx) error {
	user := c.Locals("user").(*database.User)

	if user.Credential == nil || !user.Credential.IsAdmin {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}

	return c.Next()
}
