package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	pauth "tech2gether/internal/platform/auth"
)

// AuthMiddleware resolves the Authorization bearer token to a user and
// stores it under c.Locals("user"). Only access tokens are accepted; the
// token kind check happens inside the auth service.
func AuthMiddleware(c *fiber.Ctx) error {
	svc := c.Locals("auth").(*pauth.Service)

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")

	user, err := svc.Authenticate(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}

	c.Locals("user", user)

	return c.Next()
}
