package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tech2gether/internal/middleware"
)

// SetupRoutes wires the auth API onto the app. The handlers expect
// c.Locals("config") and c.Locals("auth") to be populated.
func SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", Register)
	auth.Post("/login", Login)
	auth.Post("/logout", middleware.AuthMiddleware, Logout)
	auth.Post("/refresh", RefreshToken)
	auth.Post("/verify-email", VerifyEmail)
	auth.Get("/verify-email/:token", VerifyEmailLink)
	auth.Post("/resend-verification", ResendVerification)
	auth.Post("/forgot-password", ForgotPassword)
	auth.Post("/reset-password", ResetPassword)

	auth.Get("/profile", middleware.AuthMiddleware, GetProfile)
	auth.Put("/profile", middleware.AuthMiddleware, UpdateProfile)
	auth.Put("/change-password", middleware.AuthMiddleware, ChangePassword)

	admin := api.Group("/admin", middleware.AuthMiddleware, middleware.AdminMiddleware)
	admin.Get("/users", ListUsers)
	admin.Post("/users/:user_id/promote", PromoteUser)

	app.Use(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})
}
