package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"tech2gether/internal/config"
	"tech2gether/internal/database"
	pauth "tech2gether/internal/platform/auth"
)

const genericResendMessage = "If the account exists and is unverified, a new verification email was sent."
const genericResetMessage = "If an account with that email exists, a password reset link has been sent."

// errorResponse maps service failures onto the HTTP taxonomy. Anything
// unrecognized is an internal error and carries no detail to the client.
func errorResponse(c *fiber.Ctx, err error) error {
	var weak *pauth.WeakPasswordError
	switch {
	case errors.As(err, &weak):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Password does not meet security requirements",
			"errors":  weak.Violations,
		})
	case errors.Is(err, pauth.ErrDuplicateEmail):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, pauth.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	case errors.Is(err, pauth.ErrAccountLocked):
		return c.Status(fiber.StatusLocked).JSON(fiber.Map{
			"message": "Account is temporarily locked due to too many failed login attempts. Please try again later.",
		})
	case errors.Is(err, pauth.ErrInvalidToken):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid or expired token"})
	case errors.Is(err, pauth.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
}

func Register(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	svc := c.Locals("auth").(*pauth.Service)

	type RegisterInput struct {
		Email         string  `json:"email" validate:"required,email"`
		Password      string  `json:"password" validate:"required"`
		FirstName     string  `json:"first_name" validate:"required,max=50"`
		LastName      string  `json:"last_name" validate:"required,max=50"`
		PreferredName *string `json:"preferred_name" validate:"omitempty,max=50"`
		Phone         *string `json:"phone" validate:"omitempty,max=20"`
		Pronouns      *string `json:"pronouns" validate:"omitempty,max=20"`
		School        *string `json:"school" validate:"omitempty,max=100"`
		LinkedinURL   *string `json:"linkedin_url" validate:"omitempty,max=200"`
		GithubURL     *string `json:"github_url" validate:"omitempty,max=200"`
	}

	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	user, token, err := svc.Register(pauth.RegisterInput{
		Email:         input.Email,
		Password:      input.Password,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		PreferredName: input.PreferredName,
		Phone:         input.Phone,
		Pronouns:      input.Pronouns,
		School:        input.School,
		LinkedinURL:   input.LinkedinURL,
		GithubURL:     input.GithubURL,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	response := fiber.Map{
		"message": "User registered successfully. Please check your email to verify your account.",
		"user":    user,
	}
	if !cfg.IsProduction() && token != "" {
		response["dev"] = fiber.Map{"verification_token": token}
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

func Login(c *fiber.Ctx) error {
	svc := c.Locals("auth").(*pauth.Service)

	type LoginInput struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	user, tokens, err := svc.Login(input.Email, input.Password)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
		"tokens":  tokens,
	})
}

func Logout(c *fiber.Ctx) error {
	// Session tokens are stateless; there is nothing to revoke server-side.
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func RefreshToken(c *fiber.Ctx) error {
	svc := c.Locals("auth").(*pauth.Service)

	type RefreshInput struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	var input RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	access, expiresIn, err := svc.RefreshAccessToken(input.RefreshToken)
	if err != nil {
		if errors.Is(err, pauth.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid refresh token"})
		}
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"access_token": access,
		"expires_in":   expiresIn,
	})
}

func VerifyEmail(c *fiber.Ctx) error {
	svc := c.Locals("auth").(*pauth.Service)

	type VerifyInput struct {
		Token string `json:"token" validate:"required"`
	}

	var input VerifyInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if _, err := svc.VerifyEmail(input.Token); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "Email verified successfully"})
}

// VerifyEmailLink is the clickable GET variant. On success it redirects to
// the frontend when one is configured, otherwise answers JSON like the POST.
func VerifyEmailLink(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	svc := c.Locals("auth").(*pauth.Service)

	if _, err := svc.VerifyEmail(c.Params("token")); err != nil {
		return errorResponse(c, err)
	}

	if cfg.FrontendBaseURL != "" {
		return c.Redirect(fmt.Sprintf("%s/email-verified?status=success", cfg.FrontendBaseURL), fiber.StatusFound)
	}

	return c.JSON(fiber.Map{"message": "Email verified successfully"})
}

func ResendVerification(c *fiber.Ctx) error {
	svc := c.Locals("auth").(*pauth.Service)

	type ResendInput struct {
		Email string `json:"email" validate:"required,email"`
	}

	var input ResendInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := svc.ResendVerification(input.Email); err != nil {
		return errorResponse(c, err)
	}

	// Identical response whether or not the account exists.
	return c.JSON(fiber.Map{"message": genericResendMessage})
}

func ForgotPassword(c *fiber.Ctx) error {
	svc := c.Locals("auth").(*pauth.Service)

	type ForgotInput struct {
		Email string `json:"email" validate:"required,email"`
	}

	var input ForgotInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := svc.RequestPasswordReset(input.Email); err != nil {
		return errorResponse(c, err)
	}

	// Identical response whether or not the account exists.
	return c.JSON(fiber.Map{"message": genericResetMessage})
}

func ResetPassword(c *fiber.Ctx) error {
	svc := c.Locals("auth").(*pauth.Service)

	type ResetInput struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var input ResetInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if _, err := svc.ResetPassword(input.Token, input.Password); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}

func currentUser(c *fiber.Ctx) *database.User {
	return c.Locals("user").(*database.User)
}
