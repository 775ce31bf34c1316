package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tech2gether/internal/config"
	pauth "tech2gether/internal/platform/auth"
)

func GetProfile(c *fiber.Ctx) error {
	svc := c.Locals("auth").(*pauth.Service)
	user := currentUser(c)

	current, err := svc.GetProfile(user.ID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"user": current})
}

func UpdateProfile(c *fiber.Ctx) error {
	svc := c.Locals("auth").(*pauth.Service)
	user := currentUser(c)

	type ProfileInput struct {
		FirstName     *string `json:"first_name" validate:"omitempty,min=1,max=50"`
		LastName      *string `json:"last_name" validate:"omitempty,min=1,max=50"`
		PreferredName *string `json:"preferred_name" validate:"omitempty,max=50"`
		Phone         *string `json:"phone" validate:"omitempty,max=20"`
		Pronouns      *string `json:"pronouns" validate:"omitempty,max=20"`
		School        *string `json:"school" validate:"omitempty,max=100"`
		LinkedinURL   *string `json:"linkedin_url" validate:"omitempty,max=200"`
		GithubURL     *string `json:"github_url" validate:"omitempty,max=200"`
	}

	var input ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := svc.UpdateProfile(user.ID, pauth.ProfileInput{
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

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    updated,
	})
}

func ChangePassword(c *fiber.Ctx) error {
	svc := c.Locals("auth").(*pauth.Service)
	user := currentUser(c)

	type ChangePasswordInput struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required"`
	}

	var input ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := svc.ChangePassword(user.ID, input.CurrentPassword, input.NewPassword); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}
