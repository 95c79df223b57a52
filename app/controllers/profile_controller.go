package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"lonetown/app/models"
	"lonetown/app/services"
)

// ProfileController handles onboarding submissions
type ProfileController struct {
	profileService *services.ProfileService
	timeout        time.Duration
}

// NewProfileController creates a new profile controller instance
func NewProfileController(profileService *services.ProfileService, timeout time.Duration) *ProfileController {
	return &ProfileController{
		profileService: profileService,
		timeout:        timeout,
	}
}

// SaveProfile handles POST /profile
func (p *ProfileController) SaveProfile(c *fiber.Ctx) error {
	var req models.SaveProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return httpError(c, fmt.Errorf("%w: Invalid request body", models.ErrValidation))
	}

	ctx, cancel := withTimeout(c, p.timeout)
	defer cancel()

	if err := p.profileService.SaveProfile(ctx, req); err != nil {
		return httpError(c, err)
	}

	return c.JSON(models.SaveProfileResponse{
		Success: true,
		Message: "Profile saved",
	})
}
