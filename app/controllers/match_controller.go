package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"lonetown/app/models"
	"lonetown/app/services"
)

// MatchController handles matchmaking and match state endpoints
type MatchController struct {
	matchmakingService *services.MatchmakingService
	stateService       *services.MatchStateService
	timeout            time.Duration
}

// NewMatchController creates a new match controller instance
func NewMatchController(matchmakingService *services.MatchmakingService, stateService *services.MatchStateService, timeout time.Duration) *MatchController {
	return &MatchController{
		matchmakingService: matchmakingService,
		stateService:       stateService,
		timeout:            timeout,
	}
}

// DailyMatch handles POST /daily-match
func (m *MatchController) DailyMatch(c *fiber.Ctx) error {
	var req models.DailyMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return httpError(c, fmt.Errorf("%w: Invalid request body", models.ErrValidation))
	}

	ctx, cancel := withTimeout(c, m.timeout)
	defer cancel()

	pair, err := m.matchmakingService.FindMatch(ctx, req.UserID)
	if errors.Is(err, models.ErrNoMatchAvailable) {
		return c.JSON(models.DailyMatchResponse{
			MatchID: nil,
			Message: publicMessage(err, models.ErrNoMatchAvailable, "No matches available yet"),
		})
	}
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(models.DailyMatchResponse{
		MatchID:   &pair.MatchID,
		PartnerID: pair.PartnerID,
	})
}

// GetMatchState handles GET /matches/:matchId/state?userId=
func (m *MatchController) GetMatchState(c *fiber.Ctx) error {
	matchID := c.Params("matchId")
	userID := c.Query("userId")
	if userID == "" {
		return httpError(c, fmt.Errorf("%w: Missing userId", models.ErrValidation))
	}
	if _, _, ok := models.ParseMatchID(matchID); !ok {
		return httpError(c, fmt.Errorf("%w: Invalid matchId", models.ErrValidation))
	}

	ctx, cancel := withTimeout(c, m.timeout)
	defer cancel()

	view, err := m.stateService.View(ctx, matchID, userID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(view)
}
