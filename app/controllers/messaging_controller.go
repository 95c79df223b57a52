package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"lonetown/app/models"
	"lonetown/app/services"
)

// MessagingController serves the chat history
type MessagingController struct {
	messages services.MessageStore
	timeout  time.Duration
}

// NewMessagingController creates a new messaging controller instance
func NewMessagingController(messages services.MessageStore, timeout time.Duration) *MessagingController {
	return &MessagingController{
		messages: messages,
		timeout:  timeout,
	}
}

// ListMessages handles GET /messages. The optional matchId query narrows the
// result to one match; without it every message is returned, oldest first.
func (m *MessagingController) ListMessages(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c, m.timeout)
	defer cancel()

	var (
		messages []models.Message
		err      error
	)
	if matchID := c.Query("matchId"); matchID != "" {
		messages, err = m.messages.ListByMatch(ctx, matchID)
	} else {
		messages, err = m.messages.ListAll(ctx)
	}
	if err != nil {
		return httpError(c, err)
	}
	if messages == nil {
		messages = []models.Message{}
	}

	return c.JSON(messages)
}
