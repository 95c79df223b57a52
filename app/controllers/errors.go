package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"lonetown/app/models"
)

// httpError maps service errors onto fiber errors rendered by the app ErrorHandler
func httpError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, publicMessage(err, models.ErrValidation, "Invalid request"))
	case errors.Is(err, models.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, publicMessage(err, models.ErrNotFound, "Not found"))
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": c.Locals("requestid"),
		}).Error("❌ Request failed")
		return fiber.NewError(fiber.StatusInternalServerError, "Server error")
	}
}

// publicMessage strips the sentinel prefix, leaving the detail added by the service
func publicMessage(err, sentinel error, fallback string) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == sentinel.Error() {
		return fallback
	}
	return msg
}

func withTimeout(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), timeout)
}
