package handlers

import (
	"errors"
	"log/slog"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"

	"github.com/vitcanteen/canteen-backend/internal/dto"
	"github.com/vitcanteen/canteen-backend/internal/services"
)

// statusFor maps a service error to an HTTP status. Anything unclassified is
// a server error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidFormat),
		errors.Is(err, services.ErrInvalidOrderData),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrIllegalTransition):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Server errors are logged and
// reported with fallback as the only visible message.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	code := statusFor(err)
	message := err.Error()

	if code >= fiber.StatusInternalServerError {
		requestID, _ := c.Locals("requestid").(string)
		slog.Error("request failed",
			"method", c.Method(), "path", c.Path(), "request_id", requestID, "error", err.Error())
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = fallback
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: message})
}
