package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vitcanteen/canteen-backend/internal/dto"
	"github.com/vitcanteen/canteen-backend/internal/services"
)

// OwnerHeader carries the owner's email on owner-only routes.
const OwnerHeader = "X-Owner-Email"

// OwnerRequired admits an owner bearer token or the reserved owner address in
// the X-Owner-Email header.
func OwnerRequired(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetCaller(c).IsOwner() {
			return c.Next()
		}

		caller, err := auth.OwnerFromHeader(c.Get(OwnerHeader))
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: "Unauthorized",
			})
		}
		SetCaller(c, caller)
		return c.Next()
	}
}
