package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vitcanteen/canteen-backend/internal/services"
)

const callerKey = "caller"

// GetCaller returns the identity resolved for this request, or the anonymous
// caller.
func GetCaller(c *fiber.Ctx) services.Caller {
	if caller, ok := c.Locals(callerKey).(services.Caller); ok {
		return caller
	}
	return services.Caller{}
}

func SetCaller(c *fiber.Ctx, caller services.Caller) {
	c.Locals(callerKey, caller)
}
