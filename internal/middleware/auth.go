package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/vitcanteen/canteen-backend/internal/config"
	"github.com/vitcanteen/canteen-backend/internal/dto"
	"github.com/vitcanteen/canteen-backend/internal/services"
)

// OptionalAuth verifies a bearer token when one is presented and records the
// caller it identifies. Requests without an Authorization header pass through
// anonymously; a bad token is rejected.
func OptionalAuth(cfg *config.Config, auth *services.AuthService) fiber.Handler {
	if cfg.JWTSecret == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		Filter: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderAuthorization) == ""
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, _ := c.Locals("user").(*jwt.Token)
			if token == nil {
				return unauthorized(c)
			}
			caller, err := auth.CallerFromToken(token)
			if err != nil {
				return unauthorized(c)
			}
			SetCaller(c, caller)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c)
		},
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: "Unauthorized: invalid or expired token",
	})
}
