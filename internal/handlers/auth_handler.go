package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/vitcanteen/canteen-backend/internal/dto"
	"github.com/vitcanteen/canteen-backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidFormat):
			return badRequest(c, "Invalid email format")
		case errors.Is(err, services.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Invalid credentials"})
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "User not found"})
		}
		return respondError(c, err, "Server error")
	}

	return c.JSON(resp)
}
