package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vitcanteen/canteen-backend/internal/dto"
	"github.com/vitcanteen/canteen-backend/internal/services"
)

type MenuHandler struct {
	menuService *services.MenuService
}

func NewMenuHandler(menuService *services.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

func (h *MenuHandler) List(c *fiber.Ctx) error {
	items, err := h.menuService.List(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to fetch menu")
	}
	return c.JSON(dto.MenuResponse{Success: true, Items: items})
}
