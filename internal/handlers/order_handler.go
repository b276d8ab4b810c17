package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/vitcanteen/canteen-backend/internal/dto"
	"github.com/vitcanteen/canteen-backend/internal/middleware"
	"github.com/vitcanteen/canteen-backend/internal/models"
	"github.com/vitcanteen/canteen-backend/internal/services"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	order, receipt, err := h.orderService.Create(c.UserContext(), middleware.GetCaller(c), &req)
	if err != nil {
		return respondError(c, err, "Failed to create order")
	}

	return c.JSON(dto.CreateOrderResponse{
		Success: true,
		Order:   order,
		Receipt: receipt,
	})
}

// ListForUser serves GET /orders/:userId.
func (h *OrderHandler) ListForUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}

	orders, err := h.orderService.ListForUser(c.UserContext(), middleware.GetCaller(c), userID)
	if err != nil {
		return respondError(c, err, "Failed to fetch orders")
	}
	return c.JSON(dto.OrderListResponse{Success: true, Orders: orders})
}

// ListAll serves GET /orders/all behind OwnerRequired.
func (h *OrderHandler) ListAll(c *fiber.Ctx) error {
	orders, err := h.orderService.ListAll(c.UserContext(), middleware.GetCaller(c))
	if err != nil {
		return respondError(c, err, "Failed to fetch orders")
	}
	return c.JSON(dto.OrderListResponse{Success: true, Orders: orders})
}

// UpdateStatus serves the owner's PATCH /orders/:orderId.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	switch models.OrderStatus(req.Status) {
	case models.StatusAccepted, models.StatusReady, models.StatusCompleted:
	default:
		return badRequest(c, "Invalid status")
	}

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "order not found"})
	}

	order, err := h.orderService.UpdateStatus(c.UserContext(), middleware.GetCaller(c), orderID, req.Status)
	if err != nil {
		return respondError(c, err, "Failed to update order")
	}
	return c.JSON(dto.OrderResponse{Success: true, Order: order})
}

// Cancel serves PATCH /orders/:orderId/cancel. The student is identified by
// bearer token, or else by the userId in the body.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	caller := middleware.GetCaller(c)
	if caller.IsAnonymous() && len(c.Body()) > 0 {
		var req dto.CancelOrderRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if id, err := uuid.Parse(req.UserID); err == nil {
			caller = services.Caller{UserID: id, Role: models.RoleStudent}
		}
	}
	if caller.IsAnonymous() {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: "Unauthorized: the ordering student must be identified",
		})
	}

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "order not found"})
	}

	order, err := h.orderService.Cancel(c.UserContext(), caller, orderID)
	if err != nil {
		return respondError(c, err, "Failed to cancel order")
	}
	return c.JSON(dto.OrderResponse{Success: true, Order: order})
}
