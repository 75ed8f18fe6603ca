package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/invithe/internal/middleware"
	"github.com/example/invithe/internal/models"
	"github.com/example/invithe/internal/services"
	"github.com/example/invithe/internal/utils"
)

// OrderHandler serves the admin order surface.
type OrderHandler struct {
	orders *services.OrderService
	audit  *services.AuditService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService, audit *services.AuditService) *OrderHandler {
	return &OrderHandler{orders: orders, audit: audit}
}

// ListOrders returns orders newest first, optionally filtered by status.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status")
	}

	orders, total, err := h.orders.List(c.Context(), status, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order with its line snapshots.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateOrderStatus applies an operator status edit and records it in the
// audit log.
func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req orderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "status is required")
	}

	order, err := h.orders.UpdateStatus(c.Context(), id, models.OrderStatus(req.Status))
	if err != nil {
		return fail(c, err)
	}

	if email, ok := middleware.GetCurrentAdminEmail(c); ok {
		h.audit.Record(c.Context(), email, services.AuditOrderStatusUpdate,
			fmt.Sprintf("Commande %s → %s", order.OrderNumber, order.Status))
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// ListStalePendingOrders lists pending orders older than the given number
// of hours (default 24) for operator reconciliation.
func (h *OrderHandler) ListStalePendingOrders(c *fiber.Ctx) error {
	hours := c.QueryInt("hours", 24)
	if hours <= 0 {
		hours = 24
	}

	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)
	orders, err := h.orders.StalePendingBefore(c.Context(), cutoff)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": orders})
}
