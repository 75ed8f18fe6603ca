package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/invithe/internal/middleware"
	"github.com/example/invithe/internal/services"
)

// CartHandler exposes the session cart JSON API consumed by the browser
// cart widget.
type CartHandler struct {
	carts *services.CartService
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(carts *services.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type cartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

type promoRequest struct {
	Code string `json:"code" validate:"required"`
}

// GetCart returns the current session cart.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	cart := h.carts.Get(middleware.GetCartSessionID(c))
	return c.JSON(fiber.Map{"success": true, "data": cart})
}

// AddToCart adds a product to the cart, defaulting to one unit.
func (h *CartHandler) AddToCart(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	cart, err := h.carts.Add(c.Context(), middleware.GetCartSessionID(c), productID, quantity)
	if err != nil {
		return fail(c, err)
	}

	idx := cart.Find(productID)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    cart,
		"message": fmt.Sprintf("%s ajouté au panier", cart.Items[idx].Name),
	})
}

// UpdateCart overwrites a line's quantity; zero or less removes the line.
func (h *CartHandler) UpdateCart(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}

	cart, err := h.carts.Update(c.Context(), middleware.GetCartSessionID(c), productID, req.Quantity)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": cart})
}

// RemoveFromCart deletes a line; removing an absent line is not an error.
func (h *CartHandler) RemoveFromCart(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}

	cart := h.carts.Remove(middleware.GetCartSessionID(c), productID)
	return c.JSON(fiber.Map{"success": true, "data": cart})
}

// ApplyPromo validates and applies a promo code to the cart.
func (h *CartHandler) ApplyPromo(c *fiber.Ctx) error {
	var req promoRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cart, err := h.carts.ApplyPromo(c.Context(), middleware.GetCartSessionID(c), req.Code)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    cart,
		"message": fmt.Sprintf("Code \"%s\" appliqué", cart.PromoCode),
	})
}
