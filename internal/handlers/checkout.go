package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/invithe/internal/middleware"
	"github.com/example/invithe/internal/models"
	"github.com/example/invithe/internal/services"
)

// CheckoutHandler drives the checkout flow and the return-URL
// confirmation fallback.
type CheckoutHandler struct {
	carts       *services.CartService
	checkout    *services.CheckoutService
	fulfillment *services.FulfillmentService
	gateway     services.PaymentGateway
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(carts *services.CartService, checkout *services.CheckoutService, fulfillment *services.FulfillmentService, gateway services.PaymentGateway) *CheckoutHandler {
	return &CheckoutHandler{carts: carts, checkout: checkout, fulfillment: fulfillment, gateway: gateway}
}

type checkoutRequest struct {
	CustomerName       string `json:"customer_name" validate:"required"`
	CustomerEmail      string `json:"customer_email" validate:"required,email"`
	CustomerPhone      string `json:"customer_phone" validate:"required"`
	DeliveryMethod     string `json:"delivery_method" validate:"required,oneof=pickup delivery"`
	ShippingAddress    string `json:"shipping_address"`
	ShippingCity       string `json:"shipping_city"`
	ShippingPostalCode string `json:"shipping_postal_code"`
	Notes              string `json:"notes"`
}

// ProcessCheckout revalidates the cart server-side, persists a pending
// order and returns the hosted payment redirect.
func (h *CheckoutHandler) ProcessCheckout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid checkout form")
	}
	if req.DeliveryMethod == models.DeliveryMethodDelivery && req.ShippingAddress == "" {
		return fiber.NewError(fiber.StatusBadRequest, "shipping address is required for delivery")
	}

	cart := h.carts.Get(middleware.GetCartSessionID(c))

	result, err := h.checkout.Checkout(c.Context(), cart, services.CustomerInfo{
		Name:           req.CustomerName,
		Email:          req.CustomerEmail,
		Phone:          req.CustomerPhone,
		DeliveryMethod: req.DeliveryMethod,
		Address:        req.ShippingAddress,
		City:           req.ShippingCity,
		PostalCode:     req.ShippingPostalCode,
		Notes:          req.Notes,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"order_id":     result.Order.ID,
			"order_number": result.Order.OrderNumber,
			"total":        result.Order.Total,
			"redirect_url": result.RedirectURL,
		},
	})
}

// ConfirmCheckout is the return-URL fallback: it fetches the provider
// session, applies the same idempotent paid transition the webhook uses,
// and clears the visitor's cart.
func (h *CheckoutHandler) ConfirmCheckout(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session_id is required")
	}

	session, err := h.gateway.GetSession(c.Context(), sessionID)
	if err != nil {
		return fail(c, err)
	}

	// Only the provider's own word that the session was paid is trusted.
	// Anyone can hit this endpoint with a session ID; an open or expired
	// session must never flip the order to paid.
	if session.Status != services.SessionStatusComplete {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Le paiement n'a pas été finalisé",
		})
	}

	orderID, err := uuid.Parse(session.Metadata["order_id"])
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "session has no order reference")
	}

	order, err := h.fulfillment.MarkPaid(c.Context(), orderID, session.ID)
	if err != nil {
		return fail(c, err)
	}

	h.carts.Clear(middleware.GetCartSessionID(c))

	return c.JSON(fiber.Map{"success": true, "data": order})
}
