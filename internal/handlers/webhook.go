package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/invithe/internal/services"
)

// WebhookHandler receives payment-provider deliveries. The signature is
// verified against the raw body before anything in the payload is trusted.
type WebhookHandler struct {
	gateway     services.PaymentGateway
	fulfillment *services.FulfillmentService
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(gateway services.PaymentGateway, fulfillment *services.FulfillmentService) *WebhookHandler {
	return &WebhookHandler{gateway: gateway, fulfillment: fulfillment}
}

// HandlePaymentWebhook processes a provider event. 200 means applied (or
// idempotently already applied); 400 rejects bad signatures and payloads
// so the provider retries only what might succeed.
func (h *WebhookHandler) HandlePaymentWebhook(c *fiber.Ctx) error {
	signature := c.Get(services.SignatureHeader)
	if signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "missing signature",
		})
	}

	event, err := h.gateway.VerifyWebhook(c.Body(), signature)
	if err != nil {
		log.Printf("[Webhook] rejected delivery: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid webhook",
		})
	}

	switch event.Type {
	case services.EventSessionCompleted:
		orderID, err := uuid.Parse(event.Session.Metadata["order_id"])
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "event has no order reference",
			})
		}
		if _, err := h.fulfillment.MarkPaid(c.Context(), orderID, event.Session.ID); err != nil {
			// A cancelled order stays cancelled; redelivering the event
			// cannot change that, so acknowledge it.
			if errors.Is(err, services.ErrInvalidStatus) {
				log.Printf("[Webhook] ignoring completion for non-pending order %s", orderID)
				break
			}
			log.Printf("[Webhook] failed to mark order %s paid: %v", orderID, err)
			// 5xx so the provider redelivers; the transition is idempotent.
			return fiber.NewError(fiber.StatusInternalServerError, "failed to process event")
		}
		log.Printf("[Webhook] order %s paid via webhook", event.Session.Metadata["order_number"])

	case services.EventSessionExpired:
		orderID, err := uuid.Parse(event.Session.Metadata["order_id"])
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "event has no order reference",
			})
		}
		if err := h.fulfillment.MarkCancelled(c.Context(), orderID); err != nil {
			// An order that was already paid when the session expired stays
			// paid; acknowledge instead of forcing redelivery.
			if errors.Is(err, services.ErrInvalidStatus) {
				log.Printf("[Webhook] ignoring expiry for non-pending order %s", orderID)
				break
			}
			log.Printf("[Webhook] failed to cancel order %s: %v", orderID, err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to process event")
		}
		log.Printf("[Webhook] order %s cancelled, payment session expired", event.Session.Metadata["order_number"])

	default:
		log.Printf("[Webhook] ignoring event type %s", event.Type)
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"received": true}})
}
