package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/example/invithe/internal/services"
)

var validate = validator.New()

// fail maps service errors onto the JSON envelope. Validation errors keep
// their user-facing message; anything unrecognized bubbles up as a 500
// through Fiber's error handler.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest

	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrOrderNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrPaymentProvider):
		status = fiber.StatusBadGateway
	case errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrOutOfStock),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidPromo),
		errors.Is(err, services.ErrExpiredPromo),
		errors.Is(err, services.ErrPromoExhausted),
		errors.Is(err, services.ErrMinimumNotMet),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidSignature):
		status = fiber.StatusBadRequest
	default:
		return err
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   userMessage(err),
	})
}

// userMessage renders the storefront-facing text for a validation error.
func userMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return "Produit introuvable"
	case errors.Is(err, services.ErrOrderNotFound):
		return "Commande introuvable"
	case errors.Is(err, services.ErrInsufficientStock):
		return "Stock insuffisant"
	case errors.Is(err, services.ErrOutOfStock):
		return "Un produit de votre panier n'est plus disponible"
	case errors.Is(err, services.ErrEmptyCart):
		return "Votre panier est vide"
	case errors.Is(err, services.ErrInvalidPromo):
		return "Code promo invalide"
	case errors.Is(err, services.ErrExpiredPromo):
		return "Code promo expiré"
	case errors.Is(err, services.ErrPromoExhausted):
		return "Code promo épuisé"
	case errors.Is(err, services.ErrMinimumNotMet):
		return "Montant minimum non atteint"
	case errors.Is(err, services.ErrPaymentProvider):
		return "Le paiement est momentanément indisponible, veuillez réessayer"
	case errors.Is(err, services.ErrInvalidStatus):
		return "Statut invalide"
	case errors.Is(err, services.ErrInvalidSignature):
		return "Signature invalide"
	}
	return err.Error()
}
