package services

import "errors"

// Validation and flow errors surfaced to visitors. Handlers map these onto
// the JSON envelope with an appropriate 4xx status; anything else is a 500.
var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOutOfStock        = errors.New("product out of stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidPromo      = errors.New("invalid promo code")
	ErrExpiredPromo      = errors.New("promo code expired")
	ErrPromoExhausted    = errors.New("promo code exhausted")
	ErrMinimumNotMet     = errors.New("minimum order amount not met")
	ErrPaymentProvider   = errors.New("payment provider error")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrOrderNotFound     = errors.New("order not found")
)
