package services

import (
	"time"

	"github.com/example/invithe/internal/models"
	"github.com/example/invithe/internal/utils"
)

// ComputeDiscount applies a promo code's rule to a subtotal. Percentage
// discounts are rounded to 2 decimals; fixed discounts are taken verbatim.
// Pure so the estimate shown at apply time is reproducible.
func ComputeDiscount(promo *models.PromoCode, subtotal float64) float64 {
	if promo.DiscountType == models.DiscountTypePercentage {
		return utils.Round2(subtotal * promo.DiscountValue / 100)
	}
	return promo.DiscountValue
}

// ValidatePromo checks that a promo code is usable against a cart subtotal:
// active, not expired, under its usage cap, and above the minimum order
// amount when one is set.
func ValidatePromo(promo *models.PromoCode, subtotal float64, now time.Time) error {
	if !promo.IsActive {
		return ErrInvalidPromo
	}
	if promo.ExpiresAt != nil && promo.ExpiresAt.Before(now) {
		return ErrExpiredPromo
	}
	if promo.MaxUses != nil && promo.CurrentUses >= *promo.MaxUses {
		return ErrPromoExhausted
	}
	if promo.MinOrderAmount != nil && subtotal < *promo.MinOrderAmount {
		return ErrMinimumNotMet
	}
	return nil
}
