package utils

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// FlatShippingFee applies to deliveries under the free-shipping threshold.
const (
	FlatShippingFee       = 5.90
	FreeShippingThreshold = 50.0
)

// Round2 rounds a monetary amount to 2 decimal places.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// CalculateShipping returns the shipping cost for a delivery method.
// Pickup is always free; delivery is free from 50 upwards.
func CalculateShipping(subtotal float64, method string) float64 {
	if method == "pickup" {
		return 0
	}
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

const orderNumberAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateOrderNumber builds a human-readable order number of the form
// IGR-YYYYMMDD-XXXX.
func GenerateOrderNumber() string {
	dateStr := time.Now().Format("20060102")

	var b strings.Builder
	for i := 0; i < 4; i++ {
		b.WriteByte(orderNumberAlphabet[rand.Intn(len(orderNumberAlphabet))])
	}

	return fmt.Sprintf("IGR-%s-%s", dateStr, strings.ToUpper(b.String()))
}

// FormatPrice renders a price in euros for messages and emails.
func FormatPrice(amount float64) string {
	return fmt.Sprintf("%.2f €", amount)
}
