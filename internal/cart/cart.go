// Package cart holds the ephemeral per-visitor shopping cart and the
// session-keyed store that owns it. The cart lives in memory only; orders
// are the durable record.
package cart

import (
	"github.com/google/uuid"

	"github.com/example/invithe/internal/utils"
)

// Item is one cart line. Name, slug, image and prices are snapshots taken
// when the product was added; the stock field is advisory only, the
// authoritative check happens server-side at checkout.
type Item struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Image      string    `json:"image"`
	Price      float64   `json:"price"`
	PromoPrice *float64  `json:"promo_price"`
	Quantity   int       `json:"quantity"`
	Stock      int       `json:"stock"`
}

// EffectivePrice returns the promo price when set, the regular price otherwise.
func (i *Item) EffectivePrice() float64 {
	if i.PromoPrice != nil {
		return *i.PromoPrice
	}
	return i.Price
}

// Cart is the per-session cart. Totals are derived values, recomputed by
// Recalculate after every mutation and never set independently.
type Cart struct {
	Items        []Item  `json:"items"`
	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shipping_cost"`
	Discount     float64 `json:"discount"`
	PromoCode    string  `json:"promo_code"`
	Total        float64 `json:"total"`
}

// Recalculate restores the cart invariant:
// total == max(0, round(subtotal + shipping - discount, 2)).
func (c *Cart) Recalculate() {
	var subtotal float64
	for _, item := range c.Items {
		subtotal += item.EffectivePrice() * float64(item.Quantity)
	}
	c.Subtotal = utils.Round2(subtotal)

	total := utils.Round2(c.Subtotal + c.ShippingCost - c.Discount)
	if total < 0 {
		total = 0
	}
	c.Total = total
}

// Find returns the index of the line for productID, or -1.
func (c *Cart) Find(productID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) clone() *Cart {
	dup := *c
	dup.Items = make([]Item, len(c.Items))
	copy(dup.Items, c.Items)
	return &dup
}
