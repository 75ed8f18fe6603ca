package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fixed order lifecycle enumeration.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // created, awaiting payment
	OrderStatusPaid      OrderStatus = "paid"      // payment confirmed by the provider
	OrderStatusPreparing OrderStatus = "preparing" // in the kitchen
	OrderStatusReady     OrderStatus = "ready"     // ready for pickup
	OrderStatusShipped   OrderStatus = "shipped"   // handed to the courier
	OrderStatusDelivered OrderStatus = "delivered" // received by the customer
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatuses lists every accepted status value.
var ValidOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValid reports whether s is part of the fixed enumeration.
func (s OrderStatus) IsValid() bool {
	for _, v := range ValidOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

const (
	DeliveryMethodPickup   = "pickup"
	DeliveryMethodDelivery = "delivery"
)

// Order is the durable record of a checkout. Totals are frozen at creation
// and never recalculated; only the status moves afterwards.
type Order struct {
	BaseModel
	OrderNumber      string      `gorm:"uniqueIndex" json:"order_number"`
	CustomerName     string      `json:"customer_name"`
	CustomerEmail    string      `json:"customer_email"`
	CustomerPhone    string      `json:"customer_phone"`
	DeliveryMethod   string      `json:"delivery_method"`
	ShippingAddress  string      `json:"shipping_address"`
	Status           OrderStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Subtotal         float64     `json:"subtotal"`
	ShippingCost     float64     `json:"shipping_cost"`
	Discount         float64     `json:"discount"`
	Total            float64     `json:"total"`
	PromoCode        string      `json:"promo_code"`
	PaymentSessionID string      `json:"payment_session_id"`
	Notes            string      `json:"notes"`
	PlacedAt         time.Time   `json:"placed_at"`
	Items            []OrderItem `json:"items,omitempty"`
}

// OrderItem is an immutable line snapshot taken at checkout time.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalPrice  float64   `json:"total_price"`
}
