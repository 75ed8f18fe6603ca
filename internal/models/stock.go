package models

import "github.com/google/uuid"

const (
	StockReasonSale       = "sale"
	StockReasonRestock    = "restock"
	StockReasonAdjustment = "adjustment"
)

// StockMovement is an append-only audit trail of stock changes. Rows are
// never updated or deleted.
type StockMovement struct {
	BaseModel
	ProductID      uuid.UUID  `gorm:"type:uuid;index" json:"product_id"`
	Product        *Product   `json:"product,omitempty"`
	QuantityChange int        `json:"quantity_change"`
	Reason         string     `json:"reason"`
	OrderID        *uuid.UUID `gorm:"type:uuid" json:"order_id"`
}
