package models

import "time"

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// PromoCode is an admin-managed discount rule. Codes are stored uppercase
// and matched case-insensitively.
type PromoCode struct {
	BaseModel
	Code           string     `gorm:"uniqueIndex" json:"code"`
	Description    string     `json:"description"`
	DiscountType   string     `gorm:"type:varchar(20)" json:"discount_type"`
	DiscountValue  float64    `json:"discount_value"`
	MinOrderAmount *float64   `json:"min_order_amount"`
	MaxUses        *int       `json:"max_uses"`
	CurrentUses    int        `json:"current_uses"`
	ExpiresAt      *time.Time `json:"expires_at"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
}
