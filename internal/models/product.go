package models

import (
	"github.com/google/uuid"
)

type Category struct {
	BaseModel
	Slug         string    `gorm:"uniqueIndex" json:"slug"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	DisplayOrder int       `json:"display_order"`
	Products     []Product `json:"products,omitempty"`
}

type Product struct {
	BaseModel
	Slug             string     `gorm:"uniqueIndex" json:"slug"`
	Name             string     `json:"name"`
	ShortDescription string     `json:"short_description"`
	LongDescription  string     `json:"long_description"`
	Price            float64    `json:"price"`
	PromoPrice       *float64   `json:"promo_price"`
	Stock            int        `json:"stock"`
	StockThreshold   int        `gorm:"default:5" json:"stock_threshold"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	Images           string     `json:"images"`
	CategoryID       *uuid.UUID `gorm:"type:uuid" json:"category_id"`
	Category         *Category  `json:"category,omitempty"`
}

// EffectivePrice returns the promo price when set, the regular price otherwise.
func (p *Product) EffectivePrice() float64 {
	if p.PromoPrice != nil {
		return *p.PromoPrice
	}
	return p.Price
}
