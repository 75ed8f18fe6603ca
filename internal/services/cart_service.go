package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/invithe/internal/cart"
	"github.com/example/invithe/internal/models"
)

// CartService applies visitor mutations to the session cart. Every lookup
// that guards a mutation (product existence, stock, promo state) runs
// against the live catalog, never the cart's cached snapshots.
type CartService struct {
	db    *gorm.DB
	store *cart.Store
}

// NewCartService constructs CartService.
func NewCartService(db *gorm.DB, store *cart.Store) *CartService {
	return &CartService{db: db, store: store}
}

// Get returns the session's cart, lazily initialized to the empty cart.
func (s *CartService) Get(sessionID string) *cart.Cart {
	return s.store.Load(sessionID)
}

// Clear drops the session's cart (after order confirmation).
func (s *CartService) Clear(sessionID string) {
	s.store.Clear(sessionID)
}

// Add inserts a product line or increments an existing one, snapshotting
// the product's current name, prices and image. The cart is left untouched
// when the product is missing, inactive, or short on stock.
func (s *CartService) Add(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*cart.Cart, error) {
	if quantity <= 0 {
		quantity = 1
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrNotFound
	}

	c := s.store.Load(sessionID)

	if idx := c.Find(productID); idx >= 0 {
		newQty := c.Items[idx].Quantity + quantity
		if newQty > product.Stock {
			return nil, ErrInsufficientStock
		}
		c.Items[idx].Quantity = newQty
	} else {
		if quantity > product.Stock {
			return nil, ErrInsufficientStock
		}
		c.Items = append(c.Items, cart.Item{
			ProductID:  product.ID,
			Name:       product.Name,
			Slug:       product.Slug,
			Image:      product.Images,
			Price:      product.Price,
			PromoPrice: product.PromoPrice,
			Quantity:   quantity,
			Stock:      product.Stock,
		})
	}

	c.Recalculate()
	s.store.Save(sessionID, c)
	return c, nil
}

// Update overwrites a line's quantity. A quantity of zero or less removes
// the line.
func (s *CartService) Update(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*cart.Cart, error) {
	c := s.store.Load(sessionID)

	idx := c.Find(productID)
	if idx < 0 {
		return nil, ErrNotFound
	}

	if quantity <= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	} else {
		var product models.Product
		if err := s.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		} else if err == nil && quantity > product.Stock {
			return nil, ErrInsufficientStock
		}
		c.Items[idx].Quantity = quantity
	}

	c.Recalculate()
	s.store.Save(sessionID, c)
	return c, nil
}

// Remove deletes a line. A missing line is a no-op, not an error.
func (s *CartService) Remove(sessionID string, productID uuid.UUID) *cart.Cart {
	c := s.store.Load(sessionID)

	if idx := c.Find(productID); idx >= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	}

	c.Recalculate()
	s.store.Save(sessionID, c)
	return c
}

// ApplyPromo validates a promo code (case-insensitively) against the cart's
// subtotal and, on success, stores the code and its computed discount. The
// cart is untouched on any validation failure.
func (s *CartService) ApplyPromo(ctx context.Context, sessionID, code string) (*cart.Cart, error) {
	var promo models.PromoCode
	if err := s.db.WithContext(ctx).
		First(&promo, "code = ?", strings.ToUpper(strings.TrimSpace(code))).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidPromo
		}
		return nil, err
	}

	c := s.store.Load(sessionID)

	if err := ValidatePromo(&promo, c.Subtotal, time.Now()); err != nil {
		return nil, err
	}

	c.PromoCode = promo.Code
	c.Discount = ComputeDiscount(&promo, c.Subtotal)
	c.Recalculate()
	s.store.Save(sessionID, c)
	return c, nil
}
