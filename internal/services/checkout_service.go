package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/example/invithe/internal/cart"
	"github.com/example/invithe/internal/models"
	"github.com/example/invithe/internal/utils"
)

// CustomerInfo is the checkout form, validated by the handler.
type CustomerInfo struct {
	Name           string
	Email          string
	Phone          string
	DeliveryMethod string
	Address        string
	City           string
	PostalCode     string
	Notes          string
}

// CheckoutResult carries the persisted order and the provider redirect.
type CheckoutResult struct {
	Order       *models.Order
	RedirectURL string
}

// CheckoutService turns a session cart into a durable pending order plus a
// hosted payment redirect. Nothing client-asserted is trusted: every line
// is repriced from the live catalog and stock is re-checked before the
// order is written.
type CheckoutService struct {
	db      *gorm.DB
	gateway PaymentGateway
	events  EventPublisher
	appURL  string
}

// NewCheckoutService constructs CheckoutService.
func NewCheckoutService(db *gorm.DB, gateway PaymentGateway, events EventPublisher, appURL string) *CheckoutService {
	return &CheckoutService{db: db, gateway: gateway, events: events, appURL: appURL}
}

// Checkout validates the cart against the live catalog, persists a pending
// order with frozen totals, and requests a hosted payment session.
//
// A provider failure after the order is written leaves it pending on
// purpose: creation is at-least-once and stale pending orders are an
// operational cleanup concern, not a transactional one.
func (s *CheckoutService) Checkout(ctx context.Context, c *cart.Cart, info CustomerInfo) (*CheckoutResult, error) {
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	// Authoritative stock and price check. The cart's cached prices and
	// stock snapshots are advisory only.
	type pricedLine struct {
		product models.Product
		qty     int
	}
	lines := make([]pricedLine, 0, len(c.Items))
	var subtotal float64
	for _, item := range c.Items {
		var product models.Product
		if err := s.db.WithContext(ctx).First(&product, "id = ?", item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOutOfStock
			}
			return nil, err
		}
		if !product.IsActive || product.Stock < item.Quantity {
			return nil, ErrOutOfStock
		}
		lines = append(lines, pricedLine{product: product, qty: item.Quantity})
		subtotal += product.EffectivePrice() * float64(item.Quantity)
	}
	subtotal = utils.Round2(subtotal)

	shippingCost := utils.CalculateShipping(subtotal, info.DeliveryMethod)

	// The discount is carried over verbatim from the cart; the promo's
	// current state is not re-validated here.
	total := utils.Round2(subtotal + shippingCost - c.Discount)
	if total < 0 {
		total = 0
	}

	var shippingAddress string
	if info.DeliveryMethod == models.DeliveryMethodDelivery {
		encoded, err := json.Marshal(map[string]string{
			"address":    info.Address,
			"city":       info.City,
			"postalCode": info.PostalCode,
		})
		if err != nil {
			return nil, err
		}
		shippingAddress = string(encoded)
	}

	order := models.Order{
		OrderNumber:     utils.GenerateOrderNumber(),
		CustomerName:    info.Name,
		CustomerEmail:   info.Email,
		CustomerPhone:   info.Phone,
		DeliveryMethod:  info.DeliveryMethod,
		ShippingAddress: shippingAddress,
		Status:          models.OrderStatusPending,
		Subtotal:        subtotal,
		ShippingCost:    shippingCost,
		Discount:        c.Discount,
		Total:           total,
		PromoCode:       c.PromoCode,
		Notes:           info.Notes,
		PlacedAt:        time.Now(),
	}

	for _, line := range lines {
		unitPrice := line.product.EffectivePrice()
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   line.product.ID,
			ProductName: line.product.Name,
			Quantity:    line.qty,
			UnitPrice:   unitPrice,
			TotalPrice:  utils.Round2(unitPrice * float64(line.qty)),
		})
	}

	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishOrderEvent("order.created", map[string]any{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"total":        order.Total,
		}); err != nil {
			log.Printf("[Checkout] failed to publish order.created for %s: %v", order.OrderNumber, err)
		}
	}

	session, err := s.gateway.CreateSession(ctx, s.buildSessionRequest(&order, lineItemsFromOrder(&order)))
	if err != nil {
		// The pending order stays in place; the visitor retries from the
		// cart and reconciliation picks up whatever never gets paid.
		log.Printf("[Checkout] payment session creation failed for %s: %v", order.OrderNumber, err)
		return nil, ErrPaymentProvider
	}

	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("payment_session_id", session.ID).Error; err != nil {
		log.Printf("[Checkout] failed to record session id for %s: %v", order.OrderNumber, err)
	}

	return &CheckoutResult{Order: &order, RedirectURL: session.URL}, nil
}

func (s *CheckoutService) buildSessionRequest(order *models.Order, items []LineItem) SessionRequest {
	return SessionRequest{
		LineItems:     items,
		CustomerEmail: order.CustomerEmail,
		SuccessURL:    s.appURL + "/confirmation?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.appURL + "/panier?cancelled=true",
		Metadata: map[string]string{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
		},
	}
}

// lineItemsFromOrder converts the frozen order lines to provider line
// items in cents, appending shipping as its own line when charged.
func lineItemsFromOrder(order *models.Order) []LineItem {
	items := make([]LineItem, 0, len(order.Items)+1)
	for _, item := range order.Items {
		items = append(items, LineItem{
			Name:       item.ProductName,
			UnitAmount: toCents(item.UnitPrice),
			Quantity:   item.Quantity,
		})
	}
	if order.ShippingCost > 0 {
		items = append(items, LineItem{
			Name:       "Frais de livraison",
			UnitAmount: toCents(order.ShippingCost),
			Quantity:   1,
		})
	}
	return items
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
