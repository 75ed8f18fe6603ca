package services

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/invithe/internal/models"
)

// FulfillmentService consumes payment-provider confirmations and drives
// the automatic order transitions. Both the webhook and the return-URL
// confirmation call into it for the same order, so every transition here
// must be safe to apply twice.
type FulfillmentService struct {
	db       *gorm.DB
	notifier Notifier
	events   EventPublisher
}

// NewFulfillmentService constructs FulfillmentService.
func NewFulfillmentService(db *gorm.DB, notifier Notifier, events EventPublisher) *FulfillmentService {
	return &FulfillmentService{db: db, notifier: notifier, events: events}
}

// MarkPaid applies the pending → paid transition: records the provider
// session, decrements stock with one StockMovement per line, and consumes
// a promo use, all in a single transaction. A second invocation for the
// same order observes the paid status and returns without side effects.
//
// Stock decrements are conditional (stock >= quantity); if any line cannot
// be covered the whole transaction rolls back and the order stays pending
// for operator reconciliation. Stock never goes negative.
func (s *FulfillmentService) MarkPaid(ctx context.Context, orderID uuid.UUID, providerSessionID string) (*models.Order, error) {
	var order models.Order
	alreadyPaid := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
			Updates(map[string]any{
				"status":             models.OrderStatusPaid,
				"payment_session_id": providerSessionID,
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			// Not pending anymore: either the other confirmation path got
			// here first (fine, no side effects) or the session expired.
			if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrOrderNotFound
				}
				return err
			}
			if order.Status == models.OrderStatusPaid {
				alreadyPaid = true
				return nil
			}
			return ErrInvalidStatus
		}

		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			return err
		}

		for _, item := range order.Items {
			dec := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if dec.Error != nil {
				return dec.Error
			}
			if dec.RowsAffected == 0 {
				return ErrOutOfStock
			}

			movement := models.StockMovement{
				ProductID:      item.ProductID,
				QuantityChange: -item.Quantity,
				Reason:         models.StockReasonSale,
				OrderID:        &order.ID,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
		}

		if order.PromoCode != "" {
			if err := tx.Model(&models.PromoCode{}).
				Where("code = ?", order.PromoCode).
				Update("current_uses", gorm.Expr("current_uses + 1")).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if alreadyPaid {
		return &order, nil
	}

	s.notifyPaid(&order)
	return &order, nil
}

// MarkCancelled applies the pending → cancelled transition on provider
// session expiry. No stock or notification side effects; an already
// cancelled order is a no-op.
func (s *FulfillmentService) MarkCancelled(ctx context.Context, orderID uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
		Update("status", models.OrderStatusCancelled)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		var order models.Order
		if err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.Status == models.OrderStatusCancelled {
			return nil
		}
		return ErrInvalidStatus
	}

	if s.events != nil {
		if err := s.events.PublishOrderEvent("order.cancelled", map[string]any{
			"order_id": orderID.String(),
		}); err != nil {
			log.Printf("[Fulfillment] failed to publish order.cancelled for %s: %v", orderID, err)
		}
	}

	return nil
}

// notifyPaid fires the best-effort side effects of a successful payment.
// Failures are logged and swallowed; the status and stock changes stand.
func (s *FulfillmentService) notifyPaid(order *models.Order) {
	if s.notifier != nil {
		notification := buildOrderNotification(order)
		if err := s.notifier.SendOrderConfirmation(notification); err != nil {
			log.Printf("[Fulfillment] confirmation email failed for %s: %v", order.OrderNumber, err)
		}
		if err := s.notifier.SendAdminAlert(order.OrderNumber, order.Total); err != nil {
			log.Printf("[Fulfillment] admin alert failed for %s: %v", order.OrderNumber, err)
		}
	}

	if s.events != nil {
		if err := s.events.PublishOrderEvent("order.paid", map[string]any{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"total":        order.Total,
		}); err != nil {
			log.Printf("[Fulfillment] failed to publish order.paid for %s: %v", order.OrderNumber, err)
		}
	}
}

func buildOrderNotification(order *models.Order) *OrderNotification {
	notification := &OrderNotification{
		OrderNumber:     order.OrderNumber,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		Subtotal:        order.Subtotal,
		ShippingCost:    order.ShippingCost,
		Discount:        order.Discount,
		Total:           order.Total,
		DeliveryMethod:  order.DeliveryMethod,
		ShippingAddress: order.ShippingAddress,
	}
	for _, item := range order.Items {
		notification.Items = append(notification.Items, OrderItemNotification{
			Name:       item.ProductName,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}
	return notification
}
