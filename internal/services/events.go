package services

// EventPublisher fans order lifecycle events out to the message broker.
// Implementations are best-effort: a broker failure never fails the
// operation that emitted the event.
type EventPublisher interface {
	PublishOrderEvent(eventType string, payload map[string]any) error
}

// Notifier delivers customer and admin notifications. Failures are logged
// by callers, never propagated.
type Notifier interface {
	SendOrderConfirmation(order *OrderNotification) error
	SendAdminAlert(orderNumber string, total float64) error
}

// OrderNotification is the frozen order snapshot a notification is built
// from.
type OrderNotification struct {
	OrderNumber     string
	CustomerName    string
	CustomerEmail   string
	Items           []OrderItemNotification
	Subtotal        float64
	ShippingCost    float64
	Discount        float64
	Total           float64
	DeliveryMethod  string
	ShippingAddress string
}

// OrderItemNotification is one line of a notification.
type OrderItemNotification struct {
	Name       string
	Quantity   int
	UnitPrice  float64
	TotalPrice float64
}
