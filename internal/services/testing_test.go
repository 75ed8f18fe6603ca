package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/invithe/internal/database"
	"github.com/example/invithe/internal/models"
)

// newTestDB opens a private in-memory database with the full schema. Each
// test gets its own so parallel tests never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// createProduct persists an active product with the given price and stock.
func createProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()

	product := models.Product{
		Slug:     fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]),
		Name:     name,
		Price:    price,
		Stock:    stock,
		IsActive: true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return &product
}

// deactivateProduct flips is_active off. Done as an update because the
// column carries a true default that would override a zero value on insert.
func deactivateProduct(t *testing.T, db *gorm.DB, product *models.Product) {
	t.Helper()

	if err := db.Model(product).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate product: %v", err)
	}
	product.IsActive = false
}

// mockGateway is a testify mock over the payment provider surface.
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *mockGateway) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *mockGateway) VerifyWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	args := m.Called(payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WebhookEvent), args.Error(1)
}

// countingNotifier records how many notifications went out.
type countingNotifier struct {
	confirmations int
	adminAlerts   int
	lastOrder     *OrderNotification
}

func (n *countingNotifier) SendOrderConfirmation(order *OrderNotification) error {
	n.confirmations++
	n.lastOrder = order
	return nil
}

func (n *countingNotifier) SendAdminAlert(orderNumber string, total float64) error {
	n.adminAlerts++
	return nil
}

// recordingPublisher captures published event types in order.
type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) PublishOrderEvent(eventType string, payload map[string]any) error {
	p.events = append(p.events, eventType)
	return nil
}
