package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/invithe/internal/database"
	"github.com/example/invithe/internal/models"
	"github.com/example/invithe/internal/services"
)

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

func createProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()

	product := models.Product{
		Slug:     fmt.Sprintf("%s-%s", strings.ReplaceAll(name, " ", "-"), uuid.NewString()[:8]),
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

func createPendingOrder(t *testing.T, db *gorm.DB, product *models.Product, quantity int) *models.Order {
	t.Helper()

	unitPrice := product.EffectivePrice()
	order := models.Order{
		OrderNumber:    "IGR-20260828-" + uuid.NewString()[:4],
		CustomerName:   "Alice Martin",
		CustomerEmail:  "alice@example.com",
		DeliveryMethod: models.DeliveryMethodPickup,
		Status:         models.OrderStatusPending,
		Subtotal:       unitPrice * float64(quantity),
		Total:          unitPrice * float64(quantity),
		PlacedAt:       time.Now(),
		Items: []models.OrderItem{{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			TotalPrice:  unitPrice * float64(quantity),
		}},
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	return &order
}

// fakeGateway lets tests script the payment provider per call.
type fakeGateway struct {
	createSession func(req services.SessionRequest) (*services.Session, error)
	getSession    func(sessionID string) (*services.Session, error)
	verifyWebhook func(payload []byte, signatureHeader string) (*services.WebhookEvent, error)
}

func (g *fakeGateway) CreateSession(_ context.Context, req services.SessionRequest) (*services.Session, error) {
	return g.createSession(req)
}

func (g *fakeGateway) GetSession(_ context.Context, sessionID string) (*services.Session, error) {
	return g.getSession(sessionID)
}

func (g *fakeGateway) VerifyWebhook(payload []byte, signatureHeader string) (*services.WebhookEvent, error) {
	return g.verifyWebhook(payload, signatureHeader)
}

// jsonRequest builds a JSON request carrying any cookies from a prior
// response, mirroring how the browser keeps its cart session.
func jsonRequest(t *testing.T, method, target string, body any, prior *http.Response) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if prior != nil {
		for _, cookie := range prior.Cookies() {
			req.AddCookie(cookie)
		}
	}
	return req
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	return env
}
