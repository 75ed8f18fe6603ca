package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/example/invithe/internal/config"
	"github.com/example/invithe/internal/middleware"
	"github.com/example/invithe/internal/models"
	"github.com/example/invithe/internal/services"
	"github.com/example/invithe/internal/utils"
)

func newAuthApp(t *testing.T, db *gorm.DB) (*fiber.App, *config.Config) {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:    "test-secret",
		TokenExpires: time.Hour,
	}

	handler := NewAuthHandler(db, cfg, services.NewAuditService(db))
	orderHandler := NewOrderHandler(services.NewOrderService(db), services.NewAuditService(db))

	app := fiber.New()
	app.Post("/api/admin/login", handler.Login)
	admin := app.Group("/api/admin", middleware.AdminAuth(cfg))
	admin.Get("/orders", orderHandler.ListOrders)
	return app, cfg
}

func seedAdmin(t *testing.T, db *gorm.DB, email, password string) *models.Admin {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	admin := models.Admin{Email: email, Name: "Admin", PasswordHash: hash}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	return &admin
}

func TestAdminLogin(t *testing.T) {
	db := newTestDB(t)
	app, _ := newAuthApp(t, db)

	seedAdmin(t, db, "admin@invithe.example", "s3cret-password")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/admin/login", fiber.Map{
		"email":    "admin@invithe.example",
		"password": "s3cret-password",
	}, nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Token string `json:"token"`
	}
	env := decodeEnvelope(t, resp)
	assert.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.Token)

	// The token opens the admin surface.
	req := jsonRequest(t, http.MethodGet, "/api/admin/orders", nil, nil)
	req.Header.Set("Authorization", "Bearer "+data.Token)
	protected, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, protected.StatusCode)
}

func TestAdminLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	app, _ := newAuthApp(t, db)

	seedAdmin(t, db, "admin@invithe.example", "s3cret-password")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/admin/login", fiber.Map{
		"email":    "admin@invithe.example",
		"password": "wrong",
	}, nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminLoginUnknownAccount(t *testing.T) {
	db := newTestDB(t)
	app, _ := newAuthApp(t, db)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/admin/login", fiber.Map{
		"email":    "ghost@invithe.example",
		"password": "whatever",
	}, nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	db := newTestDB(t)
	app, _ := newAuthApp(t, db)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/admin/orders", nil, nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := jsonRequest(t, http.MethodGet, "/api/admin/orders", nil, nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
