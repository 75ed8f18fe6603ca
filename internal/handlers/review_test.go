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

func newReviewApp(t *testing.T, db *gorm.DB) (*fiber.App, string) {
	t.Helper()

	cfg := &config.Config{JWTSecret: "test-secret", TokenExpires: time.Hour}
	handler := NewReviewHandler(db, services.NewAuditService(db))

	app := fiber.New()
	app.Get("/api/products/:slug/reviews", handler.ListProductReviews)
	app.Post("/api/products/:slug/reviews", handler.SubmitReview)

	admin := app.Group("/api/admin", middleware.AdminAuth(cfg))
	admin.Get("/reviews", handler.ListReviews)
	admin.Put("/reviews/:id/status", handler.UpdateReviewStatus)
	admin.Delete("/reviews/:id", handler.DeleteReview)

	account := seedAdmin(t, db, "admin@invithe.example", "s3cret-password")
	token, err := utils.GenerateToken(cfg.JWTSecret, account.ID, account.Email, cfg.TokenExpires)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return app, token
}

func reviewForm() fiber.Map {
	return fiber.Map{
		"customer_name":  "Alice Martin",
		"customer_email": "alice@example.com",
		"rating":         5,
		"comment":        "La meilleure tarte au citron de la ville, fondante à souhait.",
	}
}

func TestSubmitReviewPendingModeration(t *testing.T) {
	db := newTestDB(t)
	app, _ := newReviewApp(t, db)

	product := createProduct(t, db, "Tarte citron", 10.00, 5)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/products/"+product.Slug+"/reviews", reviewForm(), nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var stored models.Review
	assert.NoError(t, db.First(&stored, "product_id = ?", product.ID).Error)
	assert.Equal(t, models.ReviewStatusPending, stored.Status)
	assert.Equal(t, 5, stored.Rating)

	// Pending reviews never show on the storefront.
	listResp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/products/"+product.Slug+"/reviews", nil, nil))
	assert.NoError(t, err)

	var reviews []models.Review
	env := decodeEnvelope(t, listResp)
	assert.NoError(t, json.Unmarshal(env.Data, &reviews))
	assert.Empty(t, reviews)
}

func TestSubmitReviewHoneypot(t *testing.T) {
	db := newTestDB(t)
	app, _ := newReviewApp(t, db)

	product := createProduct(t, db, "Tarte citron", 10.00, 5)

	form := reviewForm()
	form["website"] = "https://spam.example"

	// Bots get the normal answer but nothing is stored.
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/products/"+product.Slug+"/reviews", form, nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var count int64
	db.Model(&models.Review{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSubmitReviewValidation(t *testing.T) {
	db := newTestDB(t)
	app, _ := newReviewApp(t, db)

	product := createProduct(t, db, "Tarte citron", 10.00, 5)

	for name, mutate := range map[string]func(fiber.Map){
		"rating too high":   func(f fiber.Map) { f["rating"] = 6 },
		"rating missing":    func(f fiber.Map) { f["rating"] = 0 },
		"comment too short": func(f fiber.Map) { f["comment"] = "bof" },
		"bad email":         func(f fiber.Map) { f["customer_email"] = "not-an-email" },
	} {
		form := reviewForm()
		mutate(form)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/products/"+product.Slug+"/reviews", form, nil))
		assert.NoError(t, err, name)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
	}

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/products/introuvable/reviews", reviewForm(), nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReviewModeration(t *testing.T) {
	db := newTestDB(t)
	app, token := newReviewApp(t, db)

	product := createProduct(t, db, "Tarte citron", 10.00, 5)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/products/"+product.Slug+"/reviews", reviewForm(), nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var review models.Review
	assert.NoError(t, db.First(&review, "product_id = ?", product.ID).Error)

	req := jsonRequest(t, http.MethodPut, "/api/admin/reviews/"+review.ID.String()+"/status", fiber.Map{
		"status": models.ReviewStatusApproved,
	}, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	modResp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, modResp.StatusCode)

	// Approved reviews become visible on the storefront.
	listResp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/products/"+product.Slug+"/reviews", nil, nil))
	assert.NoError(t, err)

	var reviews []models.Review
	env := decodeEnvelope(t, listResp)
	assert.NoError(t, json.Unmarshal(env.Data, &reviews))
	assert.Len(t, reviews, 1)
	assert.Equal(t, models.ReviewStatusApproved, reviews[0].Status)

	var logs []models.AuditLog
	assert.NoError(t, db.Find(&logs, "action = ?", services.AuditReviewModeration).Error)
	assert.Len(t, logs, 1)
	assert.Contains(t, logs[0].Details, "approved")
}

func TestReviewModerationRejectsOtherStatuses(t *testing.T) {
	db := newTestDB(t)
	app, token := newReviewApp(t, db)

	product := createProduct(t, db, "Tarte citron", 10.00, 5)
	review := models.Review{
		ProductID:     product.ID,
		CustomerName:  "Alice Martin",
		CustomerEmail: "alice@example.com",
		Rating:        4,
		Comment:       "Très bonne tarte, je recommande vivement.",
		Status:        models.ReviewStatusPending,
	}
	assert.NoError(t, db.Create(&review).Error)

	req := jsonRequest(t, http.MethodPut, "/api/admin/reviews/"+review.ID.String()+"/status", fiber.Map{
		"status": "pending",
	}, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteReview(t *testing.T) {
	db := newTestDB(t)
	app, token := newReviewApp(t, db)

	product := createProduct(t, db, "Tarte citron", 10.00, 5)
	review := models.Review{
		ProductID:     product.ID,
		CustomerName:  "Alice Martin",
		CustomerEmail: "alice@example.com",
		Rating:        1,
		Comment:       "Commentaire injurieux qui n'a rien à faire ici.",
		Status:        models.ReviewStatusPending,
	}
	assert.NoError(t, db.Create(&review).Error)

	req := jsonRequest(t, http.MethodDelete, "/api/admin/reviews/"+review.ID.String(), nil, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&models.Review{}).Count(&count)
	assert.Equal(t, int64(0), count)

	var logs []models.AuditLog
	assert.NoError(t, db.Find(&logs, "action = ?", services.AuditReviewDelete).Error)
	assert.Len(t, logs, 1)
}

func TestListReviewsFilterAndCounts(t *testing.T) {
	db := newTestDB(t)
	app, token := newReviewApp(t, db)

	product := createProduct(t, db, "Tarte citron", 10.00, 5)
	for _, status := range []string{
		models.ReviewStatusPending,
		models.ReviewStatusApproved,
		models.ReviewStatusApproved,
	} {
		review := models.Review{
			ProductID:     product.ID,
			CustomerName:  "Alice Martin",
			CustomerEmail: "alice@example.com",
			Rating:        4,
			Comment:       "Très bonne adresse, pâtisseries toujours fraîches.",
			Status:        status,
		}
		assert.NoError(t, db.Create(&review).Error)
	}

	req := jsonRequest(t, http.MethodGet, "/api/admin/reviews?status=approved", nil, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data   []models.Review  `json:"data"`
		Counts map[string]int64 `json:"counts"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Data, 2)
	assert.Equal(t, int64(1), body.Counts[models.ReviewStatusPending])
	assert.Equal(t, int64(2), body.Counts[models.ReviewStatusApproved])

	req = jsonRequest(t, http.MethodGet, "/api/admin/reviews?status=bogus", nil, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
