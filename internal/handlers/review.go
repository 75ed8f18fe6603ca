package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/invithe/internal/middleware"
	"github.com/example/invithe/internal/models"
	"github.com/example/invithe/internal/services"
	"github.com/example/invithe/internal/utils"
)

// ReviewHandler serves public review submission and the admin moderation
// surface. Submissions are held pending until an operator approves them.
type ReviewHandler struct {
	db    *gorm.DB
	audit *services.AuditService
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(db *gorm.DB, audit *services.AuditService) *ReviewHandler {
	return &ReviewHandler{db: db, audit: audit}
}

type reviewRequest struct {
	CustomerName  string `json:"customer_name" validate:"required,min=2,max=100"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Comment       string `json:"comment" validate:"required,min=10,max=2000"`
	// Honeypot: hidden on the form, so any value means a bot filled it.
	Website string `json:"website"`
}

// ListProductReviews returns the approved reviews for a product, newest
// first. Pending and rejected reviews never leave the back office.
func (h *ReviewHandler) ListProductReviews(c *fiber.Ctx) error {
	var product models.Product
	if err := h.db.First(&product, "slug = ? AND is_active = ?", c.Params("slug"), true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var reviews []models.Review
	if err := h.db.
		Where("product_id = ? AND status = ?", product.ID, models.ReviewStatusApproved).
		Order("created_at desc").
		Limit(20).
		Find(&reviews).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": reviews})
}

// SubmitReview records a customer review as pending moderation. Honeypot
// submissions are silently accepted and discarded.
func (h *ReviewHandler) SubmitReview(c *fiber.Ctx) error {
	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid review payload")
	}

	var product models.Product
	if err := h.db.First(&product, "slug = ? AND is_active = ?", c.Params("slug"), true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	if req.Website != "" {
		// Bots get the same answer as humans, minus the row.
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"message": "Merci pour votre avis ! Il sera publié après modération.",
		})
	}

	review := models.Review{
		ProductID:     product.ID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Rating:        req.Rating,
		Comment:       req.Comment,
		Status:        models.ReviewStatusPending,
	}
	if err := h.db.Create(&review).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Merci pour votre avis ! Il sera publié après modération.",
	})
}

// ListReviews returns reviews for moderation, optionally filtered by
// status, with per-status counts for the moderation tabs.
func (h *ReviewHandler) ListReviews(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	query := h.db.Model(&models.Review{})
	if status := c.Query("status"); status != "" {
		if status != models.ReviewStatusPending &&
			status != models.ReviewStatusApproved &&
			status != models.ReviewStatusRejected {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var reviews []models.Review
	if err := query.Preload("Product").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&reviews).Error; err != nil {
		return err
	}

	counts := fiber.Map{}
	for _, status := range []string{models.ReviewStatusPending, models.ReviewStatusApproved, models.ReviewStatusRejected} {
		var n int64
		if err := h.db.Model(&models.Review{}).Where("status = ?", status).Count(&n).Error; err != nil {
			return err
		}
		counts[status] = n
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    reviews,
		"counts":  counts,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type reviewStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// UpdateReviewStatus approves or rejects a pending review.
func (h *ReviewHandler) UpdateReviewStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req reviewStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "status must be approved or rejected")
	}

	var review models.Review
	if err := h.db.First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "review not found")
		}
		return err
	}

	if err := h.db.Model(&review).Update("status", req.Status).Error; err != nil {
		return err
	}
	review.Status = req.Status

	if email, ok := middleware.GetCurrentAdminEmail(c); ok {
		h.audit.Record(c.Context(), email, services.AuditReviewModeration,
			fmt.Sprintf("Avis %s → %s", review.ID, review.Status))
	}

	return c.JSON(fiber.Map{"success": true, "data": review})
}

// DeleteReview removes a review outright.
func (h *ReviewHandler) DeleteReview(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var review models.Review
	if err := h.db.First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "review not found")
		}
		return err
	}

	if err := h.db.Delete(&review).Error; err != nil {
		return err
	}

	if email, ok := middleware.GetCurrentAdminEmail(c); ok {
		h.audit.Record(c.Context(), email, services.AuditReviewDelete,
			fmt.Sprintf("Avis %s supprimé", review.ID))
	}

	return c.JSON(fiber.Map{"success": true})
}
