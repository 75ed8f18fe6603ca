package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/invithe/internal/middleware"
	"github.com/example/invithe/internal/models"
	"github.com/example/invithe/internal/services"
	"github.com/example/invithe/internal/utils"
)

// PromoHandler manages admin promo code CRUD.
type PromoHandler struct {
	db    *gorm.DB
	audit *services.AuditService
}

// NewPromoHandler constructs PromoHandler.
func NewPromoHandler(db *gorm.DB, audit *services.AuditService) *PromoHandler {
	return &PromoHandler{db: db, audit: audit}
}

// ListPromoCodes returns paginated promo codes.
func (h *PromoHandler) ListPromoCodes(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	var promos []models.PromoCode
	var total int64

	if err := h.db.Model(&models.PromoCode{}).Count(&total).Error; err != nil {
		return err
	}

	if err := h.db.Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at desc").
		Find(&promos).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    promos,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type promoCodeRequest struct {
	Code           string     `json:"code" validate:"required"`
	Description    string     `json:"description"`
	DiscountType   string     `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue  float64    `json:"discount_value" validate:"required,gt=0"`
	MinOrderAmount *float64   `json:"min_order_amount"`
	MaxUses        *int       `json:"max_uses"`
	ExpiresAt      *time.Time `json:"expires_at"`
	IsActive       *bool      `json:"is_active"`
}

// CreatePromoCode adds a promo code. Codes are stored uppercase.
func (h *PromoHandler) CreatePromoCode(c *fiber.Ctx) error {
	var req promoCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid promo payload")
	}

	promo := models.PromoCode{
		Code:           strings.ToUpper(strings.TrimSpace(req.Code)),
		Description:    req.Description,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		MaxUses:        req.MaxUses,
		ExpiresAt:      req.ExpiresAt,
		IsActive:       true,
	}
	if req.IsActive != nil {
		promo.IsActive = *req.IsActive
	}

	if err := h.db.Create(&promo).Error; err != nil {
		return err
	}

	if email, ok := middleware.GetCurrentAdminEmail(c); ok {
		h.audit.Record(c.Context(), email, services.AuditPromoCreate,
			fmt.Sprintf("Code promo %s créé", promo.Code))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": promo})
}

// UpdatePromoCode edits a promo code.
func (h *PromoHandler) UpdatePromoCode(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var promo models.PromoCode
	if err := h.db.First(&promo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "promo code not found")
		}
		return err
	}

	var req promoCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid promo payload")
	}

	updates := map[string]any{
		"code":             strings.ToUpper(strings.TrimSpace(req.Code)),
		"description":      req.Description,
		"discount_type":    req.DiscountType,
		"discount_value":   req.DiscountValue,
		"min_order_amount": req.MinOrderAmount,
		"max_uses":         req.MaxUses,
		"expires_at":       req.ExpiresAt,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := h.db.Model(&promo).Updates(updates).Error; err != nil {
		return err
	}

	if email, ok := middleware.GetCurrentAdminEmail(c); ok {
		h.audit.Record(c.Context(), email, services.AuditPromoUpdate,
			fmt.Sprintf("Code promo %s modifié", promo.Code))
	}

	return c.JSON(fiber.Map{"success": true, "data": promo})
}

// DeletePromoCode removes a promo code.
func (h *PromoHandler) DeletePromoCode(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var promo models.PromoCode
	if err := h.db.First(&promo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "promo code not found")
		}
		return err
	}

	if err := h.db.Delete(&promo).Error; err != nil {
		return err
	}

	if email, ok := middleware.GetCurrentAdminEmail(c); ok {
		h.audit.Record(c.Context(), email, services.AuditPromoDelete,
			fmt.Sprintf("Code promo %s supprimé", promo.Code))
	}

	return c.JSON(fiber.Map{"success": true})
}
