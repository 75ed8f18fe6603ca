package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/invithe/internal/config"
	"github.com/example/invithe/internal/models"
	"github.com/example/invithe/internal/services"
	"github.com/example/invithe/internal/utils"
)

// AuthHandler manages admin authentication.
type AuthHandler struct {
	db    *gorm.DB
	cfg   *config.Config
	audit *services.AuditService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, audit *services.AuditService) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, audit: audit}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates an admin account and returns a JWT.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "email and password are required")
	}

	var admin models.Admin
	if err := h.db.First(&admin, "email = ?", req.Email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(admin.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, admin.ID, admin.Email, h.cfg.TokenExpires)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"token": token,
			"admin": fiber.Map{
				"id":    admin.ID,
				"email": admin.Email,
				"name":  admin.Name,
			},
		},
	})
}

// ListAuditLogs returns the audit trail newest first.
func (h *AuthHandler) ListAuditLogs(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	entries, total, err := h.audit.List(c.Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    entries,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}
