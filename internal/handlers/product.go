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

// ProductHandler serves the public catalog reads and the admin product
// surface, including restocks.
type ProductHandler struct {
	db    *gorm.DB
	audit *services.AuditService
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB, audit *services.AuditService) *ProductHandler {
	return &ProductHandler{db: db, audit: audit}
}

// ListProducts returns active products, optionally filtered by category slug.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{}).Where("is_active = ?", true)

	if categorySlug := c.Query("category"); categorySlug != "" {
		var category models.Category
		if err := h.db.First(&category, "slug = ?", categorySlug).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "category not found")
			}
			return err
		}
		query = query.Where("category_id = ?", category.ID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Preload("Category").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetProduct returns a single active product by slug.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := h.db.Preload("Category").
		First(&product, "slug = ? AND is_active = ?", c.Params("slug"), true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productRequest struct {
	Slug             string   `json:"slug" validate:"required"`
	Name             string   `json:"name" validate:"required"`
	ShortDescription string   `json:"short_description"`
	LongDescription  string   `json:"long_description"`
	Price            float64  `json:"price" validate:"required,gt=0"`
	PromoPrice       *float64 `json:"promo_price"`
	Stock            int      `json:"stock" validate:"gte=0"`
	StockThreshold   int      `json:"stock_threshold"`
	IsActive         *bool    `json:"is_active"`
	Images           string   `json:"images"`
	CategoryID       string   `json:"category_id"`
}

// CreateProduct adds a product to the catalog.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product payload")
	}

	product := models.Product{
		Slug:             req.Slug,
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		Price:            req.Price,
		PromoPrice:       req.PromoPrice,
		Stock:            req.Stock,
		StockThreshold:   req.StockThreshold,
		IsActive:         true,
		Images:           req.Images,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
		}
		product.CategoryID = &id
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	if email, ok := middleware.GetCurrentAdminEmail(c); ok {
		h.audit.Record(c.Context(), email, services.AuditProductCreate,
			fmt.Sprintf("Produit %s créé", product.Name))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct edits a product. Stock is not editable here; restocks go
// through UpdateStock so the movement ledger stays complete.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product payload")
	}

	updates := map[string]any{
		"slug":              req.Slug,
		"name":              req.Name,
		"short_description": req.ShortDescription,
		"long_description":  req.LongDescription,
		"price":             req.Price,
		"promo_price":       req.PromoPrice,
		"stock_threshold":   req.StockThreshold,
		"images":            req.Images,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
		}
		updates["category_id"] = categoryID
	}

	if err := h.db.Model(&product).Updates(updates).Error; err != nil {
		return err
	}

	if email, ok := middleware.GetCurrentAdminEmail(c); ok {
		h.audit.Record(c.Context(), email, services.AuditProductUpdate,
			fmt.Sprintf("Produit %s modifié", product.Name))
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product from the catalog.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	if err := h.db.Delete(&product).Error; err != nil {
		return err
	}

	if email, ok := middleware.GetCurrentAdminEmail(c); ok {
		h.audit.Record(c.Context(), email, services.AuditProductDelete,
			fmt.Sprintf("Produit %s supprimé", product.Name))
	}

	return c.JSON(fiber.Map{"success": true})
}

type stockUpdateRequest struct {
	Stock  int    `json:"stock" validate:"gte=0"`
	Reason string `json:"reason"`
}

// UpdateStock sets a product's absolute stock level and appends the signed
// delta to the movement ledger.
func (h *ProductHandler) UpdateStock(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req stockUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid stock value")
	}

	reason := req.Reason
	if reason == "" {
		reason = models.StockReasonAdjustment
	}

	var product models.Product
	var previousStock int
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			return err
		}

		// Update writes the new value back into product.Stock, so keep the
		// old level for the movement and the audit message.
		previousStock = product.Stock
		quantityChange := req.Stock - previousStock
		if err := tx.Model(&product).Update("stock", req.Stock).Error; err != nil {
			return err
		}

		movement := models.StockMovement{
			ProductID:      product.ID,
			QuantityChange: quantityChange,
			Reason:         reason,
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	if email, ok := middleware.GetCurrentAdminEmail(c); ok {
		h.audit.Record(c.Context(), email, services.AuditStockUpdate,
			fmt.Sprintf("Stock %s : %d → %d (%s)", product.Name, previousStock, req.Stock, reason))
	}

	product.Stock = req.Stock
	return c.JSON(fiber.Map{"success": true, "data": product})
}

// ListStockMovements returns the movement ledger, optionally scoped to a
// product.
func (h *ProductHandler) ListStockMovements(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.StockMovement{})

	if productID := c.Query("product_id"); productID != "" {
		parsed, err := uuid.Parse(productID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
		}
		query = query.Where("product_id = ?", parsed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var movements []models.StockMovement
	if err := query.Preload("Product").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&movements).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    movements,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}
