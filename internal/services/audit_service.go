package services

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/example/invithe/internal/models"
)

// Audit actions recorded by the admin surface.
const (
	AuditOrderStatusUpdate = "ORDER_STATUS_UPDATE"
	AuditStockUpdate       = "STOCK_UPDATE"
	AuditProductCreate     = "PRODUCT_CREATE"
	AuditProductUpdate     = "PRODUCT_UPDATE"
	AuditProductDelete     = "PRODUCT_DELETE"
	AuditCategoryCreate    = "CATEGORY_CREATE"
	AuditCategoryUpdate    = "CATEGORY_UPDATE"
	AuditCategoryDelete    = "CATEGORY_DELETE"
	AuditPromoCreate       = "PROMO_CREATE"
	AuditPromoUpdate       = "PROMO_UPDATE"
	AuditPromoDelete       = "PROMO_DELETE"
	AuditReviewModeration  = "REVIEW_MODERATION"
	AuditReviewDelete      = "REVIEW_DELETE"
)

// AuditService is the single audit side effect every admin mutation goes
// through. Recording is best-effort: a failed insert is logged, never
// propagated to the mutation it describes.
type AuditService struct {
	db *gorm.DB
}

// NewAuditService constructs AuditService.
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record writes one audit entry.
func (s *AuditService) Record(ctx context.Context, adminEmail, action, details string) {
	entry := models.AuditLog{
		AdminEmail: adminEmail,
		Action:     action,
		Details:    details,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("[Audit] failed to record %s: %v", action, err)
	}
}

// List returns audit entries newest first.
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]models.AuditLog, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AuditLog
	if err := s.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
