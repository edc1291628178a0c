package persistence

import (
	"context"
	"fmt"

	"github.com/revenue/backend/internal/domain/billing"
	"github.com/revenue/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements billing.AuditLogRepository using GORM
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Create appends an audit log entry
func (r *GormAuditLogRepository) Create(ctx context.Context, entry *billing.AuditLog) error {
	m, err := models.AuditLogModelFromDomain(entry)
	if err != nil {
		return fmt.Errorf("encode audit payload: %w", err)
	}
	return r.db.WithContext(ctx).Create(m).Error
}

var _ billing.AuditLogRepository = (*GormAuditLogRepository)(nil)
