package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/revenue/backend/internal/domain/billing"
	"github.com/revenue/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBillAdjustmentRepository implements billing.BillAdjustmentRepository using GORM
type GormBillAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormBillAdjustmentRepository creates a new GormBillAdjustmentRepository
func NewGormBillAdjustmentRepository(db *gorm.DB) *GormBillAdjustmentRepository {
	return &GormBillAdjustmentRepository{db: db}
}

// Create appends an adjustment history entry
func (r *GormBillAdjustmentRepository) Create(ctx context.Context, adjustment *billing.BillAdjustment) error {
	return r.db.WithContext(ctx).Create(models.BillAdjustmentModelFromDomain(adjustment)).Error
}

// FindByBillID returns the adjustment history of a bill, newest first
func (r *GormBillAdjustmentRepository) FindByBillID(ctx context.Context, billID uuid.UUID) ([]billing.BillAdjustment, error) {
	var rows []models.BillAdjustmentModel
	if err := r.db.WithContext(ctx).
		Where("bill_id = ?", billID).
		Order("applied_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	adjustments := make([]billing.BillAdjustment, len(rows))
	for i := range rows {
		adjustments[i] = rows[i].ToDomain()
	}
	return adjustments, nil
}

// CountByBillID counts the adjustment history entries of a bill
func (r *GormBillAdjustmentRepository) CountByBillID(ctx context.Context, billID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BillAdjustmentModel{}).
		Where("bill_id = ?", billID).
		Count(&count).Error
	return count, err
}

var _ billing.BillAdjustmentRepository = (*GormBillAdjustmentRepository)(nil)
