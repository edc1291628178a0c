package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/revenue/backend/internal/domain/billing"
	"github.com/revenue/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBusinessFinancials implements billing.PayerFinancials for the businesses table
type GormBusinessFinancials struct {
	db *gorm.DB
}

// NewGormBusinessFinancials creates a new GormBusinessFinancials
func NewGormBusinessFinancials(db *gorm.DB) *GormBusinessFinancials {
	return &GormBusinessFinancials{db: db}
}

// ReadFinancials loads the mirrored amounts of a business
func (r *GormBusinessFinancials) ReadFinancials(ctx context.Context, id uuid.UUID) (*billing.MirrorFinancials, error) {
	var m models.BusinessModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrPayerNotFound
		}
		return nil, err
	}
	return m.PayerFinancialsColumns.ToDomain(), nil
}

// WriteFinancials writes the adjusted field and amount payable of a business
func (r *GormBusinessFinancials) WriteFinancials(ctx context.Context, id uuid.UUID, update billing.MirrorUpdate) error {
	return writeMirror(r.db.WithContext(ctx).Model(&models.BusinessModel{}), id, update)
}

// GormPropertyFinancials implements billing.PayerFinancials for the properties table
type GormPropertyFinancials struct {
	db *gorm.DB
}

// NewGormPropertyFinancials creates a new GormPropertyFinancials
func NewGormPropertyFinancials(db *gorm.DB) *GormPropertyFinancials {
	return &GormPropertyFinancials{db: db}
}

// ReadFinancials loads the mirrored amounts of a property
func (r *GormPropertyFinancials) ReadFinancials(ctx context.Context, id uuid.UUID) (*billing.MirrorFinancials, error) {
	var m models.PropertyModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrPayerNotFound
		}
		return nil, err
	}
	return m.PayerFinancialsColumns.ToDomain(), nil
}

// WriteFinancials writes the adjusted field and amount payable of a property
func (r *GormPropertyFinancials) WriteFinancials(ctx context.Context, id uuid.UUID, update billing.MirrorUpdate) error {
	return writeMirror(r.db.WithContext(ctx).Model(&models.PropertyModel{}), id, update)
}

// writeMirror updates one payer row; a missing row is reported as ErrPayerNotFound
func writeMirror(db *gorm.DB, id uuid.UUID, update billing.MirrorUpdate) error {
	if !update.Field.IsValid() {
		return billing.ErrInvalidTargetField
	}
	result := db.Where("id = ?", id).Updates(map[string]any{
		update.Field.String(): update.Value,
		"amount_payable":      update.AmountPayable,
		"updated_at":          time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return billing.ErrPayerNotFound
	}
	return nil
}

// gormPayerLedgers exposes both payer variants over one connection or transaction
type gormPayerLedgers struct {
	db *gorm.DB
}

// NewGormPayerLedgers creates billing.PayerLedgers backed by db
func NewGormPayerLedgers(db *gorm.DB) billing.PayerLedgers {
	return &gormPayerLedgers{db: db}
}

func (l *gormPayerLedgers) Businesses() billing.PayerFinancials {
	return NewGormBusinessFinancials(l.db)
}

func (l *gormPayerLedgers) Properties() billing.PayerFinancials {
	return NewGormPropertyFinancials(l.db)
}

var (
	_ billing.PayerFinancials = (*GormBusinessFinancials)(nil)
	_ billing.PayerFinancials = (*GormPropertyFinancials)(nil)
)
