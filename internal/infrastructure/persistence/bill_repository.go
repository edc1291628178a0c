package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/revenue/backend/internal/domain/billing"
	"github.com/revenue/backend/internal/domain/shared"
	"github.com/revenue/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBillRepository implements billing.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByID finds a bill by its ID
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a bill and holds a row lock until the surrounding transaction ends
func (r *GormBillRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormBillRepository) find(db *gorm.DB, id uuid.UUID) (*billing.Bill, error) {
	var m models.BillModel
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrBillNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// UpdateFinancials writes the adjustable amounts and amount payable, checking
// and incrementing the version.
func (r *GormBillRepository) UpdateFinancials(ctx context.Context, bill *billing.Bill) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Where("id = ? AND version = ?", bill.ID, bill.Version).
		Updates(map[string]any{
			"old_bill":       bill.OldBill,
			"arrears":        bill.Arrears,
			"current_bill":   bill.CurrentBill,
			"amount_payable": bill.AmountPayable,
			"version":        bill.Version + 1,
			"updated_at":     now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	bill.IncrementVersion()
	bill.UpdatedAt = now
	return nil
}

// targetRow is the scan target of the bulk target query
type targetRow struct {
	BillID           uuid.UUID
	BillNumber       string
	BillType         billing.BillType
	ReferenceID      uuid.UUID
	PayerName        string
	ZoneID           uuid.NullUUID
	BusinessCategory string
	BillingYear      int
	Status           billing.BillStatus
	OldBill          decimal.Decimal
	Arrears          decimal.Decimal
	CurrentBill      decimal.Decimal
	PreviousPayments decimal.Decimal
	AmountPayable    decimal.Decimal
}

func (row targetRow) toSummary() billing.BillSummary {
	s := billing.BillSummary{
		BillID:           row.BillID,
		BillNumber:       row.BillNumber,
		BillType:         row.BillType,
		ReferenceID:      row.ReferenceID,
		PayerName:        row.PayerName,
		BusinessCategory: row.BusinessCategory,
		BillingYear:      row.BillingYear,
		Status:           row.Status,
		OldBill:          row.OldBill,
		Arrears:          row.Arrears,
		CurrentBill:      row.CurrentBill,
		PreviousPayments: row.PreviousPayments,
		AmountPayable:    row.AmountPayable,
	}
	if row.ZoneID.Valid {
		zone := row.ZoneID.UUID
		s.ZoneID = &zone
	}
	return s
}

const targetColumns = `bills.id AS bill_id, bills.bill_number, bills.bill_type, bills.reference_id,
	COALESCE(businesses.business_name, properties.owner_name, '') AS payer_name,
	COALESCE(businesses.zone_id, properties.zone_id) AS zone_id,
	COALESCE(businesses.category, '') AS business_category,
	bills.billing_year, bills.status,
	bills.old_bill, bills.arrears, bills.current_bill, bills.previous_payments, bills.amount_payable`

// targetQuery joins each bill to the payer table matching its own bill type
// and applies the set predicates.
func (r *GormBillRepository) targetQuery(ctx context.Context, filter billing.BulkFilter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Table("bills").
		Joins("LEFT JOIN businesses ON bills.bill_type = ? AND businesses.id = bills.reference_id", billing.BillTypeBusiness).
		Joins("LEFT JOIN properties ON bills.bill_type = ? AND properties.id = bills.reference_id", billing.BillTypeProperty)

	if filter.BillType != "" {
		q = q.Where("bills.bill_type = ?", filter.BillType)
	}
	if filter.ZoneID != uuid.Nil {
		q = q.Where("(businesses.zone_id = ? OR properties.zone_id = ?)", filter.ZoneID, filter.ZoneID)
	}
	if filter.BusinessCategory != "" {
		q = q.Where("bills.bill_type = ? AND businesses.category = ?", billing.BillTypeBusiness, filter.BusinessCategory)
	}
	if filter.Status != "" {
		q = q.Where("bills.status = ?", filter.Status)
	}
	if filter.BillingYear != 0 {
		q = q.Where("bills.billing_year = ?", filter.BillingYear)
	}
	return q
}

// ResolveTargets returns the bills matching filter ordered by bill type then bill number
func (r *GormBillRepository) ResolveTargets(ctx context.Context, filter billing.BulkFilter, limit int) ([]billing.BillSummary, error) {
	q := r.targetQuery(ctx, filter).
		Select(targetColumns).
		Order("bills.bill_type, bills.bill_number")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []targetRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	summaries := make([]billing.BillSummary, len(rows))
	for i, row := range rows {
		summaries[i] = row.toSummary()
	}
	return summaries, nil
}

// CountTargets counts the bills matching filter
func (r *GormBillRepository) CountTargets(ctx context.Context, filter billing.BulkFilter) (int64, error) {
	var count int64
	if err := r.targetQuery(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ billing.BillRepository = (*GormBillRepository)(nil)
