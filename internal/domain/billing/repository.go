package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillSummary is a resolved bulk target as shown in a preview
type BillSummary struct {
	BillID           uuid.UUID       `json:"bill_id"`
	BillNumber       string          `json:"bill_number"`
	BillType         BillType        `json:"bill_type"`
	ReferenceID      uuid.UUID       `json:"reference_id"`
	PayerName        string          `json:"payer_name"`
	ZoneID           *uuid.UUID      `json:"zone_id,omitempty"`
	BusinessCategory string          `json:"business_category,omitempty"`
	BillingYear      int             `json:"billing_year"`
	Status           BillStatus      `json:"status"`
	OldBill          decimal.Decimal `json:"old_bill"`
	Arrears          decimal.Decimal `json:"arrears"`
	CurrentBill      decimal.Decimal `json:"current_bill"`
	PreviousPayments decimal.Decimal `json:"previous_payments"`
	AmountPayable    decimal.Decimal `json:"amount_payable"`
}

// BillRepository reads and updates bills
type BillRepository interface {
	// FindByID loads a bill, returning ErrBillNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	// FindByIDForUpdate loads a bill and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Bill, error)
	// UpdateFinancials persists the adjustable amounts and amount payable,
	// failing with shared.ErrConcurrencyConflict when the version is stale
	UpdateFinancials(ctx context.Context, bill *Bill) error
	// ResolveTargets returns bills matching filter ordered by bill type then
	// bill number. A limit of zero returns every match.
	ResolveTargets(ctx context.Context, filter BulkFilter, limit int) ([]BillSummary, error)
	// CountTargets returns the number of bills matching filter
	CountTargets(ctx context.Context, filter BulkFilter) (int64, error)
}

// BillAdjustmentRepository stores adjustment history
type BillAdjustmentRepository interface {
	Create(ctx context.Context, adjustment *BillAdjustment) error
	// FindByBillID returns a bill's history newest first
	FindByBillID(ctx context.Context, billID uuid.UUID) ([]BillAdjustment, error)
	CountByBillID(ctx context.Context, billID uuid.UUID) (int64, error)
}

// AuditLogRepository stores audit log entries
type AuditLogRepository interface {
	Create(ctx context.Context, entry *AuditLog) error
}
