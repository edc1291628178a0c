package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentType distinguishes one-bill adjustments from filtered batches
type AdjustmentType string

const (
	AdjustmentTypeSingle AdjustmentType = "SINGLE"
	AdjustmentTypeBulk   AdjustmentType = "BULK"
)

// String returns the string representation
func (t AdjustmentType) String() string {
	return string(t)
}

// BillAdjustment is the append-only history entry written for every mutated bill
type BillAdjustment struct {
	ID              uuid.UUID
	BillID          uuid.UUID
	AdjustmentType  AdjustmentType
	TargetType      BillType
	TargetID        uuid.UUID
	TargetField     AdjustableField
	Method          AdjustmentMethod
	AdjustmentValue decimal.Decimal
	OldAmount       decimal.Decimal
	NewAmount       decimal.Decimal
	Reason          string
	AppliedBy       uuid.UUID
	AppliedAt       time.Time
}

// NewBillAdjustment creates a history entry for a bill whose field moved from
// oldAmount to newAmount.
func NewBillAdjustment(
	adjustmentType AdjustmentType,
	bill *Bill,
	spec AdjustmentSpec,
	oldAmount, newAmount decimal.Decimal,
	appliedBy uuid.UUID,
) *BillAdjustment {
	return &BillAdjustment{
		ID:              uuid.New(),
		BillID:          bill.ID,
		AdjustmentType:  adjustmentType,
		TargetType:      bill.BillType,
		TargetID:        bill.ReferenceID,
		TargetField:     spec.Field,
		Method:          spec.Method,
		AdjustmentValue: spec.Value,
		OldAmount:       oldAmount,
		NewAmount:       newAmount,
		Reason:          spec.Reason,
		AppliedBy:       appliedBy,
		AppliedAt:       time.Now(),
	}
}

// Delta returns the change applied to the field
func (a *BillAdjustment) Delta() decimal.Decimal {
	return a.NewAmount.Sub(a.OldAmount)
}
