package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/revenue/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BillType identifies which payer table a bill belongs to
type BillType string

const (
	BillTypeBusiness BillType = "BUSINESS"
	BillTypeProperty BillType = "PROPERTY"
)

// IsValid returns true if the bill type is known
func (t BillType) IsValid() bool {
	return t == BillTypeBusiness || t == BillTypeProperty
}

// String returns the string representation
func (t BillType) String() string {
	return string(t)
}

// BillStatus represents the payment status of a bill
type BillStatus string

const (
	BillStatusPending       BillStatus = "PENDING"
	BillStatusPaid          BillStatus = "PAID"
	BillStatusPartiallyPaid BillStatus = "PARTIALLY_PAID"
	BillStatusOverdue       BillStatus = "OVERDUE"
)

// IsValid returns true if the status is known
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusPending, BillStatusPaid, BillStatusPartiallyPaid, BillStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation
func (s BillStatus) String() string {
	return string(s)
}

// AdjustableField is one of the bill amounts an adjustment may change.
// previous_payments and amount_payable are never directly adjustable.
type AdjustableField string

const (
	FieldOldBill     AdjustableField = "old_bill"
	FieldArrears     AdjustableField = "arrears"
	FieldCurrentBill AdjustableField = "current_bill"
)

// IsValid returns true if the field may be adjusted
func (f AdjustableField) IsValid() bool {
	return f == FieldOldBill || f == FieldArrears || f == FieldCurrentBill
}

// String returns the column name of the field
func (f AdjustableField) String() string {
	return string(f)
}

// Bill is one issued charge for a billing year against a business or property
type Bill struct {
	shared.VersionedEntity
	BillNumber       string
	BillType         BillType
	ReferenceID      uuid.UUID
	BillingYear      int
	OldBill          decimal.Decimal
	Arrears          decimal.Decimal
	CurrentBill      decimal.Decimal
	PreviousPayments decimal.Decimal
	AmountPayable    decimal.Decimal
	Status           BillStatus
	GeneratedBy      uuid.UUID
	GeneratedAt      time.Time
}

// Payer returns the reference to the bill's mirror record
func (b *Bill) Payer() (PayerRef, error) {
	return NewPayerRef(b.BillType, b.ReferenceID)
}

// FieldValue returns the current value of an adjustable field
func (b *Bill) FieldValue(field AdjustableField) (decimal.Decimal, error) {
	switch field {
	case FieldOldBill:
		return b.OldBill, nil
	case FieldArrears:
		return b.Arrears, nil
	case FieldCurrentBill:
		return b.CurrentBill, nil
	}
	return decimal.Zero, ErrInvalidTargetField
}

// ComputeAmountPayable returns old_bill + arrears + current_bill - previous_payments
func (b *Bill) ComputeAmountPayable() decimal.Decimal {
	return b.OldBill.Add(b.Arrears).Add(b.CurrentBill).Sub(b.PreviousPayments)
}

// SetField replaces one adjustable amount and recomputes the amount payable.
// It returns the previous value of the field.
func (b *Bill) SetField(field AdjustableField, value decimal.Decimal) (decimal.Decimal, error) {
	old, err := b.FieldValue(field)
	if err != nil {
		return decimal.Zero, err
	}
	switch field {
	case FieldOldBill:
		b.OldBill = value
	case FieldArrears:
		b.Arrears = value
	case FieldCurrentBill:
		b.CurrentBill = value
	}
	b.AmountPayable = b.ComputeAmountPayable()
	b.UpdatedAt = time.Now()
	return old, nil
}

// IsConsistent reports whether the stored amount payable matches the derived total
func (b *Bill) IsConsistent() bool {
	return b.AmountPayable.Equal(b.ComputeAmountPayable())
}
