package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayerRef addresses the mirror record of a bill. It is a closed union of
// BusinessRef and PropertyRef.
type PayerRef interface {
	ID() uuid.UUID
	BillType() BillType
	// Ledger selects the financials store for this variant
	Ledger(ledgers PayerLedgers) PayerFinancials
	isPayerRef()
}

// BusinessRef points at a row in the businesses table
type BusinessRef struct {
	id uuid.UUID
}

// PropertyRef points at a row in the properties table
type PropertyRef struct {
	id uuid.UUID
}

// NewBusinessRef creates a reference to a business payer
func NewBusinessRef(id uuid.UUID) BusinessRef { return BusinessRef{id: id} }

// NewPropertyRef creates a reference to a property payer
func NewPropertyRef(id uuid.UUID) PropertyRef { return PropertyRef{id: id} }

// NewPayerRef builds the reference variant matching a bill type
func NewPayerRef(billType BillType, id uuid.UUID) (PayerRef, error) {
	switch billType {
	case BillTypeBusiness:
		return NewBusinessRef(id), nil
	case BillTypeProperty:
		return NewPropertyRef(id), nil
	}
	return nil, ErrInvalidBillType
}

func (r BusinessRef) ID() uuid.UUID                               { return r.id }
func (r BusinessRef) BillType() BillType                          { return BillTypeBusiness }
func (r BusinessRef) Ledger(ledgers PayerLedgers) PayerFinancials { return ledgers.Businesses() }
func (BusinessRef) isPayerRef()                                   {}
func (r PropertyRef) ID() uuid.UUID                               { return r.id }
func (r PropertyRef) BillType() BillType                          { return BillTypeProperty }
func (r PropertyRef) Ledger(ledgers PayerLedgers) PayerFinancials { return ledgers.Properties() }
func (PropertyRef) isPayerRef()                                   {}

// MirrorFinancials is the copy of bill amounts held on a payer row
type MirrorFinancials struct {
	OldBill       decimal.Decimal
	Arrears       decimal.Decimal
	CurrentBill   decimal.Decimal
	AmountPayable decimal.Decimal
}

// FieldValue returns the mirrored value of an adjustable field
func (m MirrorFinancials) FieldValue(field AdjustableField) (decimal.Decimal, error) {
	switch field {
	case FieldOldBill:
		return m.OldBill, nil
	case FieldArrears:
		return m.Arrears, nil
	case FieldCurrentBill:
		return m.CurrentBill, nil
	}
	return decimal.Zero, ErrInvalidTargetField
}

// MirrorUpdate is the set of values written to a payer row after an adjustment
type MirrorUpdate struct {
	Field         AdjustableField
	Value         decimal.Decimal
	AmountPayable decimal.Decimal
}

// PayerFinancials reads and writes the mirrored amounts of one payer variant.
// Implementations return ErrPayerNotFound when the row does not exist.
type PayerFinancials interface {
	ReadFinancials(ctx context.Context, id uuid.UUID) (*MirrorFinancials, error)
	WriteFinancials(ctx context.Context, id uuid.UUID, update MirrorUpdate) error
}

// PayerLedgers exposes the financials store of every payer variant
type PayerLedgers interface {
	Businesses() PayerFinancials
	Properties() PayerFinancials
}
