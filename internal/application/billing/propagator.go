package billing

import (
	"context"
	"fmt"

	"github.com/revenue/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// ConsistencyPropagator writes an adjusted field to a bill and to the payer
// row that mirrors it, keeping amount_payable equal on both.
type ConsistencyPropagator struct{}

// NewConsistencyPropagator creates a ConsistencyPropagator
func NewConsistencyPropagator() *ConsistencyPropagator {
	return &ConsistencyPropagator{}
}

// Apply sets field to value on bill, recomputes amount_payable and persists
// both the bill and its mirror through repos. It returns the new amount payable.
// Both writes go through the same transactional repositories.
func (p *ConsistencyPropagator) Apply(
	ctx context.Context,
	repos TransactionalRepositories,
	bill *billing.Bill,
	field billing.AdjustableField,
	value decimal.Decimal,
) (decimal.Decimal, error) {
	payer, err := bill.Payer()
	if err != nil {
		return decimal.Zero, err
	}

	if _, err := bill.SetField(field, value); err != nil {
		return decimal.Zero, err
	}

	if err := repos.Bills().UpdateFinancials(ctx, bill); err != nil {
		return decimal.Zero, fmt.Errorf("update bill %s: %w", bill.BillNumber, err)
	}

	update := billing.MirrorUpdate{
		Field:         field,
		Value:         value,
		AmountPayable: bill.AmountPayable,
	}
	if err := payer.Ledger(repos.Payers()).WriteFinancials(ctx, payer.ID(), update); err != nil {
		return decimal.Zero, fmt.Errorf("update %s payer %s: %w",
			payer.BillType().String(), payer.ID(), err)
	}

	return bill.AmountPayable, nil
}
