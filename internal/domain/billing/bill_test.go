package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBill() *Bill {
	bill := &Bill{
		BillNumber:       "BOP-2026-0001",
		BillType:         BillTypeBusiness,
		ReferenceID:      uuid.New(),
		BillingYear:      2026,
		OldBill:          d("1000"),
		Arrears:          d("0"),
		CurrentBill:      d("500"),
		PreviousPayments: d("0"),
		Status:           BillStatusPending,
	}
	bill.AmountPayable = bill.ComputeAmountPayable()
	return bill
}

func TestBill_SetField(t *testing.T) {
	t.Run("recomputes amount payable", func(t *testing.T) {
		bill := newTestBill()
		old, err := bill.SetField(FieldOldBill, d("1200"))
		require.NoError(t, err)

		assert.True(t, old.Equal(d("1000")))
		assert.True(t, bill.OldBill.Equal(d("1200")))
		assert.True(t, bill.AmountPayable.Equal(d("1700")))
		assert.True(t, bill.IsConsistent())
	})

	t.Run("keeps previous payments in the total", func(t *testing.T) {
		bill := newTestBill()
		bill.PreviousPayments = d("300")
		_, err := bill.SetField(FieldArrears, d("50"))
		require.NoError(t, err)

		assert.True(t, bill.AmountPayable.Equal(d("1250")))
	})

	t.Run("rejects non adjustable fields", func(t *testing.T) {
		bill := newTestBill()
		_, err := bill.SetField(AdjustableField("previous_payments"), d("10"))
		assert.ErrorIs(t, err, ErrInvalidTargetField)
		assert.True(t, bill.AmountPayable.Equal(d("1500")))
	})
}

func TestBill_Payer(t *testing.T) {
	bill := newTestBill()
	ref, err := bill.Payer()
	require.NoError(t, err)
	assert.Equal(t, BillTypeBusiness, ref.BillType())
	assert.Equal(t, bill.ReferenceID, ref.ID())

	bill.BillType = "VEHICLE"
	_, err = bill.Payer()
	assert.ErrorIs(t, err, ErrInvalidBillType)
}

func TestEnums(t *testing.T) {
	assert.True(t, BillStatusPartiallyPaid.IsValid())
	assert.False(t, BillStatus("VOID").IsValid())
	assert.True(t, FieldCurrentBill.IsValid())
	assert.False(t, AdjustableField("amount_payable").IsValid())
	assert.True(t, MethodPercentage.IsValid())
	assert.False(t, AdjustmentMethod("").IsValid())
}
