package billing

import "github.com/shopspring/decimal"

// AdjustmentMethod describes how the magnitude of an adjustment is applied
type AdjustmentMethod string

const (
	MethodFixedAmount AdjustmentMethod = "FIXED_AMOUNT"
	MethodPercentage  AdjustmentMethod = "PERCENTAGE"
)

// IsValid returns true if the method is known
func (m AdjustmentMethod) IsValid() bool {
	return m == MethodFixedAmount || m == MethodPercentage
}

// String returns the string representation
func (m AdjustmentMethod) String() string {
	return string(m)
}

// magnitudePlaces is the most decimal places a magnitude may carry
func (m AdjustmentMethod) magnitudePlaces() (int32, bool) {
	switch m {
	case MethodFixedAmount:
		return CurrencyPlaces, true
	case MethodPercentage:
		return PercentagePlaces, true
	}
	return 0, false
}

// CurrencyPlaces is the precision adjusted amounts are rounded to
const CurrencyPlaces int32 = 2

// PercentagePlaces is the precision a percentage magnitude is stored with
const PercentagePlaces int32 = 4

var hundred = decimal.NewFromInt(100)

// Compute returns the new value of an amount after applying method and
// magnitude, together with the applied delta.
//
// The new value is rounded to CurrencyPlaces and floored at zero. The delta
// is taken after rounding and flooring, so it is the change actually applied.
func Compute(current decimal.Decimal, method AdjustmentMethod, magnitude decimal.Decimal) (newValue, delta decimal.Decimal, err error) {
	switch method {
	case MethodFixedAmount:
		newValue = current.Add(magnitude)
	case MethodPercentage:
		newValue = current.Add(current.Mul(magnitude).Div(hundred))
	default:
		return decimal.Zero, decimal.Zero, ErrInvalidMethod
	}

	newValue = newValue.Round(CurrencyPlaces)
	if newValue.IsNegative() {
		newValue = decimal.Zero
	}
	return newValue, newValue.Sub(current), nil
}
