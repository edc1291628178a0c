package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Violation codes carried by FieldViolation
const (
	CodeRequired        = "REQUIRED"
	CodeInvalidMethod   = "INVALID_METHOD"
	CodeInvalidField    = "INVALID_TARGET_FIELD"
	CodeInvalidBillType = "INVALID_BILL_TYPE"
	CodeInvalidStatus   = "INVALID_STATUS"
	CodeNotPositive     = "NOT_POSITIVE"
	CodeOutOfRange      = "OUT_OF_RANGE"
	CodeConfirmRequired = "CONFIRMATION_REQUIRED"
	CodeTooLong         = "TOO_LONG"
	CodeTooPrecise      = "TOO_MANY_DECIMALS"
	CodeNotApplicable   = "NOT_APPLICABLE"
	CodeScopeRequired   = "SCOPE_REQUIRED"
	CodeScopeTooLarge   = "SCOPE_TOO_LARGE"
)

// MaxReasonLength is the longest reason accepted for an adjustment
const MaxReasonLength = 1000

const defaultPercentageCap = 100

// FieldViolation is one failed input rule
type FieldViolation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors collects every violation found for one call
type ValidationErrors []FieldViolation

// Add appends a violation
func (v *ValidationErrors) Add(field, code, message string) {
	*v = append(*v, FieldViolation{Field: field, Code: code, Message: message})
}

// Merge appends all violations from other
func (v *ValidationErrors) Merge(other ValidationErrors) {
	*v = append(*v, other...)
}

// HasErrors reports whether any violation was recorded
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// Err returns v as an error, or nil when there are no violations
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Error implements the error interface
func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fv := range v {
		msgs[i] = fv.Field + ": " + fv.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// AdjustmentSpec is the operator's adjustment request, shared by single and
// bulk adjustments.
type AdjustmentSpec struct {
	Method AdjustmentMethod
	Value  decimal.Decimal
	Field  AdjustableField
	Reason string
	// ConfirmLargePercentage acknowledges a percentage above the confirmation cap
	ConfirmLargePercentage bool
}

// Validate checks every rule and returns all violations found.
// percentageCap is the largest percentage accepted without confirmation;
// zero selects the default of 100.
func (s AdjustmentSpec) Validate(percentageCap decimal.Decimal) ValidationErrors {
	if percentageCap.IsZero() {
		percentageCap = decimal.NewFromInt(defaultPercentageCap)
	}

	var errs ValidationErrors
	if !s.Method.IsValid() {
		errs.Add("method", CodeInvalidMethod, "method must be FIXED_AMOUNT or PERCENTAGE")
	}
	if !s.Value.IsPositive() {
		errs.Add("value", CodeNotPositive, "value must be greater than zero")
	} else if places, ok := s.Method.magnitudePlaces(); ok && !s.Value.Equal(s.Value.Round(places)) {
		errs.Add("value", CodeTooPrecise, fmt.Sprintf("value must have at most %d decimal places", places))
	} else if s.Method == MethodPercentage && s.Value.GreaterThan(percentageCap) && !s.ConfirmLargePercentage {
		errs.Add("value", CodeConfirmRequired,
			fmt.Sprintf("percentage above %s requires confirm_large_percentage", percentageCap.String()))
	}
	if !s.Field.IsValid() {
		errs.Add("target_field", CodeInvalidField, "target_field must be one of old_bill, arrears, current_bill")
	}
	reason := strings.TrimSpace(s.Reason)
	if reason == "" {
		errs.Add("reason", CodeRequired, "reason is required")
	} else if len(reason) > MaxReasonLength {
		errs.Add("reason", CodeTooLong, fmt.Sprintf("reason must be at most %d characters", MaxReasonLength))
	}
	return errs
}
