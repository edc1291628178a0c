package billing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/revenue/backend/internal/domain/shared"
)

// Domain errors
var (
	ErrBillNotFound       = shared.NewDomainError("BILL_NOT_FOUND", "Bill not found")
	ErrPayerNotFound      = shared.NewDomainError("PAYER_NOT_FOUND", "Payer record for bill not found")
	ErrInvalidMethod      = shared.NewDomainError("INVALID_METHOD", "Unknown adjustment method")
	ErrInvalidTargetField = shared.NewDomainError("INVALID_TARGET_FIELD", "Field cannot be adjusted")
	ErrInvalidBillType    = shared.NewDomainError("INVALID_BILL_TYPE", "Unknown bill type")
)

// OperationError reports a failure after an adjustment transaction was opened.
// The transaction has been rolled back when this error is returned.
type OperationError struct {
	Operation AdjustmentType
	BillID    uuid.UUID
	Filters   map[string]any
	Cause     error
}

// NewOperationError wraps cause for a failed operation
func NewOperationError(operation AdjustmentType, billID uuid.UUID, filters map[string]any, cause error) *OperationError {
	return &OperationError{Operation: operation, BillID: billID, Filters: filters, Cause: cause}
}

// Error implements the error interface
func (e *OperationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s adjustment failed", strings.ToLower(string(e.Operation)))
	if e.BillID != uuid.Nil {
		fmt.Fprintf(&b, " for bill %s", e.BillID)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (e *OperationError) Unwrap() error {
	return e.Cause
}
