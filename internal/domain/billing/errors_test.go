package billing

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/revenue/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestOperationError(t *testing.T) {
	billID := uuid.New()
	err := NewOperationError(AdjustmentTypeSingle, billID, nil, shared.ErrConcurrencyConflict)

	assert.Contains(t, err.Error(), "single adjustment failed for bill "+billID.String())
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))

	var opErr *OperationError
	assert.True(t, errors.As(error(err), &opErr))
	assert.Equal(t, AdjustmentTypeSingle, opErr.Operation)
}

func TestOperationError_Bulk(t *testing.T) {
	err := NewOperationError(AdjustmentTypeBulk, uuid.Nil, map[string]any{"status": "PENDING"}, ErrPayerNotFound)
	assert.Equal(t, "bulk adjustment failed: Payer record for bill not found", err.Error())
	assert.ErrorIs(t, err, ErrPayerNotFound)
}
