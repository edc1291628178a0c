package billing

import (
	"context"
	"fmt"

	"github.com/revenue/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// AuditRecorder writes adjustment history and audit log entries. History is
// written per bill; single adjustments get one audit entry each while a bulk
// call gets one aggregate entry.
type AuditRecorder struct{}

// NewAuditRecorder creates an AuditRecorder
func NewAuditRecorder() *AuditRecorder {
	return &AuditRecorder{}
}

// RecordAdjustment appends the history record for one adjusted bill.
func (r *AuditRecorder) RecordAdjustment(
	ctx context.Context,
	repos TransactionalRepositories,
	adjustmentType billing.AdjustmentType,
	bill *billing.Bill,
	spec billing.AdjustmentSpec,
	oldValue, newValue decimal.Decimal,
	actor billing.Actor,
) (*billing.BillAdjustment, error) {
	record := billing.NewBillAdjustment(adjustmentType, bill, spec, oldValue, newValue, actor.UserID)
	if err := repos.Adjustments().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create adjustment record: %w", err)
	}
	return record, nil
}

// RecordSingle appends the audit entry of a single adjustment.
func (r *AuditRecorder) RecordSingle(
	ctx context.Context,
	repos TransactionalRepositories,
	bill *billing.Bill,
	spec billing.AdjustmentSpec,
	oldValue, newValue decimal.Decimal,
	actor billing.Actor,
) error {
	field := spec.Field.String()
	billID := bill.ID
	entry := billing.NewAuditLog(actor, billing.AuditActionBillAdjusted, &billID,
		map[string]any{
			field: oldValue.StringFixed(billing.CurrencyPlaces),
		},
		map[string]any{
			field:               newValue.StringFixed(billing.CurrencyPlaces),
			"amount_payable":    bill.AmountPayable.StringFixed(billing.CurrencyPlaces),
			"adjustment_method": spec.Method.String(),
			"adjustment_value":  spec.Value.String(),
			"reason":            spec.Reason,
		},
	)
	if err := repos.AuditLogs().Create(ctx, entry); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// RecordBulk appends the aggregate audit entry of a bulk adjustment.
func (r *AuditRecorder) RecordBulk(
	ctx context.Context,
	repos TransactionalRepositories,
	filter billing.BulkFilter,
	spec billing.AdjustmentSpec,
	processed int,
	totalDelta decimal.Decimal,
	actor billing.Actor,
) error {
	entry := billing.NewAuditLog(actor, billing.AuditActionBulkAdjustment, nil,
		map[string]any{
			"filters": filter.AuditPayload(),
		},
		map[string]any{
			"affected_bills":    processed,
			"total_delta":       totalDelta.StringFixed(billing.CurrencyPlaces),
			"target_field":      spec.Field.String(),
			"adjustment_method": spec.Method.String(),
			"adjustment_value":  spec.Value.String(),
			"reason":            spec.Reason,
		},
	)
	if err := repos.AuditLogs().Create(ctx, entry); err != nil {
		return fmt.Errorf("create bulk audit log: %w", err)
	}
	return nil
}
