package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/revenue/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// SingleAdjustmentCommand adjusts one field of one bill
type SingleAdjustmentCommand struct {
	BillID                 uuid.UUID
	Method                 billing.AdjustmentMethod
	Value                  decimal.Decimal
	TargetField            billing.AdjustableField
	Reason                 string
	ConfirmLargePercentage bool
	Actor                  billing.Actor
}

// Spec returns the adjustment parameters of the command
func (c SingleAdjustmentCommand) Spec() billing.AdjustmentSpec {
	return billing.AdjustmentSpec{
		Method:                 c.Method,
		Value:                  c.Value,
		Field:                  c.TargetField,
		Reason:                 c.Reason,
		ConfirmLargePercentage: c.ConfirmLargePercentage,
	}
}

// BulkAdjustmentCommand adjusts one field of every bill matching Filter
type BulkAdjustmentCommand struct {
	Filter                 billing.BulkFilter
	Method                 billing.AdjustmentMethod
	Value                  decimal.Decimal
	TargetField            billing.AdjustableField
	Reason                 string
	ConfirmLargePercentage bool
	Actor                  billing.Actor
}

// Spec returns the adjustment parameters of the command
func (c BulkAdjustmentCommand) Spec() billing.AdjustmentSpec {
	return billing.AdjustmentSpec{
		Method:                 c.Method,
		Value:                  c.Value,
		Field:                  c.TargetField,
		Reason:                 c.Reason,
		ConfirmLargePercentage: c.ConfirmLargePercentage,
	}
}

// SingleAdjustmentResult is the outcome of a committed single adjustment
type SingleAdjustmentResult struct {
	BillID           uuid.UUID               `json:"bill_id"`
	BillNumber       string                  `json:"bill_number"`
	TargetField      billing.AdjustableField `json:"target_field"`
	OldValue         decimal.Decimal         `json:"old_value"`
	NewValue         decimal.Decimal         `json:"new_value"`
	Delta            decimal.Decimal         `json:"delta"`
	NewAmountPayable decimal.Decimal         `json:"new_amount_payable"`
	AdjustmentID     uuid.UUID               `json:"adjustment_id"`
}

// BulkAdjustmentResult summarises a committed bulk adjustment
type BulkAdjustmentResult struct {
	ProcessedCount int                      `json:"processed_count"`
	TotalDelta     decimal.Decimal          `json:"total_delta"`
	TargetField    billing.AdjustableField  `json:"target_field"`
	Method         billing.AdjustmentMethod `json:"method"`
	Value          decimal.Decimal          `json:"value"`
}

// BulkPreviewResult lists the bills a filter resolves to. Bills holds at most
// Limit entries; Total is the full match count.
type BulkPreviewResult struct {
	Bills        []billing.BillSummary `json:"bills"`
	Total        int64                 `json:"total"`
	Limit        int                   `json:"limit"`
	ExceedsLimit bool                  `json:"exceeds_limit"`
}

// AdjustmentRecordResponse is one entry of a bill's adjustment history
type AdjustmentRecordResponse struct {
	ID              uuid.UUID                `json:"id"`
	BillID          uuid.UUID                `json:"bill_id"`
	AdjustmentType  billing.AdjustmentType   `json:"adjustment_type"`
	TargetType      billing.BillType         `json:"target_type"`
	TargetID        uuid.UUID                `json:"target_id"`
	TargetField     billing.AdjustableField  `json:"target_field"`
	Method          billing.AdjustmentMethod `json:"adjustment_method"`
	AdjustmentValue decimal.Decimal          `json:"adjustment_value"`
	OldAmount       decimal.Decimal          `json:"old_amount"`
	NewAmount       decimal.Decimal          `json:"new_amount"`
	Delta           decimal.Decimal          `json:"delta"`
	Reason          string                   `json:"reason"`
	AppliedBy       uuid.UUID                `json:"applied_by"`
	AppliedAt       time.Time                `json:"applied_at"`
}

// ToAdjustmentRecordResponse converts a history entry to its response form
func ToAdjustmentRecordResponse(a *billing.BillAdjustment) AdjustmentRecordResponse {
	return AdjustmentRecordResponse{
		ID:              a.ID,
		BillID:          a.BillID,
		AdjustmentType:  a.AdjustmentType,
		TargetType:      a.TargetType,
		TargetID:        a.TargetID,
		TargetField:     a.TargetField,
		Method:          a.Method,
		AdjustmentValue: a.AdjustmentValue,
		OldAmount:       a.OldAmount,
		NewAmount:       a.NewAmount,
		Delta:           a.Delta(),
		Reason:          a.Reason,
		AppliedBy:       a.AppliedBy,
		AppliedAt:       a.AppliedAt,
	}
}
