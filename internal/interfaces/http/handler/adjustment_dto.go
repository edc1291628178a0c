package handler

import (
	"strings"

	"github.com/google/uuid"
	"github.com/revenue/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// AdjustmentRequest is the body of a single bill adjustment. Its fields are
// checked by the service so every violation is reported in one response.
type AdjustmentRequest struct {
	Method                 string           `json:"method" example:"FIXED_AMOUNT"`
	Value                  *decimal.Decimal `json:"value" example:"200.00"`
	TargetField            string           `json:"target_field" example:"old_bill"`
	Reason                 string           `json:"reason" example:"Assessment corrected after site visit"`
	ConfirmLargePercentage bool             `json:"confirm_large_percentage"`
}

func (r AdjustmentRequest) method() billing.AdjustmentMethod {
	return billing.AdjustmentMethod(strings.ToUpper(strings.TrimSpace(r.Method)))
}

// value returns zero for a missing value so it fails the positive check
func (r AdjustmentRequest) value() decimal.Decimal {
	if r.Value == nil {
		return decimal.Zero
	}
	return *r.Value
}

func (r AdjustmentRequest) targetField() billing.AdjustableField {
	return billing.AdjustableField(strings.ToLower(strings.TrimSpace(r.TargetField)))
}

// BulkFilterRequest selects bills by any combination of predicates
type BulkFilterRequest struct {
	BillType         string `json:"bill_type" binding:"omitempty,oneof=BUSINESS PROPERTY" example:"BUSINESS"`
	ZoneID           string `json:"zone_id" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	BusinessCategory string `json:"business_category" binding:"max=100" example:"retail"`
	Status           string `json:"status" binding:"omitempty,oneof=PENDING PAID PARTIALLY_PAID OVERDUE" example:"PENDING"`
	BillingYear      int    `json:"billing_year" binding:"omitempty,min=1900,max=9999" example:"2024"`
}

// toFilter converts the request into a domain filter. ZoneID has already
// passed the uuid binding rule.
func (r BulkFilterRequest) toFilter() billing.BulkFilter {
	filter := billing.BulkFilter{
		BillType:         billing.BillType(r.BillType),
		BusinessCategory: strings.TrimSpace(r.BusinessCategory),
		Status:           billing.BillStatus(r.Status),
		BillingYear:      r.BillingYear,
	}
	if r.ZoneID != "" {
		filter.ZoneID, _ = uuid.Parse(r.ZoneID)
	}
	return filter
}

// BulkPreviewRequest is the body of a bulk preview
type BulkPreviewRequest struct {
	Filters BulkFilterRequest `json:"filters"`
}

// BulkAdjustmentRequest is the body of a bulk adjustment
type BulkAdjustmentRequest struct {
	AdjustmentRequest
	Filters BulkFilterRequest `json:"filters"`
}
