package billing

import (
	"strings"

	"github.com/google/uuid"
)

// BulkFilter selects bills for preview or bulk adjustment. Zero-valued fields
// are unset; set fields are combined with AND.
type BulkFilter struct {
	BillType         BillType
	ZoneID           uuid.UUID
	BusinessCategory string
	Status           BillStatus
	BillingYear      int
}

// Normalized returns f with surrounding whitespace removed from its text
// predicates, so the query and the audit trail see the same values.
func (f BulkFilter) Normalized() BulkFilter {
	f.BillType = BillType(strings.TrimSpace(string(f.BillType)))
	f.BusinessCategory = strings.TrimSpace(f.BusinessCategory)
	f.Status = BillStatus(strings.TrimSpace(string(f.Status)))
	return f
}

// IsEmpty reports whether no predicate is set
func (f BulkFilter) IsEmpty() bool {
	return f.BillType == "" &&
		f.ZoneID == uuid.Nil &&
		strings.TrimSpace(f.BusinessCategory) == "" &&
		f.Status == "" &&
		f.BillingYear == 0
}

// Validate checks the values of set predicates. It does not require any
// predicate to be set; the scope rule is enforced by bulk adjustment.
func (f BulkFilter) Validate() ValidationErrors {
	var errs ValidationErrors
	if f.BillType != "" && !f.BillType.IsValid() {
		errs.Add("bill_type", CodeInvalidBillType, "bill_type must be BUSINESS or PROPERTY")
	}
	if f.Status != "" && !f.Status.IsValid() {
		errs.Add("status", CodeInvalidStatus, "status must be one of PENDING, PAID, PARTIALLY_PAID, OVERDUE")
	}
	if f.BillingYear != 0 && (f.BillingYear < 1900 || f.BillingYear > 9999) {
		errs.Add("billing_year", CodeOutOfRange, "billing_year must be between 1900 and 9999")
	}
	if strings.TrimSpace(f.BusinessCategory) != "" && f.BillType == BillTypeProperty {
		errs.Add("business_category", CodeNotApplicable, "business_category only applies to business bills")
	}
	return errs
}

// AuditPayload returns the set predicates keyed by their column names
func (f BulkFilter) AuditPayload() map[string]any {
	payload := make(map[string]any)
	if f.BillType != "" {
		payload["bill_type"] = string(f.BillType)
	}
	if f.ZoneID != uuid.Nil {
		payload["zone_id"] = f.ZoneID.String()
	}
	if c := strings.TrimSpace(f.BusinessCategory); c != "" {
		payload["business_category"] = c
	}
	if f.Status != "" {
		payload["status"] = string(f.Status)
	}
	if f.BillingYear != 0 {
		payload["billing_year"] = f.BillingYear
	}
	return payload
}
