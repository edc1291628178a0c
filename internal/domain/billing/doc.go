// Package billing models issued levy bills, their payer mirror records and
// the adjustment rules that mutate them.
//
// A Bill belongs to exactly one payer, addressed by a PayerRef that is either
// a business or a property. The payer row carries a denormalized copy of the
// bill's adjustable amounts; the two copies are written together and must
// never diverge once an adjustment commits.
//
// The amount payable is always derived:
//
//	amount_payable = old_bill + arrears + current_bill - previous_payments
package billing
