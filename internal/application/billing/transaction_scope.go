package billing

import (
	"context"

	"github.com/revenue/backend/internal/domain/billing"
)

// TransactionScope runs adjustment work inside one database transaction.
type TransactionScope interface {
	// Execute runs fn within a transaction. The transaction is rolled back
	// when fn returns an error or ctx is done, and committed otherwise.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to the current
// transaction. Every write performed through them commits or rolls back together.
type TransactionalRepositories interface {
	Bills() billing.BillRepository
	Adjustments() billing.BillAdjustmentRepository
	AuditLogs() billing.AuditLogRepository
	// Payers returns the mirror financials stores of both payer variants
	Payers() billing.PayerLedgers
}

// NoOpTransactionScope runs the function against plain repositories without a
// transaction. It is intended for unit tests.
type NoOpTransactionScope struct {
	bills       billing.BillRepository
	adjustments billing.BillAdjustmentRepository
	auditLogs   billing.AuditLogRepository
	payers      billing.PayerLedgers
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	bills billing.BillRepository,
	adjustments billing.BillAdjustmentRepository,
	auditLogs billing.AuditLogRepository,
	payers billing.PayerLedgers,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		bills:       bills,
		adjustments: adjustments,
		auditLogs:   auditLogs,
		payers:      payers,
	}
}

// Execute runs fn without a real transaction.
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s)
}

func (s *NoOpTransactionScope) Bills() billing.BillRepository                 { return s.bills }
func (s *NoOpTransactionScope) Adjustments() billing.BillAdjustmentRepository { return s.adjustments }
func (s *NoOpTransactionScope) AuditLogs() billing.AuditLogRepository         { return s.auditLogs }
func (s *NoOpTransactionScope) Payers() billing.PayerLedgers                  { return s.payers }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
