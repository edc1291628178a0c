package billing

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction is the action code of an audit log entry
type AuditAction string

const (
	AuditActionBillAdjusted   AuditAction = "BILL_ADJUSTED"
	AuditActionBulkAdjustment AuditAction = "BULK_BILL_ADJUSTMENT"
)

// BillsTable is the table name recorded on adjustment audit entries
const BillsTable = "bills"

// Actor identifies who issued a request and where it came from
type Actor struct {
	UserID    uuid.UUID
	IPAddress string
	UserAgent string
	RequestID string
}

// AuditLog is a generic append-only audit record
type AuditLog struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Action    AuditAction
	TableName string
	RecordID  *uuid.UUID
	OldValues map[string]any
	NewValues map[string]any
	IPAddress string
	UserAgent string
	RequestID string
	CreatedAt time.Time
}

// NewAuditLog creates an audit entry for the given actor
func NewAuditLog(actor Actor, action AuditAction, recordID *uuid.UUID, oldValues, newValues map[string]any) *AuditLog {
	return &AuditLog{
		ID:        uuid.New(),
		UserID:    actor.UserID,
		Action:    action,
		TableName: BillsTable,
		RecordID:  recordID,
		OldValues: oldValues,
		NewValues: newValues,
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
		RequestID: actor.RequestID,
		CreatedAt: time.Now(),
	}
}
