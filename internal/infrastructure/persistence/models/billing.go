package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/revenue/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// BillModel is the persistence model for issued bills
type BillModel struct {
	VersionedModel
	BillNumber       string             `gorm:"type:varchar(50);not null;uniqueIndex;index:idx_bills_type_number,priority:2"`
	BillType         billing.BillType   `gorm:"type:varchar(20);not null;index:idx_bills_type_number,priority:1"`
	ReferenceID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	BillingYear      int                `gorm:"not null;index"`
	OldBill          decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	Arrears          decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	CurrentBill      decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	PreviousPayments decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	AmountPayable    decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	Status           billing.BillStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	GeneratedBy      uuid.UUID          `gorm:"type:uuid;not null"`
	GeneratedAt      time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill
func (m *BillModel) ToDomain() *billing.Bill {
	return &billing.Bill{
		VersionedEntity:  m.VersionedModel.ToDomain(),
		BillNumber:       m.BillNumber,
		BillType:         m.BillType,
		ReferenceID:      m.ReferenceID,
		BillingYear:      m.BillingYear,
		OldBill:          m.OldBill,
		Arrears:          m.Arrears,
		CurrentBill:      m.CurrentBill,
		PreviousPayments: m.PreviousPayments,
		AmountPayable:    m.AmountPayable,
		Status:           m.Status,
		GeneratedBy:      m.GeneratedBy,
		GeneratedAt:      m.GeneratedAt,
	}
}

// BillModelFromDomain converts a domain Bill to its persistence model
func BillModelFromDomain(b *billing.Bill) *BillModel {
	m := &BillModel{
		BillNumber:       b.BillNumber,
		BillType:         b.BillType,
		ReferenceID:      b.ReferenceID,
		BillingYear:      b.BillingYear,
		OldBill:          b.OldBill,
		Arrears:          b.Arrears,
		CurrentBill:      b.CurrentBill,
		PreviousPayments: b.PreviousPayments,
		AmountPayable:    b.AmountPayable,
		Status:           b.Status,
		GeneratedBy:      b.GeneratedBy,
		GeneratedAt:      b.GeneratedAt,
	}
	m.FromDomainVersionedEntity(b.VersionedEntity)
	return m
}

// PayerFinancialsColumns holds the mirrored bill amounts of a payer row
type PayerFinancialsColumns struct {
	OldBill       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Arrears       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CurrentBill   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AmountPayable decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// ToDomain converts the columns to domain MirrorFinancials
func (c PayerFinancialsColumns) ToDomain() *billing.MirrorFinancials {
	return &billing.MirrorFinancials{
		OldBill:       c.OldBill,
		Arrears:       c.Arrears,
		CurrentBill:   c.CurrentBill,
		AmountPayable: c.AmountPayable,
	}
}

// BusinessModel is the payer profile of a business operating permit holder
type BusinessModel struct {
	BaseModel
	BusinessName string    `gorm:"type:varchar(200);not null"`
	Category     string    `gorm:"type:varchar(100);not null;index"`
	ZoneID       uuid.UUID `gorm:"type:uuid;not null;index"`
	PayerFinancialsColumns
}

// TableName returns the table name for GORM
func (BusinessModel) TableName() string {
	return "businesses"
}

// PropertyModel is the payer profile of a rated property
type PropertyModel struct {
	BaseModel
	OwnerName string    `gorm:"type:varchar(200);not null"`
	ZoneID    uuid.UUID `gorm:"type:uuid;not null;index"`
	PayerFinancialsColumns
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// BillAdjustmentModel is the append-only adjustment history row
type BillAdjustmentModel struct {
	ID              uuid.UUID                `gorm:"type:uuid;primaryKey"`
	BillID          uuid.UUID                `gorm:"type:uuid;not null;index"`
	AdjustmentType  billing.AdjustmentType   `gorm:"type:varchar(10);not null"`
	TargetType      billing.BillType         `gorm:"type:varchar(20);not null"`
	TargetID        uuid.UUID                `gorm:"type:uuid;not null;index"`
	TargetField     billing.AdjustableField  `gorm:"type:varchar(20);not null"`
	Method          billing.AdjustmentMethod `gorm:"column:adjustment_method;type:varchar(20);not null"`
	AdjustmentValue decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	OldAmount       decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	NewAmount       decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	Reason          string                   `gorm:"type:text;not null"`
	AppliedBy       uuid.UUID                `gorm:"type:uuid;not null"`
	AppliedAt       time.Time                `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (BillAdjustmentModel) TableName() string {
	return "bill_adjustments"
}

// ToDomain converts the persistence model to a domain BillAdjustment
func (m *BillAdjustmentModel) ToDomain() billing.BillAdjustment {
	return billing.BillAdjustment{
		ID:              m.ID,
		BillID:          m.BillID,
		AdjustmentType:  m.AdjustmentType,
		TargetType:      m.TargetType,
		TargetID:        m.TargetID,
		TargetField:     m.TargetField,
		Method:          m.Method,
		AdjustmentValue: m.AdjustmentValue,
		OldAmount:       m.OldAmount,
		NewAmount:       m.NewAmount,
		Reason:          m.Reason,
		AppliedBy:       m.AppliedBy,
		AppliedAt:       m.AppliedAt,
	}
}

// BillAdjustmentModelFromDomain converts a domain BillAdjustment to its persistence model
func BillAdjustmentModelFromDomain(a *billing.BillAdjustment) *BillAdjustmentModel {
	return &BillAdjustmentModel{
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
		Reason:          a.Reason,
		AppliedBy:       a.AppliedBy,
		AppliedAt:       a.AppliedAt,
	}
}

// AuditLogModel is the generic append-only audit row
type AuditLogModel struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID           `gorm:"type:uuid;not null;index"`
	Action        billing.AuditAction `gorm:"type:varchar(50);not null;index"`
	AffectedTable string              `gorm:"column:table_name;type:varchar(50);not null"`
	RecordID      *uuid.UUID          `gorm:"type:uuid;index"`
	OldValues     datatypes.JSON
	NewValues     datatypes.JSON
	IPAddress     string    `gorm:"type:varchar(64)"`
	UserAgent     string    `gorm:"type:varchar(512)"`
	RequestID     string    `gorm:"type:varchar(128)"`
	CreatedAt     time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// AuditLogModelFromDomain converts a domain AuditLog to its persistence model
func AuditLogModelFromDomain(l *billing.AuditLog) (*AuditLogModel, error) {
	oldValues, err := marshalPayload(l.OldValues)
	if err != nil {
		return nil, err
	}
	newValues, err := marshalPayload(l.NewValues)
	if err != nil {
		return nil, err
	}
	return &AuditLogModel{
		ID:            l.ID,
		UserID:        l.UserID,
		Action:        l.Action,
		AffectedTable: l.TableName,
		RecordID:      l.RecordID,
		OldValues:     oldValues,
		NewValues:     newValues,
		IPAddress:     l.IPAddress,
		UserAgent:     l.UserAgent,
		RequestID:     l.RequestID,
		CreatedAt:     l.CreatedAt,
	}, nil
}

// ToDomain converts the persistence model to a domain AuditLog
func (m *AuditLogModel) ToDomain() (*billing.AuditLog, error) {
	oldValues, err := unmarshalPayload(m.OldValues)
	if err != nil {
		return nil, err
	}
	newValues, err := unmarshalPayload(m.NewValues)
	if err != nil {
		return nil, err
	}
	return &billing.AuditLog{
		ID:        m.ID,
		UserID:    m.UserID,
		Action:    m.Action,
		TableName: m.AffectedTable,
		RecordID:  m.RecordID,
		OldValues: oldValues,
		NewValues: newValues,
		IPAddress: m.IPAddress,
		UserAgent: m.UserAgent,
		RequestID: m.RequestID,
		CreatedAt: m.CreatedAt,
	}, nil
}

func marshalPayload(payload map[string]any) (datatypes.JSON, error) {
	if payload == nil {
		return nil, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func unmarshalPayload(raw datatypes.JSON) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// AllModels returns every model in migration order
func AllModels() []any {
	return []any{
		&BusinessModel{},
		&PropertyModel{},
		&BillModel{},
		&BillAdjustmentModel{},
		&AuditLogModel{},
	}
}
