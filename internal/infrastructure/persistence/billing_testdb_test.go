package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/revenue/backend/internal/domain/billing"
	"github.com/revenue/backend/internal/domain/shared"
	"github.com/revenue/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupBillingTestDB opens an in-memory sqlite database with the ledger schema.
// A single connection keeps every statement on the same in-memory database.
func setupBillingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type amounts struct {
	oldBill, arrears, currentBill, paid string
}

func (a amounts) payable() decimal.Decimal {
	return dec(a.oldBill).Add(dec(a.arrears)).Add(dec(a.currentBill)).Sub(dec(a.paid))
}

func (a amounts) mirror() models.PayerFinancialsColumns {
	return models.PayerFinancialsColumns{
		OldBill:       dec(a.oldBill),
		Arrears:       dec(a.arrears),
		CurrentBill:   dec(a.currentBill),
		AmountPayable: a.payable(),
	}
}

func newBaseModel() models.BaseModel {
	now := time.Now()
	return models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

func seedBusiness(t *testing.T, db *gorm.DB, name, category string, zone uuid.UUID, a amounts) *models.BusinessModel {
	t.Helper()
	m := &models.BusinessModel{
		BaseModel:              newBaseModel(),
		BusinessName:           name,
		Category:               category,
		ZoneID:                 zone,
		PayerFinancialsColumns: a.mirror(),
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func seedProperty(t *testing.T, db *gorm.DB, owner string, zone uuid.UUID, a amounts) *models.PropertyModel {
	t.Helper()
	m := &models.PropertyModel{
		BaseModel:              newBaseModel(),
		OwnerName:              owner,
		ZoneID:                 zone,
		PayerFinancialsColumns: a.mirror(),
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func seedBill(
	t *testing.T,
	db *gorm.DB,
	number string,
	billType billing.BillType,
	referenceID uuid.UUID,
	status billing.BillStatus,
	a amounts,
) *models.BillModel {
	t.Helper()
	bill := &billing.Bill{
		VersionedEntity:  shared.VersionedEntity{BaseEntity: shared.NewBaseEntity(), Version: 1},
		BillNumber:       number,
		BillType:         billType,
		ReferenceID:      referenceID,
		BillingYear:      2024,
		OldBill:          dec(a.oldBill),
		Arrears:          dec(a.arrears),
		CurrentBill:      dec(a.currentBill),
		PreviousPayments: dec(a.paid),
		Status:           status,
		GeneratedBy:      uuid.New(),
		GeneratedAt:      time.Now(),
	}
	bill.AmountPayable = bill.ComputeAmountPayable()

	m := models.BillModelFromDomain(bill)
	require.NoError(t, db.Create(m).Error)
	return m
}

func loadBill(t *testing.T, db *gorm.DB, id uuid.UUID) *billing.Bill {
	t.Helper()
	bill, err := NewGormBillRepository(db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return bill
}

func loadMirror(t *testing.T, db *gorm.DB, billType billing.BillType, id uuid.UUID) *billing.MirrorFinancials {
	t.Helper()
	ref, err := billing.NewPayerRef(billType, id)
	require.NoError(t, err)
	m, err := ref.Ledger(NewGormPayerLedgers(db)).ReadFinancials(context.Background(), id)
	require.NoError(t, err)
	return m
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
