package suppliers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

func setupSuppliersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Supplier{},
		&models.DropshipProduct{},
		&models.SupplierSale{},
	))

	return db
}

func seedSale(t *testing.T, db *gorm.DB, supplierID uuid.UUID, qty int, sellingPrice, commission string, status enums.SupplierSaleStatus) {
	t.Helper()
	sale := &models.SupplierSale{
		SupplierID:        supplierID,
		DropshipProductID: uuid.New(),
		OrderID:           uuid.New(),
		OrderItemID:       uuid.New(),
		Quantity:          qty,
		SupplierPrice:     decimal.RequireFromString("10000"),
		SellingPrice:      decimal.RequireFromString(sellingPrice),
		CommissionEarned:  decimal.RequireFromString(commission),
		Status:            status,
	}
	require.NoError(t, db.Create(sale).Error)
}

func TestRepositorySummarizeSalesBySupplier(t *testing.T) {
	db := setupSuppliersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	supplierID := uuid.New()
	seedSale(t, db, supplierID, 2, "15000", "10000", enums.SupplierSaleStatusConfirmed)
	seedSale(t, db, supplierID, 3, "15000", "15000", enums.SupplierSaleStatusDelivered)
	seedSale(t, db, supplierID, 5, "15000", "25000", enums.SupplierSaleStatusCancelled)
	seedSale(t, db, uuid.New(), 7, "20000", "70000", enums.SupplierSaleStatusConfirmed)

	summary, err := repo.SummarizeSalesBySupplier(ctx, supplierID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.TotalSales)
	assert.Equal(t, int64(5), summary.UnitsSold)
	assert.True(t, summary.SalesValue.Equal(decimal.RequireFromString("75000")),
		"sales value = %s", summary.SalesValue)
	assert.True(t, summary.CommissionEarned.Equal(decimal.RequireFromString("25000")),
		"commission = %s", summary.CommissionEarned)
}

func TestRepositorySummarizeEmptyLedger(t *testing.T) {
	db := setupSuppliersTestDB(t)
	repo := NewRepository(db)

	summary, err := repo.SummarizeSalesBySupplier(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalSales)
	assert.True(t, summary.SalesValue.IsZero())
}

func TestRepositoryListingUniquePair(t *testing.T) {
	db := setupSuppliersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	supplierID := uuid.New()
	productID := uuid.New()

	_, err := repo.CreateListing(ctx, &models.DropshipProduct{
		SupplierID:    supplierID,
		ProductID:     productID,
		SupplierPrice: decimal.RequireFromString("10000"),
		SellingPrice:  decimal.RequireFromString("15000"),
		IsActive:      true,
	})
	require.NoError(t, err)

	_, err = repo.CreateListing(ctx, &models.DropshipProduct{
		SupplierID:    supplierID,
		ProductID:     productID,
		SupplierPrice: decimal.RequireFromString("11000"),
		SellingPrice:  decimal.RequireFromString("16000"),
		IsActive:      true,
	})
	assert.Error(t, err, "one listing per (supplier, product) pair")

	found, err := repo.FindListingBySupplierProduct(ctx, supplierID, productID)
	require.NoError(t, err)
	assert.True(t, found.SupplierPrice.Equal(decimal.RequireFromString("10000")))
}
