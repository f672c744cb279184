package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

func setupAnalyticsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Supplier{},
		&models.DropshipProduct{},
		&models.SupplierSale{},
	))

	return db
}

func seedPaidOrder(t *testing.T, db *gorm.DB, number string, total string, paidAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber:     number,
		CustomerID:      uuid.New(),
		Status:          enums.OrderStatusPaid,
		PaymentMethod:   enums.PaymentMethodMobileMoney,
		PaymentStatus:   enums.PaymentStatusPaid,
		DeliveryAddress: "Quartier Almamya, Conakry",
		DeliveryPhone:   "+224620000000",
		Subtotal:        decimal.RequireFromString(total),
		TotalAmount:     decimal.RequireFromString(total),
		PaidAmount:      decimal.RequireFromString(total),
		PaidAt:          &paidAt,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func seedProduct(t *testing.T, db *gorm.DB, name, sku string) *models.Product {
	t.Helper()
	category := &models.Category{Name: "Alimentation " + sku}
	require.NoError(t, db.Create(category).Error)
	product := &models.Product{
		Name:       name,
		SKU:        sku,
		CategoryID: category.ID,
		Price:      decimal.RequireFromString("10000"),
		IsActive:   true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRevenueByDayGroupsPaidOrders(t *testing.T) {
	db := setupAnalyticsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	day1 := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 11, 15, 0, 0, 0, time.UTC)
	seedPaidOrder(t, db, "CMD-2026-08-0001", "50000", day1)
	seedPaidOrder(t, db, "CMD-2026-08-0002", "30000", day1.Add(2*time.Hour))
	seedPaidOrder(t, db, "CMD-2026-08-0003", "20000", day2)

	// Unpaid orders never count.
	unpaid := &models.Order{
		OrderNumber:     "CMD-2026-08-0004",
		CustomerID:      uuid.New(),
		Status:          enums.OrderStatusPending,
		PaymentMethod:   enums.PaymentMethodCashOnDelivery,
		PaymentStatus:   enums.PaymentStatusPending,
		DeliveryAddress: "Ratoma, Conakry",
		DeliveryPhone:   "+224621000000",
		Subtotal:        decimal.RequireFromString("99000"),
		TotalAmount:     decimal.RequireFromString("99000"),
	}
	require.NoError(t, db.Create(unpaid).Error)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	points, err := repo.RevenueByDay(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC), points[0].Day)
	assert.EqualValues(t, 2, points[0].OrderCount)
	assert.True(t, points[0].Revenue.Equal(decimal.RequireFromString("80000")))
	assert.EqualValues(t, 1, points[1].OrderCount)
	assert.True(t, points[1].Revenue.Equal(decimal.RequireFromString("20000")))
}

func TestTopProductsByUnits(t *testing.T) {
	db := setupAnalyticsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rice := seedProduct(t, db, "Riz local 25kg", "RIZ-25")
	oil := seedProduct(t, db, "Huile 5L", "HUI-5")

	paidAt := time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC)
	order := seedPaidOrder(t, db, "CMD-2026-08-0010", "80000", paidAt)
	require.NoError(t, db.Create(&models.OrderItem{
		OrderID:     order.ID,
		ProductID:   rice.ID,
		Quantity:    5,
		PriceAtTime: decimal.RequireFromString("10000"),
	}).Error)
	require.NoError(t, db.Create(&models.OrderItem{
		OrderID:     order.ID,
		ProductID:   oil.ID,
		Quantity:    2,
		PriceAtTime: decimal.RequireFromString("15000"),
	}).Error)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	products, err := repo.TopProductsByUnits(ctx, from, to, 10)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, rice.ID, products[0].ProductID)
	assert.EqualValues(t, 5, products[0].UnitsSold)
	assert.True(t, products[0].Revenue.Equal(decimal.RequireFromString("50000")))
	assert.Equal(t, oil.ID, products[1].ProductID)
}

func TestCommissionBySupplierExcludesCancelledSales(t *testing.T) {
	db := setupAnalyticsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	supplier := &models.Supplier{Name: "Fournisseur Kankan", Email: "contact@kankan.gn"}
	require.NoError(t, db.Create(supplier).Error)

	sale := func(qty int, commission string, status enums.SupplierSaleStatus) *models.SupplierSale {
		return &models.SupplierSale{
			SupplierID:        supplier.ID,
			DropshipProductID: uuid.New(),
			OrderID:           uuid.New(),
			OrderItemID:       uuid.New(),
			Quantity:          qty,
			SupplierPrice:     decimal.RequireFromString("8000"),
			SellingPrice:      decimal.RequireFromString("10000"),
			CommissionEarned:  decimal.RequireFromString(commission),
			Status:            status,
		}
	}
	require.NoError(t, db.Create(sale(3, "6000", enums.SupplierSaleStatusDelivered)).Error)
	require.NoError(t, db.Create(sale(2, "4000", enums.SupplierSaleStatusPending)).Error)
	require.NoError(t, db.Create(sale(5, "10000", enums.SupplierSaleStatusCancelled)).Error)

	from := time.Now().UTC().Add(-time.Hour)
	to := time.Now().UTC().Add(time.Hour)
	commissions, err := repo.CommissionBySupplier(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, commissions, 1)

	assert.Equal(t, supplier.ID, commissions[0].SupplierID)
	assert.EqualValues(t, 2, commissions[0].SaleCount)
	assert.EqualValues(t, 5, commissions[0].UnitsSold)
	assert.True(t, commissions[0].Commission.Equal(decimal.RequireFromString("10000")))
}
