package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an analytics repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// revenueRow scans the day as text so the query works on both postgres
// and the sqlite driver used in tests.
type revenueRow struct {
	Day        string
	OrderCount int64
	Revenue    decimal.Decimal
}

func (r *repository) RevenueByDay(ctx context.Context, from, to time.Time) ([]RevenuePoint, error) {
	var rows []revenueRow
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("DATE(paid_at) AS day, COUNT(*) AS order_count, COALESCE(SUM(total_amount), 0) AS revenue").
		Where("paid_at IS NOT NULL AND paid_at >= ? AND paid_at < ?", from, to).
		Where("payment_status = ?", enums.PaymentStatusPaid).
		Group("DATE(paid_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	points := make([]RevenuePoint, 0, len(rows))
	for _, row := range rows {
		day, err := time.Parse("2006-01-02", row.Day)
		if err != nil {
			return nil, err
		}
		points = append(points, RevenuePoint{
			Day:        day,
			OrderCount: row.OrderCount,
			Revenue:    row.Revenue,
		})
	}
	return points, nil
}

type topProductRow struct {
	ProductID   uuid.UUID
	ProductName string
	SKU         string
	UnitsSold   int64
	Revenue     decimal.Decimal
}

func (r *repository) TopProductsByUnits(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error) {
	var rows []topProductRow
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id AS product_id, products.name AS product_name, products.sku AS sku, COALESCE(SUM(order_items.quantity), 0) AS units_sold, COALESCE(SUM(order_items.price_at_time * order_items.quantity), 0) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.paid_at IS NOT NULL AND orders.paid_at >= ? AND orders.paid_at < ?", from, to).
		Where("orders.payment_status = ?", enums.PaymentStatusPaid).
		Group("order_items.product_id, products.name, products.sku").
		Order("units_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	products := make([]TopProduct, 0, len(rows))
	for _, row := range rows {
		products = append(products, TopProduct{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			SKU:         row.SKU,
			UnitsSold:   row.UnitsSold,
			Revenue:     row.Revenue,
		})
	}
	return products, nil
}

type commissionRow struct {
	SupplierID   uuid.UUID
	SupplierName string
	SaleCount    int64
	UnitsSold    int64
	Commission   decimal.Decimal
}

func (r *repository) CommissionBySupplier(ctx context.Context, from, to time.Time) ([]SupplierCommission, error) {
	var rows []commissionRow
	err := r.db.WithContext(ctx).
		Table("supplier_sales").
		Select("supplier_sales.supplier_id AS supplier_id, suppliers.name AS supplier_name, COUNT(*) AS sale_count, COALESCE(SUM(supplier_sales.quantity), 0) AS units_sold, COALESCE(SUM(supplier_sales.commission_earned), 0) AS commission").
		Joins("JOIN suppliers ON suppliers.id = supplier_sales.supplier_id").
		Where("supplier_sales.created_at >= ? AND supplier_sales.created_at < ?", from, to).
		Where("supplier_sales.status <> ?", enums.SupplierSaleStatusCancelled).
		Group("supplier_sales.supplier_id, suppliers.name").
		Order("commission DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	commissions := make([]SupplierCommission, 0, len(rows))
	for _, row := range rows {
		commissions = append(commissions, SupplierCommission{
			SupplierID:   row.SupplierID,
			SupplierName: row.SupplierName,
			SaleCount:    row.SaleCount,
			UnitsSold:    row.UnitsSold,
			Commission:   row.Commission,
		})
	}
	return commissions, nil
}
