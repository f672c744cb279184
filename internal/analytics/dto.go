package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Range bounds a report; zero values fall back to the last 30 days.
type Range struct {
	From time.Time
	To   time.Time
}

// RevenuePoint is one day of paid order revenue.
type RevenuePoint struct {
	Day        time.Time       `json:"day"`
	OrderCount int64           `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// TopProduct ranks a product by units sold over the range.
type TopProduct struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	UnitsSold   int64           `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// SupplierCommission aggregates commission earned per supplier.
type SupplierCommission struct {
	SupplierID   uuid.UUID       `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	SaleCount    int64           `json:"sale_count"`
	UnitsSold    int64           `json:"units_sold"`
	Commission   decimal.Decimal `json:"commission"`
}

// Dashboard bundles the manager overview numbers.
type Dashboard struct {
	Revenue     []RevenuePoint       `json:"revenue"`
	TopProducts []TopProduct         `json:"top_products"`
	Commissions []SupplierCommission `json:"commissions"`
}
