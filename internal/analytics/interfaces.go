package analytics

import (
	"context"
	"time"
)

// Repository defines the aggregate queries behind manager reports.
type Repository interface {
	RevenueByDay(ctx context.Context, from, to time.Time) ([]RevenuePoint, error)
	TopProductsByUnits(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error)
	CommissionBySupplier(ctx context.Context, from, to time.Time) ([]SupplierCommission, error)
}
