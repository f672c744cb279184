package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
)

// Repository defines persistence operations for stock and dropship tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindStockByProduct(ctx context.Context, productID uuid.UUID) (*models.Stock, error)
	CreateStock(ctx context.Context, stock *models.Stock) (*models.Stock, error)
	SaveStock(ctx context.Context, stock *models.Stock) error
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovementsByStock(ctx context.Context, stockID uuid.UUID, limit int) ([]models.StockMovement, error)
	FindActiveDropshipByProduct(ctx context.Context, productID uuid.UUID) ([]models.DropshipProduct, error)
	FindNewestActiveDropship(ctx context.Context, productID uuid.UUID) (*models.DropshipProduct, error)
	SaveDropshipProduct(ctx context.Context, dp *models.DropshipProduct) error
	CreateSupplierSales(ctx context.Context, sales []models.SupplierSale) error
	ListLowStock(ctx context.Context) ([]models.Stock, error)
}
