package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindStockByProduct(ctx context.Context, productID uuid.UUID) (*models.Stock, error) {
	var stock models.Stock
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&stock).Error
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *repository) CreateStock(ctx context.Context, stock *models.Stock) (*models.Stock, error) {
	if err := r.db.WithContext(ctx).Create(stock).Error; err != nil {
		return nil, err
	}
	return stock, nil
}

func (r *repository) SaveStock(ctx context.Context, stock *models.Stock) error {
	return r.db.WithContext(ctx).Save(stock).Error
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovementsByStock(ctx context.Context, stockID uuid.UUID, limit int) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	q := r.db.WithContext(ctx).
		Where("stock_id = ?", stockID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindActiveDropshipByProduct returns active listings oldest first so
// allocation drains suppliers in the order they were registered.
func (r *repository) FindActiveDropshipByProduct(ctx context.Context, productID uuid.UUID) ([]models.DropshipProduct, error) {
	var listings []models.DropshipProduct
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true).
		Order("created_at ASC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *repository) FindNewestActiveDropship(ctx context.Context, productID uuid.UUID) (*models.DropshipProduct, error) {
	var listing models.DropshipProduct
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true).
		Order("created_at DESC").
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) SaveDropshipProduct(ctx context.Context, dp *models.DropshipProduct) error {
	return r.db.WithContext(ctx).Save(dp).Error
}

func (r *repository) CreateSupplierSales(ctx context.Context, sales []models.SupplierSale) error {
	if len(sales) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&sales).Error
}

func (r *repository) ListLowStock(ctx context.Context) ([]models.Stock, error) {
	var stocks []models.Stock
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND current_qty <= min_qty", true).
		Order("updated_at DESC").
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	return stocks, nil
}
