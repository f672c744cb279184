package suppliers

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	"github.com/mamadoubah/nimbashop-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a suppliers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error) {
	if err := r.db.WithContext(ctx).Create(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

func (r *repository) SaveSupplier(ctx context.Context, supplier *models.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

func (r *repository) FindSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) FindSupplierByEmail(ctx context.Context, email string) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) ListSuppliers(ctx context.Context, status *enums.SupplierStatus, cursor *pagination.Cursor, limit int) ([]models.Supplier, error) {
	query := r.db.WithContext(ctx).Model(&models.Supplier{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	var suppliers []models.Supplier
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&suppliers).Error
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (r *repository) CreateListing(ctx context.Context, listing *models.DropshipProduct) (*models.DropshipProduct, error) {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *repository) SaveListing(ctx context.Context, listing *models.DropshipProduct) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

func (r *repository) FindListing(ctx context.Context, id uuid.UUID) (*models.DropshipProduct, error) {
	var listing models.DropshipProduct
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) FindListingBySupplierProduct(ctx context.Context, supplierID, productID uuid.UUID) (*models.DropshipProduct, error) {
	var listing models.DropshipProduct
	err := r.db.WithContext(ctx).
		First(&listing, "supplier_id = ? AND product_id = ?", supplierID, productID).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) ListListingsBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.DropshipProduct, error) {
	var listings []models.DropshipProduct
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("created_at ASC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *repository) FindSale(ctx context.Context, id uuid.UUID) (*models.SupplierSale, error) {
	var sale models.SupplierSale
	if err := r.db.WithContext(ctx).First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) SaveSale(ctx context.Context, sale *models.SupplierSale) error {
	return r.db.WithContext(ctx).Save(sale).Error
}

func (r *repository) ListSalesBySupplier(ctx context.Context, supplierID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.SupplierSale, error) {
	query := r.db.WithContext(ctx).Where("supplier_id = ?", supplierID)
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	var sales []models.SupplierSale
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

type ledgerRow struct {
	TotalSales       int64
	UnitsSold        int64
	SalesValue       decimal.Decimal
	CommissionEarned decimal.Decimal
}

// SummarizeSalesBySupplier aggregates the non-cancelled ledger rows.
func (r *repository) SummarizeSalesBySupplier(ctx context.Context, supplierID uuid.UUID) (*LedgerSummary, error) {
	var row ledgerRow
	err := r.db.WithContext(ctx).
		Model(&models.SupplierSale{}).
		Select(
			"COUNT(*) AS total_sales, " +
				"COALESCE(SUM(quantity), 0) AS units_sold, " +
				"COALESCE(SUM(selling_price * quantity), 0) AS sales_value, " +
				"COALESCE(SUM(commission_earned), 0) AS commission_earned",
		).
		Where("supplier_id = ? AND status <> ?", supplierID, enums.SupplierSaleStatusCancelled).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &LedgerSummary{
		SupplierID:       supplierID,
		TotalSales:       row.TotalSales,
		UnitsSold:        row.UnitsSold,
		SalesValue:       row.SalesValue,
		CommissionEarned: row.CommissionEarned,
	}, nil
}
