package suppliers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	"github.com/mamadoubah/nimbashop-backend/pkg/pagination"
)

// Repository defines supplier, listing and ledger persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error)
	SaveSupplier(ctx context.Context, supplier *models.Supplier) error
	FindSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	FindSupplierByEmail(ctx context.Context, email string) (*models.Supplier, error)
	ListSuppliers(ctx context.Context, status *enums.SupplierStatus, cursor *pagination.Cursor, limit int) ([]models.Supplier, error)

	CreateListing(ctx context.Context, listing *models.DropshipProduct) (*models.DropshipProduct, error)
	SaveListing(ctx context.Context, listing *models.DropshipProduct) error
	FindListing(ctx context.Context, id uuid.UUID) (*models.DropshipProduct, error)
	FindListingBySupplierProduct(ctx context.Context, supplierID, productID uuid.UUID) (*models.DropshipProduct, error)
	ListListingsBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.DropshipProduct, error)

	FindSale(ctx context.Context, id uuid.UUID) (*models.SupplierSale, error)
	SaveSale(ctx context.Context, sale *models.SupplierSale) error
	ListSalesBySupplier(ctx context.Context, supplierID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.SupplierSale, error)
	SummarizeSalesBySupplier(ctx context.Context, supplierID uuid.UUID) (*LedgerSummary, error)
}
