package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	"github.com/mamadoubah/nimbashop-backend/pkg/pagination"
)

// Repository defines order persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	SaveOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderForCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	ListOrders(ctx context.Context, status *enums.OrderStatus, customerID *uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	CountOrdersCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	CancelSupplierSalesByOrder(ctx context.Context, orderID uuid.UUID) error
}
