package refunds

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

// Repository defines refund persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateRefund(ctx context.Context, refund *models.Refund) (*models.Refund, error)
	SaveRefund(ctx context.Context, refund *models.Refund) error
	FindRefund(ctx context.Context, id uuid.UUID) (*models.Refund, error)
	FindOpenRefundByOrder(ctx context.Context, orderID uuid.UUID) (*models.Refund, error)
	ListRefundsByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Refund, error)
	ListRefundsByStatus(ctx context.Context, status enums.RefundStatus) ([]models.Refund, error)
}
