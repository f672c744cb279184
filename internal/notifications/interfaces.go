package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

// Repository defines notification persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateNotification(ctx context.Context, notification *models.Notification) (*models.Notification, error)
	FindNotificationForUser(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, notification *models.Notification) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	HasUnreadForEntity(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, entityID uuid.UUID) (bool, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)

	FindLowPhysicalStock(ctx context.Context) ([]LowStockProduct, error)
	FindLowVirtualStock(ctx context.Context) ([]LowStockProduct, error)
	ListActiveManagers(ctx context.Context) ([]models.User, error)
}
