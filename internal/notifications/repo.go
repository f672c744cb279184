package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a notifications repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateNotification(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}

func (r *repository) FindNotificationForUser(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).
		First(&notification, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

func (r *repository) MarkRead(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Save(notification).Error
}

func (r *repository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", now).Error
}

func (r *repository) HasUnreadForEntity(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, entityID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND type = ? AND entity_id = ? AND read_at IS NULL", userID, kind, entityID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("read_at IS NOT NULL AND created_at < ?", cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

func (r *repository) FindLowPhysicalStock(ctx context.Context) ([]LowStockProduct, error) {
	var rows []LowStockProduct
	err := r.db.WithContext(ctx).
		Table("stocks").
		Select("stocks.product_id AS product_id, products.name AS product_name, products.sku AS sku, stocks.available_qty AS available, stocks.min_qty AS threshold, 'physical' AS source").
		Joins("JOIN products ON products.id = stocks.product_id").
		Where("stocks.is_active AND products.is_active AND stocks.current_qty <= stocks.min_qty").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindLowVirtualStock(ctx context.Context) ([]LowStockProduct, error) {
	var rows []LowStockProduct
	err := r.db.WithContext(ctx).
		Table("dropship_products").
		Select("dropship_products.product_id AS product_id, products.name AS product_name, products.sku AS sku, dropship_products.virtual_stock AS available, dropship_products.reorder_threshold AS threshold, 'dropship' AS source").
		Joins("JOIN products ON products.id = dropship_products.product_id").
		Where("dropship_products.is_active AND products.is_active AND dropship_products.virtual_stock <= dropship_products.reorder_threshold").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListActiveManagers(ctx context.Context) ([]models.User, error) {
	var managers []models.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_active", enums.UserRoleManager).
		Find(&managers).Error
	if err != nil {
		return nil, err
	}
	return managers, nil
}
