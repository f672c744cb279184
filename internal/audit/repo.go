package audit

import (
	"context"

	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an audit repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateLog(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

func (r *repository) ListLogs(ctx context.Context, filters LogFilters, cursor *pagination.Cursor, limit int) ([]models.AuditLog, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if filters.ActorID != nil {
		query = query.Where("actor_id = ?", *filters.ActorID)
	}
	if filters.EntityType != nil {
		query = query.Where("entity_type = ?", *filters.EntityType)
	}
	if filters.EntityID != nil {
		query = query.Where("entity_id = ?", *filters.EntityID)
	}
	if filters.Action != nil {
		query = query.Where("action = ?", *filters.Action)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var logs []models.AuditLog
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *repository) CreateEvent(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error) {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *repository) ListEvents(ctx context.Context, filters EventFilters, cursor *pagination.Cursor, limit int) ([]models.SecurityEvent, error) {
	query := r.db.WithContext(ctx).Model(&models.SecurityEvent{})
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.Email != nil {
		query = query.Where("email = ?", *filters.Email)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var events []models.SecurityEvent
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
