package audit

import (
	"context"

	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/pagination"
)

// Repository defines audit persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateLog(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
	ListLogs(ctx context.Context, filters LogFilters, cursor *pagination.Cursor, limit int) ([]models.AuditLog, error)

	CreateEvent(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error)
	ListEvents(ctx context.Context, filters EventFilters, cursor *pagination.Cursor, limit int) ([]models.SecurityEvent, error)
}
