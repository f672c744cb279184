package support

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
)

// Repository defines support ticket persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateTicket(ctx context.Context, ticket *models.SupportTicket) (*models.SupportTicket, error)
	SaveTicket(ctx context.Context, ticket *models.SupportTicket) error
	FindTicket(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error)
	FindTicketWithMessages(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error)
	ListTicketsByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.SupportTicket, error)
	ListTickets(ctx context.Context, filters ListFilters) ([]models.SupportTicket, error)

	CreateMessage(ctx context.Context, message *models.SupportMessage) (*models.SupportMessage, error)
}
