package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

// PushInput creates an in-app notification for a single user.
type PushInput struct {
	UserID   uuid.UUID
	Type     enums.NotificationType
	Title    string
	Message  string
	EntityID *uuid.UUID
}

// NotificationDTO is the API shape of a notification.
type NotificationDTO struct {
	ID        uuid.UUID              `json:"id"`
	Type      enums.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	EntityID  *uuid.UUID             `json:"entity_id,omitempty"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// ListResult pairs a notification page with the unread counter.
type ListResult struct {
	Notifications []NotificationDTO `json:"notifications"`
	UnreadCount   int64             `json:"unread_count"`
}

// LowStockProduct is one product flagged by the low-stock scan.
type LowStockProduct struct {
	ProductID   uuid.UUID
	ProductName string
	SKU         string
	Available   int
	Threshold   int
	Source      string
}
