package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

// SupportTicket is a customer-raised issue, optionally tied to an order.
type SupportTicket struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID  uuid.UUID            `gorm:"column:customer_id;type:uuid;not null;index"`
	OrderID     *uuid.UUID           `gorm:"column:order_id;type:uuid"`
	Subject     string               `gorm:"column:subject;type:text;not null"`
	Description string               `gorm:"column:description;type:text;not null"`
	Category    enums.TicketCategory `gorm:"column:category;type:text;not null"`
	Priority    enums.TicketPriority `gorm:"column:priority;type:text;not null;default:'medium'"`
	Status      enums.TicketStatus   `gorm:"column:status;type:text;not null;default:'open'"`
	AssignedTo  *uuid.UUID           `gorm:"column:assigned_to;type:uuid"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
	ResolvedAt  *time.Time           `gorm:"column:resolved_at"`

	Messages []SupportMessage `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
}

func (t *SupportTicket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// SupportMessage is one entry in a ticket's thread.
type SupportMessage struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TicketID   uuid.UUID `gorm:"column:ticket_id;type:uuid;not null;index"`
	AuthorID   uuid.UUID `gorm:"column:author_id;type:uuid;not null"`
	Message    string    `gorm:"column:message;type:text;not null"`
	IsInternal bool      `gorm:"column:is_internal;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (m *SupportMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
