package support

import (
	"time"

	"github.com/google/uuid"

	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

// OpenTicketInput carries a new customer ticket.
type OpenTicketInput struct {
	CustomerID  uuid.UUID
	OrderID     *uuid.UUID
	Subject     string
	Description string
	Category    enums.TicketCategory
	Priority    enums.TicketPriority
}

// ReplyInput appends a message to an existing ticket thread.
type ReplyInput struct {
	TicketID   uuid.UUID
	AuthorID   uuid.UUID
	Message    string
	IsInternal bool
}

// UpdateStatusInput moves a ticket through its lifecycle.
type UpdateStatusInput struct {
	TicketID uuid.UUID
	Status   enums.TicketStatus
	ActorID  uuid.UUID
}

// AssignInput hands a ticket to a manager.
type AssignInput struct {
	TicketID   uuid.UUID
	AssignedTo uuid.UUID
	ActorID    uuid.UUID
}

// ListFilters narrows manager ticket listings.
type ListFilters struct {
	Status   *enums.TicketStatus
	Category *enums.TicketCategory
	Priority *enums.TicketPriority
}

// TicketDTO is the API shape of a ticket.
type TicketDTO struct {
	ID          uuid.UUID            `json:"id"`
	CustomerID  uuid.UUID            `json:"customer_id"`
	OrderID     *uuid.UUID           `json:"order_id,omitempty"`
	Subject     string               `json:"subject"`
	Description string               `json:"description"`
	Category    enums.TicketCategory `json:"category"`
	Priority    enums.TicketPriority `json:"priority"`
	Status      enums.TicketStatus   `json:"status"`
	AssignedTo  *uuid.UUID           `json:"assigned_to,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	ResolvedAt  *time.Time           `json:"resolved_at,omitempty"`
	Messages    []MessageDTO         `json:"messages,omitempty"`
}

// MessageDTO is one entry in a ticket thread.
type MessageDTO struct {
	ID         uuid.UUID `json:"id"`
	TicketID   uuid.UUID `json:"ticket_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	Message    string    `json:"message"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}
