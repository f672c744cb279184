package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

// RecordInput captures one audited action.
type RecordInput struct {
	ActorID    *uuid.UUID
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	Metadata   json.RawMessage
	IPAddress  *string
}

// SecurityEventInput captures one edge security event.
type SecurityEventInput struct {
	Type      enums.SecurityEventType
	UserID    *uuid.UUID
	Email     *string
	IPAddress string
	Path      string
	Detail    *string
}

// LogFilters narrows audit log listings.
type LogFilters struct {
	ActorID    *uuid.UUID
	EntityType *string
	EntityID   *uuid.UUID
	Action     *string
}

// EventFilters narrows security event listings.
type EventFilters struct {
	Type  *enums.SecurityEventType
	Email *string
}

// LogDTO is the API shape of an audit log row.
type LogDTO struct {
	ID         uuid.UUID       `json:"id"`
	ActorID    *uuid.UUID      `json:"actor_id,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   *uuid.UUID      `json:"entity_id,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	IPAddress  *string         `json:"ip_address,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// EventDTO is the API shape of a security event.
type EventDTO struct {
	ID        uuid.UUID               `json:"id"`
	Type      enums.SecurityEventType `json:"type"`
	UserID    *uuid.UUID              `json:"user_id,omitempty"`
	Email     *string                 `json:"email,omitempty"`
	IPAddress string                  `json:"ip_address"`
	Path      string                  `json:"path"`
	Detail    *string                 `json:"detail,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}
