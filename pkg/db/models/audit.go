package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

// AuditLog records who did what to which entity.
type AuditLog struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ActorID    *uuid.UUID      `gorm:"column:actor_id;type:uuid;index"`
	Action     string          `gorm:"column:action;type:text;not null"`
	EntityType string          `gorm:"column:entity_type;type:text;not null"`
	EntityID   *uuid.UUID      `gorm:"column:entity_id;type:uuid"`
	Metadata   json.RawMessage `gorm:"column:metadata;type:jsonb"`
	IPAddress  *string         `gorm:"column:ip_address"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime;index"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// SecurityEvent records auth failures and access violations seen at the edge.
type SecurityEvent struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	Type      enums.SecurityEventType `gorm:"column:type;type:text;not null"`
	UserID    *uuid.UUID              `gorm:"column:user_id;type:uuid"`
	Email     *string                 `gorm:"column:email"`
	IPAddress string                  `gorm:"column:ip_address;type:text;not null"`
	Path      string                  `gorm:"column:path;type:text;not null"`
	Detail    *string                 `gorm:"column:detail"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime;index"`
}

func (e *SecurityEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
