package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

// Stock tracks physical inventory held by the shop, one row per product.
type Stock struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ProductID   uuid.UUID         `gorm:"column:product_id;type:uuid;not null;uniqueIndex"`
	CurrentQty  int               `gorm:"column:current_qty;not null;default:0"`
	ReservedQty int               `gorm:"column:reserved_qty;not null;default:0"`
	// AvailableQty is persisted so listings never pay a derivation cost; it is
	// recomputed from CurrentQty/ReservedQty on every mutation.
	AvailableQty int               `gorm:"column:available_qty;not null;default:0"`
	MinQty       int               `gorm:"column:min_qty;not null;default:5"`
	MaxQty       int               `gorm:"column:max_qty;not null;default:1000"`
	ReorderQty   int               `gorm:"column:reorder_qty;not null;default:10"`
	Status       enums.StockStatus `gorm:"column:status;type:text;not null;default:'out_of_stock'"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true"`
	LastMovement *time.Time        `gorm:"column:last_movement"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Stock) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Recalculate refreshes the derived quantity and status fields.
func (s *Stock) Recalculate() {
	s.AvailableQty = s.CurrentQty - s.ReservedQty
	if s.AvailableQty < 0 {
		s.AvailableQty = 0
	}
	switch {
	case !s.IsActive:
		s.Status = enums.StockStatusDiscontinued
	case s.CurrentQty == 0:
		s.Status = enums.StockStatusOutOfStock
	case s.CurrentQty <= s.MinQty:
		s.Status = enums.StockStatusLowStock
	default:
		s.Status = enums.StockStatusAvailable
	}
}

// StockMovement is the append-only audit trail for physical stock changes.
type StockMovement struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	StockID   uuid.UUID               `gorm:"column:stock_id;type:uuid;not null;index"`
	Type      enums.StockMovementType `gorm:"column:type;type:text;not null"`
	Quantity  int                     `gorm:"column:quantity;not null"`
	Reason    string                  `gorm:"column:reason;type:text;not null"`
	QtyBefore int                     `gorm:"column:qty_before;not null"`
	QtyAfter  int                     `gorm:"column:qty_after;not null"`
	ActorID   *uuid.UUID              `gorm:"column:actor_id;type:uuid"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
