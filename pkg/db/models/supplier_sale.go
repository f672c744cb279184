package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

// SupplierSale is a ledger row recording one supplier's contribution to
// fulfilling one order item, with the commission earned on those units.
type SupplierSale struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	SupplierID        uuid.UUID                `gorm:"column:supplier_id;type:uuid;not null;index"`
	DropshipProductID uuid.UUID                `gorm:"column:dropship_product_id;type:uuid;not null"`
	OrderID           uuid.UUID                `gorm:"column:order_id;type:uuid;not null;index"`
	OrderItemID       uuid.UUID                `gorm:"column:order_item_id;type:uuid;not null"`
	Quantity          int                      `gorm:"column:quantity;not null"`
	SupplierPrice     decimal.Decimal          `gorm:"column:supplier_price;type:numeric(12,2);not null"`
	SellingPrice      decimal.Decimal          `gorm:"column:selling_price;type:numeric(12,2);not null"`
	CommissionEarned  decimal.Decimal          `gorm:"column:commission_earned;type:numeric(12,2);not null"`
	Status            enums.SupplierSaleStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TrackingNumber    *string                  `gorm:"column:tracking_number"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *SupplierSale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
