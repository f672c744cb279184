package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DropshipProduct is virtual inventory a supplier holds on the shop's behalf.
// One row per (supplier, product) pair.
type DropshipProduct struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SupplierID       uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null;uniqueIndex:ux_dropship_supplier_product"`
	ProductID        uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_dropship_supplier_product;index"`
	SupplierPrice    decimal.Decimal `gorm:"column:supplier_price;type:numeric(12,2);not null"`
	SellingPrice     decimal.Decimal `gorm:"column:selling_price;type:numeric(12,2);not null"`
	VirtualStock     int             `gorm:"column:virtual_stock;not null;default:0"`
	MinOrderQty      int             `gorm:"column:min_order_qty;not null;default:1"`
	DeliveryDays     int             `gorm:"column:delivery_days;not null;default:7"`
	ShippingCost     decimal.Decimal `gorm:"column:shipping_cost;type:numeric(12,2);not null;default:0"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true"`
	ReorderThreshold int             `gorm:"column:reorder_threshold;not null;default:5"`
	SupplierSKU      *string         `gorm:"column:supplier_sku"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

func (d *DropshipProduct) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Margin is the per-unit commission the shop earns on this listing.
func (d *DropshipProduct) Margin() decimal.Decimal {
	return d.SellingPrice.Sub(d.SupplierPrice)
}
