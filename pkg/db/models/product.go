package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products in the catalog.
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Product is a catalog entry; physical inventory lives in Stock,
// dropship inventory in DropshipProduct.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name        string           `gorm:"column:name;type:text;not null"`
	Description string           `gorm:"column:description;type:text"`
	SKU         string           `gorm:"column:sku;type:text;not null;uniqueIndex"`
	Barcode     *string          `gorm:"column:barcode"`
	Price       decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	CostPrice   *decimal.Decimal `gorm:"column:cost_price;type:numeric(12,2)"`
	CategoryID  uuid.UUID        `gorm:"column:category_id;type:uuid;not null"`
	WeightKG    *decimal.Decimal `gorm:"column:weight_kg;type:numeric(8,3)"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`

	Stock *Stock `gorm:"foreignKey:ProductID"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
