package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

// Supplier is a dropship partner whose inventory the shop resells.
type Supplier struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Name          string               `gorm:"column:name;type:text;not null"`
	CompanyName   *string              `gorm:"column:company_name"`
	ContactPerson *string              `gorm:"column:contact_person"`
	Email         string               `gorm:"column:email;type:text;not null;index"`
	Phone         *string              `gorm:"column:phone"`
	Address       *string              `gorm:"column:address"`
	Country       string               `gorm:"column:country;type:text;not null;default:'Guinée'"`
	Status        enums.SupplierStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	IsVerified    bool                 `gorm:"column:is_verified;not null;default:false"`
	CreditLimit   decimal.Decimal      `gorm:"column:credit_limit;type:numeric(14,2);not null;default:0"`
	Notes         *string              `gorm:"column:notes"`
	VerifiedAt    *time.Time           `gorm:"column:verified_at"`
	VerifiedBy    *uuid.UUID           `gorm:"column:verified_by;type:uuid"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
