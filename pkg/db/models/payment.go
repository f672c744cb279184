package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

// Payment records one settlement attempt against an order.
type Payment struct {
	ID      uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	Amount  decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Method  enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Status  enums.PaymentState  `gorm:"column:status;type:text;not null;default:'pending'"`

	// Mobile money
	MobileMoneyPhone *string `gorm:"column:mobile_money_phone"`
	MobileMoneyTxnID *string `gorm:"column:mobile_money_txn_id"`

	// Card
	CardLastFour *string `gorm:"column:card_last_four"`
	CardBrand    *string `gorm:"column:card_brand"`

	// Cash on delivery
	CashReceived *decimal.Decimal `gorm:"column:cash_received;type:numeric(12,2)"`
	CashChange   *decimal.Decimal `gorm:"column:cash_change;type:numeric(12,2)"`

	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
