package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

// Refund tracks a customer's request to reverse a paid order.
type Refund struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID           uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	Amount            decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Reason            enums.RefundReason  `gorm:"column:reason;type:text;not null"`
	ReasonDescription *string             `gorm:"column:reason_description"`
	Status            enums.RefundStatus  `gorm:"column:status;type:text;not null;default:'pending'"`
	Method            enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	TransactionID     *string             `gorm:"column:transaction_id"`
	RequestedBy       uuid.UUID           `gorm:"column:requested_by;type:uuid;not null;index"`
	ProcessedBy       *uuid.UUID          `gorm:"column:processed_by;type:uuid"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	ProcessedAt       *time.Time          `gorm:"column:processed_at"`
}

func (r *Refund) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
