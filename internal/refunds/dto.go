package refunds

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

// RequestInput opens a refund for a paid order.
type RequestInput struct {
	OrderID           uuid.UUID
	RequestedBy       uuid.UUID
	Reason            enums.RefundReason
	ReasonDescription *string
}

// ProcessInput settles a refund request one way or the other.
type ProcessInput struct {
	RefundID      uuid.UUID
	ProcessedBy   uuid.UUID
	Approve       bool
	TransactionID *string
}

// RefundDTO is the API shape of a refund.
type RefundDTO struct {
	ID                uuid.UUID           `json:"id"`
	OrderID           uuid.UUID           `json:"order_id"`
	OrderNumber       string              `json:"order_number,omitempty"`
	Amount            decimal.Decimal     `json:"amount"`
	Reason            enums.RefundReason  `json:"reason"`
	ReasonDescription *string             `json:"reason_description,omitempty"`
	Status            enums.RefundStatus  `json:"status"`
	Method            enums.PaymentMethod `json:"method"`
	TransactionID     *string             `json:"transaction_id,omitempty"`
	RequestedBy       uuid.UUID           `json:"requested_by"`
	ProcessedBy       *uuid.UUID          `json:"processed_by,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	ProcessedAt       *time.Time          `json:"processed_at,omitempty"`
}
