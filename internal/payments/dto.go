package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

// MobileMoneyInput confirms an order paid over a mobile money wallet.
type MobileMoneyInput struct {
	OrderID uuid.UUID
	Phone   string
	TxnID   string
	ActorID uuid.UUID
}

// CardInput confirms a card payment. Only the last four digits and the
// brand are ever stored.
type CardInput struct {
	OrderID    uuid.UUID
	CardNumber string
	Brand      string
	ActorID    uuid.UUID
}

// CashInput confirms a cash-on-delivery settlement.
type CashInput struct {
	OrderID      uuid.UUID
	CashReceived decimal.Decimal
	ConfirmedBy  uuid.UUID
}

// ReceiptDTO reports the outcome of a confirmed payment.
type ReceiptDTO struct {
	PaymentID   uuid.UUID           `json:"payment_id"`
	OrderID     uuid.UUID           `json:"order_id"`
	OrderNumber string              `json:"order_number"`
	Method      enums.PaymentMethod `json:"method"`
	Amount      decimal.Decimal     `json:"amount"`
	Change      *decimal.Decimal    `json:"change,omitempty"`
	CompletedAt time.Time           `json:"completed_at"`
}
