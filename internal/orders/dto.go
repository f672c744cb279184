package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	"github.com/mamadoubah/nimbashop-backend/pkg/pagination"
)

// CheckoutInput captures everything needed to turn a cart into an order.
type CheckoutInput struct {
	CustomerID      uuid.UUID
	PaymentMethod   enums.PaymentMethod
	DeliveryAddress string
	DeliveryPhone   string
	DeliveryNotes   *string
}

// UpdateStatusInput is a manager-driven lifecycle transition.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  enums.OrderStatus
	ActorID uuid.UUID
}

// CancelInput cancels an order on behalf of a customer or a manager.
type CancelInput struct {
	OrderID    uuid.UUID
	ActorID    uuid.UUID
	CustomerID *uuid.UUID
	Reason     string
}

// ListInput drives the manager order listing.
type ListInput struct {
	Status     *enums.OrderStatus
	CustomerID *uuid.UUID
	Pagination pagination.Params
}

// ItemDTO is an order line with its immutable price snapshot.
type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	PriceAtTime decimal.Decimal `json:"price_at_time"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderDTO is the API shape of an order.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	DeliveryAddress string              `json:"delivery_address"`
	DeliveryPhone   string              `json:"delivery_phone"`
	DeliveryNotes   *string             `json:"delivery_notes,omitempty"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	DeliveryFee     decimal.Decimal     `json:"delivery_fee"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	PaidAmount      decimal.Decimal     `json:"paid_amount"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	Items           []ItemDTO           `json:"items"`
}

// ListResult is one page of orders plus the cursor for the next page.
type ListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}
