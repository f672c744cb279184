package stock

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementInput describes a manual stock receipt or removal.
type MovementInput struct {
	ProductID uuid.UUID
	Quantity  int
	Reason    string
	ActorID   *uuid.UUID
}

// AdjustInput sets the physical quantity to an absolute value after a count.
type AdjustInput struct {
	ProductID uuid.UUID
	NewQty    int
	Reason    string
	ActorID   *uuid.UUID
}

// AllocationInput describes one order line to fulfil from available stock.
type AllocationInput struct {
	ProductID   uuid.UUID
	Quantity    int
	OrderID     uuid.UUID
	OrderItemID uuid.UUID
	Reference   string
	ActorID     *uuid.UUID
}

// SupplierAllocation is the portion of an allocation served by one supplier.
type SupplierAllocation struct {
	SupplierID uuid.UUID       `json:"supplier_id"`
	Units      int             `json:"units"`
	Commission decimal.Decimal `json:"commission"`
}

// AllocationResult reports how an order line was sourced.
type AllocationResult struct {
	PhysicalUnits int                  `json:"physical_units"`
	DropshipUnits int                  `json:"dropship_units"`
	Suppliers     []SupplierAllocation `json:"suppliers,omitempty"`
}

// RestoreInput describes stock coming back after a cancellation or refund.
type RestoreInput struct {
	ProductID uuid.UUID
	Quantity  int
	Reference string
	ActorID   *uuid.UUID
}

// SupplierAvailability is one supplier's contribution to virtual stock.
type SupplierAvailability struct {
	SupplierID   uuid.UUID `json:"supplier_id"`
	SupplierName string    `json:"supplier_name,omitempty"`
	VirtualStock int       `json:"virtual_stock"`
}

// Availability is the combined physical plus dropship view for a product.
type Availability struct {
	ProductID         uuid.UUID              `json:"product_id"`
	PhysicalAvailable int                    `json:"physical_available"`
	VirtualAvailable  int                    `json:"virtual_available"`
	Total             int                    `json:"total"`
	Suppliers         []SupplierAvailability `json:"suppliers,omitempty"`
}

// InsufficientStockDetails is attached to rejection errors so clients can
// show what was actually available.
type InsufficientStockDetails struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}
