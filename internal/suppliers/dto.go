package suppliers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
)

// CreateSupplierInput registers a new dropship partner.
type CreateSupplierInput struct {
	Name          string
	CompanyName   *string
	ContactPerson *string
	Email         string
	Phone         *string
	Address       *string
	Country       string
	CreditLimit   decimal.Decimal
	Notes         *string
}

// UpdateSupplierInput holds optional mutation values for a supplier.
type UpdateSupplierInput struct {
	Name          *string
	CompanyName   *string
	ContactPerson *string
	Email         *string
	Phone         *string
	Address       *string
	Country       *string
	Status        *enums.SupplierStatus
	CreditLimit   *decimal.Decimal
	Notes         *string
}

// CreateListingInput puts a supplier's product on sale as virtual stock.
type CreateListingInput struct {
	SupplierID       uuid.UUID
	ProductID        uuid.UUID
	SupplierPrice    decimal.Decimal
	SellingPrice     decimal.Decimal
	VirtualStock     int
	MinOrderQty      int
	DeliveryDays     int
	ShippingCost     decimal.Decimal
	ReorderThreshold int
	SupplierSKU      *string
}

// UpdateListingInput holds optional mutation values for a listing.
type UpdateListingInput struct {
	SupplierPrice    *decimal.Decimal
	SellingPrice     *decimal.Decimal
	VirtualStock     *int
	MinOrderQty      *int
	DeliveryDays     *int
	ShippingCost     *decimal.Decimal
	IsActive         *bool
	ReorderThreshold *int
	SupplierSKU      *string
}

// ListingDTO is the API shape of a dropship listing with its margin.
type ListingDTO struct {
	ID               uuid.UUID       `json:"id"`
	SupplierID       uuid.UUID       `json:"supplier_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	SupplierPrice    decimal.Decimal `json:"supplier_price"`
	SellingPrice     decimal.Decimal `json:"selling_price"`
	Margin           decimal.Decimal `json:"margin"`
	VirtualStock     int             `json:"virtual_stock"`
	MinOrderQty      int             `json:"min_order_qty"`
	DeliveryDays     int             `json:"delivery_days"`
	ShippingCost     decimal.Decimal `json:"shipping_cost"`
	IsActive         bool            `json:"is_active"`
	ReorderThreshold int             `json:"reorder_threshold"`
	SupplierSKU      *string         `json:"supplier_sku,omitempty"`
}

// LedgerSummary aggregates a supplier's sales performance.
type LedgerSummary struct {
	SupplierID       uuid.UUID       `json:"supplier_id"`
	TotalSales       int64           `json:"total_sales"`
	UnitsSold        int64           `json:"units_sold"`
	SalesValue       decimal.Decimal `json:"sales_value"`
	CommissionEarned decimal.Decimal `json:"commission_earned"`
}

// UpdateSaleStatusInput advances one supplier sale through its lifecycle.
type UpdateSaleStatusInput struct {
	SaleID         uuid.UUID
	Status         enums.SupplierSaleStatus
	TrackingNumber *string
}

// VerifyInput marks a supplier as vetted by a manager.
type VerifyInput struct {
	SupplierID uuid.UUID
	VerifiedBy uuid.UUID
}

// SupplierDTO is the API shape of a supplier.
type SupplierDTO struct {
	ID            uuid.UUID            `json:"id"`
	Name          string               `json:"name"`
	CompanyName   *string              `json:"company_name,omitempty"`
	ContactPerson *string              `json:"contact_person,omitempty"`
	Email         string               `json:"email"`
	Phone         *string              `json:"phone,omitempty"`
	Address       *string              `json:"address,omitempty"`
	Country       string               `json:"country"`
	Status        enums.SupplierStatus `json:"status"`
	IsVerified    bool                 `json:"is_verified"`
	CreditLimit   decimal.Decimal      `json:"credit_limit"`
	Notes         *string              `json:"notes,omitempty"`
	VerifiedAt    *time.Time           `json:"verified_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}
