package product

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mamadoubah/nimbashop-backend/pkg/pagination"
)

// CreateCategoryInput names a new catalog category.
type CreateCategoryInput struct {
	Name string
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description string
	SKU         string
	Barcode     *string
	Price       decimal.Decimal
	CostPrice   *decimal.Decimal
	CategoryID  uuid.UUID
	WeightKG    *decimal.Decimal
	IsActive    bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Barcode     *string
	Price       *decimal.Decimal
	CostPrice   *decimal.Decimal
	CategoryID  *uuid.UUID
	WeightKG    *decimal.Decimal
	IsActive    *bool
}

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	CategoryID *uuid.UUID       `json:"category_id,omitempty"`
	IsActive   *bool            `json:"is_active,omitempty"`
	PriceMin   *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax   *decimal.Decimal `json:"price_max,omitempty"`
	Query      string           `json:"q,omitempty"`
}

// ListInput captures the inputs needed to paginate and filter products.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ListResult is one page of products plus the cursor for the next page.
type ListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// ProductDTO is the API shape of a catalog product.
type ProductDTO struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	SKU         string           `json:"sku"`
	Barcode     *string          `json:"barcode,omitempty"`
	Price       decimal.Decimal  `json:"price"`
	CostPrice   *decimal.Decimal `json:"cost_price,omitempty"`
	CategoryID  uuid.UUID        `json:"category_id"`
	WeightKG    *decimal.Decimal `json:"weight_kg,omitempty"`
	IsActive    bool             `json:"is_active"`
}

// CategoryDTO is the API shape of a category.
type CategoryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
