package suppliers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindActiveProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes supplier, listing and sale ledger operations.
type Service interface {
	Create(ctx context.Context, input CreateSupplierInput) (*SupplierDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateSupplierInput) (*SupplierDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*SupplierDTO, error)
	List(ctx context.Context, status *enums.SupplierStatus, p pagination.Params) ([]SupplierDTO, string, error)
	Verify(ctx context.Context, input VerifyInput) (*SupplierDTO, error)

	CreateListing(ctx context.Context, input CreateListingInput) (*ListingDTO, error)
	UpdateListing(ctx context.Context, id uuid.UUID, input UpdateListingInput) (*ListingDTO, error)
	ListListings(ctx context.Context, supplierID uuid.UUID) ([]ListingDTO, error)

	Ledger(ctx context.Context, supplierID uuid.UUID) (*LedgerSummary, error)
	ListSales(ctx context.Context, supplierID uuid.UUID, p pagination.Params) ([]models.SupplierSale, string, error)
	UpdateSaleStatus(ctx context.Context, input UpdateSaleStatusInput) error
}

type service struct {
	repo     Repository
	products productLoader
	tx       txRunner
}

// NewService builds the supplier service.
func NewService(repo Repository, products productLoader, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("suppliers repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, products: products, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input CreateSupplierInput) (*SupplierDTO, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier email required")
	}
	if input.CreditLimit.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit limit cannot be negative")
	}

	if _, err := s.repo.FindSupplierByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "supplier email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check supplier email")
	}

	supplier := &models.Supplier{
		Name:          name,
		CompanyName:   input.CompanyName,
		ContactPerson: input.ContactPerson,
		Email:         email,
		Phone:         input.Phone,
		Address:       input.Address,
		Status:        enums.SupplierStatusPending,
		CreditLimit:   input.CreditLimit,
		Notes:         input.Notes,
	}
	if country := strings.TrimSpace(input.Country); country != "" {
		supplier.Country = country
	}

	created, err := s.repo.CreateSupplier(ctx, supplier)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create supplier")
	}
	return toSupplierDTO(created), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateSupplierInput) (*SupplierDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown supplier status")
	}

	var updated *models.Supplier
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		supplier, err := repo.FindSupplier(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "supplier name cannot be empty")
			}
			supplier.Name = name
		}
		if input.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*input.Email))
			if email == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "supplier email cannot be empty")
			}
			supplier.Email = email
		}
		if input.CompanyName != nil {
			supplier.CompanyName = input.CompanyName
		}
		if input.ContactPerson != nil {
			supplier.ContactPerson = input.ContactPerson
		}
		if input.Phone != nil {
			supplier.Phone = input.Phone
		}
		if input.Address != nil {
			supplier.Address = input.Address
		}
		if input.Country != nil {
			supplier.Country = strings.TrimSpace(*input.Country)
		}
		if input.Status != nil {
			supplier.Status = *input.Status
		}
		if input.CreditLimit != nil {
			if input.CreditLimit.IsNegative() {
				return pkgerrors.New(pkgerrors.CodeValidation, "credit limit cannot be negative")
			}
			supplier.CreditLimit = *input.CreditLimit
		}
		if input.Notes != nil {
			supplier.Notes = input.Notes
		}

		if err := repo.SaveSupplier(ctx, supplier); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save supplier")
		}
		updated = supplier
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSupplierDTO(updated), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*SupplierDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	supplier, err := s.repo.FindSupplier(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return toSupplierDTO(supplier), nil
}

func (s *service) List(ctx context.Context, status *enums.SupplierStatus, p pagination.Params) ([]SupplierDTO, string, error) {
	cursor, err := pagination.ParseCursor(p.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(p.Limit)

	rows, err := s.repo.ListSuppliers(ctx, status, cursor, limit+1)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}

	nextCursor := ""
	if len(rows) > limit {
		last := rows[limit-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	out := make([]SupplierDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toSupplierDTO(&rows[i]))
	}
	return out, nextCursor, nil
}

// Verify marks the supplier vetted and activates it.
func (s *service) Verify(ctx context.Context, input VerifyInput) (*SupplierDTO, error) {
	if input.SupplierID == uuid.Nil || input.VerifiedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier and verifier ids required")
	}

	var verified *models.Supplier
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		supplier, err := repo.FindSupplier(ctx, input.SupplierID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
		}
		if supplier.IsVerified {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "supplier already verified")
		}

		now := time.Now().UTC()
		supplier.IsVerified = true
		supplier.VerifiedAt = &now
		supplier.VerifiedBy = &input.VerifiedBy
		supplier.Status = enums.SupplierStatusActive

		if err := repo.SaveSupplier(ctx, supplier); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save supplier")
		}
		verified = supplier
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSupplierDTO(verified), nil
}

func (s *service) CreateListing(ctx context.Context, input CreateListingInput) (*ListingDTO, error) {
	if err := validateListing(input); err != nil {
		return nil, err
	}

	supplier, err := s.repo.FindSupplier(ctx, input.SupplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	if supplier.Status != enums.SupplierStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "supplier is not active")
	}

	if _, err := s.products.FindActiveProduct(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if _, err := s.repo.FindListingBySupplierProduct(ctx, input.SupplierID, input.ProductID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "supplier already lists this product")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check listing")
	}

	listing := &models.DropshipProduct{
		SupplierID:       input.SupplierID,
		ProductID:        input.ProductID,
		SupplierPrice:    input.SupplierPrice,
		SellingPrice:     input.SellingPrice,
		VirtualStock:     input.VirtualStock,
		MinOrderQty:      input.MinOrderQty,
		DeliveryDays:     input.DeliveryDays,
		ShippingCost:     input.ShippingCost,
		IsActive:         true,
		ReorderThreshold: input.ReorderThreshold,
		SupplierSKU:      input.SupplierSKU,
	}
	if listing.MinOrderQty <= 0 {
		listing.MinOrderQty = 1
	}
	if listing.DeliveryDays <= 0 {
		listing.DeliveryDays = 7
	}

	created, err := s.repo.CreateListing(ctx, listing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}
	return toListingDTO(created), nil
}

func (s *service) UpdateListing(ctx context.Context, id uuid.UUID, input UpdateListingInput) (*ListingDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}

	var updated *models.DropshipProduct
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		listing, err := repo.FindListing(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
		}

		if input.SupplierPrice != nil {
			listing.SupplierPrice = *input.SupplierPrice
		}
		if input.SellingPrice != nil {
			listing.SellingPrice = *input.SellingPrice
		}
		if listing.SellingPrice.LessThan(listing.SupplierPrice) {
			return pkgerrors.New(pkgerrors.CodeValidation, "selling price below supplier price")
		}
		if input.VirtualStock != nil {
			if *input.VirtualStock < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "virtual stock cannot be negative")
			}
			listing.VirtualStock = *input.VirtualStock
		}
		if input.MinOrderQty != nil {
			listing.MinOrderQty = *input.MinOrderQty
		}
		if input.DeliveryDays != nil {
			listing.DeliveryDays = *input.DeliveryDays
		}
		if input.ShippingCost != nil {
			listing.ShippingCost = *input.ShippingCost
		}
		if input.IsActive != nil {
			listing.IsActive = *input.IsActive
		}
		if input.ReorderThreshold != nil {
			listing.ReorderThreshold = *input.ReorderThreshold
		}
		if input.SupplierSKU != nil {
			listing.SupplierSKU = input.SupplierSKU
		}

		if err := repo.SaveListing(ctx, listing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save listing")
		}
		updated = listing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toListingDTO(updated), nil
}

func (s *service) ListListings(ctx context.Context, supplierID uuid.UUID) ([]ListingDTO, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	listings, err := s.repo.ListListingsBySupplier(ctx, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}
	out := make([]ListingDTO, 0, len(listings))
	for i := range listings {
		out = append(out, *toListingDTO(&listings[i]))
	}
	return out, nil
}

func (s *service) Ledger(ctx context.Context, supplierID uuid.UUID) (*LedgerSummary, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	summary, err := s.repo.SummarizeSalesBySupplier(ctx, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize supplier sales")
	}
	return summary, nil
}

func (s *service) ListSales(ctx context.Context, supplierID uuid.UUID, p pagination.Params) ([]models.SupplierSale, string, error) {
	if supplierID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	cursor, err := pagination.ParseCursor(p.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(p.Limit)

	rows, err := s.repo.ListSalesBySupplier(ctx, supplierID, cursor, limit+1)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier sales")
	}
	nextCursor := ""
	if len(rows) > limit {
		last := rows[limit-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	return rows, nextCursor, nil
}

// saleTransitions lists the allowed forward moves; cancellation is allowed
// from any state short of delivered.
var saleTransitions = map[enums.SupplierSaleStatus]enums.SupplierSaleStatus{
	enums.SupplierSaleStatusPending:   enums.SupplierSaleStatusConfirmed,
	enums.SupplierSaleStatusConfirmed: enums.SupplierSaleStatusShipped,
	enums.SupplierSaleStatusShipped:   enums.SupplierSaleStatusDelivered,
}

func (s *service) UpdateSaleStatus(ctx context.Context, input UpdateSaleStatusInput) error {
	if input.SaleID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	if !input.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown sale status")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sale, err := repo.FindSale(ctx, input.SaleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
		}

		allowed := saleTransitions[sale.Status] == input.Status ||
			(input.Status == enums.SupplierSaleStatusCancelled && sale.Status != enums.SupplierSaleStatusDelivered)
		if !allowed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "sale status transition not allowed").
				WithDetails(map[string]any{"from": sale.Status, "to": input.Status})
		}

		sale.Status = input.Status
		if input.TrackingNumber != nil {
			sale.TrackingNumber = input.TrackingNumber
		}
		if err := repo.SaveSale(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save sale")
		}
		return nil
	})
}

func validateListing(input CreateListingInput) error {
	if input.SupplierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.SupplierPrice.IsNegative() || input.SellingPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}
	if input.SellingPrice.LessThan(input.SupplierPrice) {
		return pkgerrors.New(pkgerrors.CodeValidation, "selling price below supplier price")
	}
	if input.VirtualStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "virtual stock cannot be negative")
	}
	return nil
}

func toSupplierDTO(s *models.Supplier) *SupplierDTO {
	return &SupplierDTO{
		ID:            s.ID,
		Name:          s.Name,
		CompanyName:   s.CompanyName,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		Country:       s.Country,
		Status:        s.Status,
		IsVerified:    s.IsVerified,
		CreditLimit:   s.CreditLimit,
		Notes:         s.Notes,
		VerifiedAt:    s.VerifiedAt,
		CreatedAt:     s.CreatedAt,
	}
}

func toListingDTO(l *models.DropshipProduct) *ListingDTO {
	return &ListingDTO{
		ID:               l.ID,
		SupplierID:       l.SupplierID,
		ProductID:        l.ProductID,
		SupplierPrice:    l.SupplierPrice,
		SellingPrice:     l.SellingPrice,
		Margin:           l.Margin(),
		VirtualStock:     l.VirtualStock,
		MinOrderQty:      l.MinOrderQty,
		DeliveryDays:     l.DeliveryDays,
		ShippingCost:     l.ShippingCost,
		IsActive:         l.IsActive,
		ReorderThreshold: l.ReorderThreshold,
		SupplierSKU:      l.SupplierSKU,
	}
}
