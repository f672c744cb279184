package suppliers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/pagination"
)

type stubSupplierRepo struct {
	suppliers map[uuid.UUID]*models.Supplier
	listings  map[uuid.UUID]*models.DropshipProduct
	sales     map[uuid.UUID]*models.SupplierSale
}

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{
		suppliers: map[uuid.UUID]*models.Supplier{},
		listings:  map[uuid.UUID]*models.DropshipProduct{},
		sales:     map[uuid.UUID]*models.SupplierSale{},
	}
}

func (s *stubSupplierRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubSupplierRepo) CreateSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error) {
	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}
	s.suppliers[supplier.ID] = supplier
	return supplier, nil
}

func (s *stubSupplierRepo) SaveSupplier(ctx context.Context, supplier *models.Supplier) error {
	s.suppliers[supplier.ID] = supplier
	return nil
}

func (s *stubSupplierRepo) FindSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	supplier, ok := s.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return supplier, nil
}

func (s *stubSupplierRepo) FindSupplierByEmail(ctx context.Context, email string) (*models.Supplier, error) {
	for _, supplier := range s.suppliers {
		if supplier.Email == email {
			return supplier, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSupplierRepo) ListSuppliers(ctx context.Context, status *enums.SupplierStatus, cursor *pagination.Cursor, limit int) ([]models.Supplier, error) {
	var out []models.Supplier
	for _, supplier := range s.suppliers {
		if status != nil && supplier.Status != *status {
			continue
		}
		out = append(out, *supplier)
	}
	return out, nil
}

func (s *stubSupplierRepo) CreateListing(ctx context.Context, listing *models.DropshipProduct) (*models.DropshipProduct, error) {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	s.listings[listing.ID] = listing
	return listing, nil
}

func (s *stubSupplierRepo) SaveListing(ctx context.Context, listing *models.DropshipProduct) error {
	s.listings[listing.ID] = listing
	return nil
}

func (s *stubSupplierRepo) FindListing(ctx context.Context, id uuid.UUID) (*models.DropshipProduct, error) {
	listing, ok := s.listings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return listing, nil
}

func (s *stubSupplierRepo) FindListingBySupplierProduct(ctx context.Context, supplierID, productID uuid.UUID) (*models.DropshipProduct, error) {
	for _, listing := range s.listings {
		if listing.SupplierID == supplierID && listing.ProductID == productID {
			return listing, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSupplierRepo) ListListingsBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.DropshipProduct, error) {
	var out []models.DropshipProduct
	for _, listing := range s.listings {
		if listing.SupplierID == supplierID {
			out = append(out, *listing)
		}
	}
	return out, nil
}

func (s *stubSupplierRepo) FindSale(ctx context.Context, id uuid.UUID) (*models.SupplierSale, error) {
	sale, ok := s.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sale, nil
}

func (s *stubSupplierRepo) SaveSale(ctx context.Context, sale *models.SupplierSale) error {
	s.sales[sale.ID] = sale
	return nil
}

func (s *stubSupplierRepo) ListSalesBySupplier(ctx context.Context, supplierID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.SupplierSale, error) {
	var out []models.SupplierSale
	for _, sale := range s.sales {
		if sale.SupplierID == supplierID {
			out = append(out, *sale)
		}
	}
	return out, nil
}

func (s *stubSupplierRepo) SummarizeSalesBySupplier(ctx context.Context, supplierID uuid.UUID) (*LedgerSummary, error) {
	summary := &LedgerSummary{
		SupplierID:       supplierID,
		SalesValue:       decimal.Zero,
		CommissionEarned: decimal.Zero,
	}
	for _, sale := range s.sales {
		if sale.SupplierID != supplierID || sale.Status == enums.SupplierSaleStatusCancelled {
			continue
		}
		summary.TotalSales++
		summary.UnitsSold += int64(sale.Quantity)
		summary.SalesValue = summary.SalesValue.Add(sale.SellingPrice.Mul(decimal.NewFromInt(int64(sale.Quantity))))
		summary.CommissionEarned = summary.CommissionEarned.Add(sale.CommissionEarned)
	}
	return summary, nil
}

type stubProductLoader struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductLoader) FindActiveProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type supplierFixture struct {
	repo     *stubSupplierRepo
	products *stubProductLoader
	svc      Service
}

func newSupplierFixture(t *testing.T) *supplierFixture {
	t.Helper()
	f := &supplierFixture{
		repo:     newStubSupplierRepo(),
		products: &stubProductLoader{products: map[uuid.UUID]*models.Product{}},
	}
	svc, err := NewService(f.repo, f.products, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func (f *supplierFixture) seedActiveSupplier() *models.Supplier {
	supplier := &models.Supplier{
		ID:     uuid.New(),
		Name:   "Fournisseur Kankan",
		Email:  "contact@kankan.gn",
		Status: enums.SupplierStatusActive,
	}
	f.repo.suppliers[supplier.ID] = supplier
	return supplier
}

func (f *supplierFixture) seedProduct() *models.Product {
	product := &models.Product{ID: uuid.New(), Name: "Savon noir", IsActive: true}
	f.products.products[product.ID] = product
	return product
}

func TestCreateSupplierDuplicateEmail(t *testing.T) {
	f := newSupplierFixture(t)

	input := CreateSupplierInput{Name: "Fournisseur Kankan", Email: "Contact@Kankan.GN"}
	if _, err := f.svc.Create(context.Background(), input); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := f.svc.Create(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestVerifyActivatesSupplier(t *testing.T) {
	f := newSupplierFixture(t)
	supplier := &models.Supplier{
		ID:     uuid.New(),
		Name:   "Fournisseur Kankan",
		Email:  "contact@kankan.gn",
		Status: enums.SupplierStatusPending,
	}
	f.repo.suppliers[supplier.ID] = supplier

	managerID := uuid.New()
	verified, err := f.svc.Verify(context.Background(), VerifyInput{
		SupplierID: supplier.ID,
		VerifiedBy: managerID,
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !verified.IsVerified || verified.Status != enums.SupplierStatusActive || verified.VerifiedAt == nil {
		t.Fatalf("unexpected verify result: %+v", verified)
	}

	_, err = f.svc.Verify(context.Background(), VerifyInput{SupplierID: supplier.ID, VerifiedBy: managerID})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("double verify should conflict, got %v", err)
	}
}

func TestCreateListingComputesMargin(t *testing.T) {
	f := newSupplierFixture(t)
	supplier := f.seedActiveSupplier()
	product := f.seedProduct()

	listing, err := f.svc.CreateListing(context.Background(), CreateListingInput{
		SupplierID:    supplier.ID,
		ProductID:     product.ID,
		SupplierPrice: decimal.RequireFromString("10000"),
		SellingPrice:  decimal.RequireFromString("15000"),
		VirtualStock:  20,
	})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	if !listing.Margin.Equal(decimal.RequireFromString("5000")) {
		t.Fatalf("margin = %s, want 5000", listing.Margin)
	}
	if listing.MinOrderQty != 1 || listing.DeliveryDays != 7 {
		t.Fatalf("defaults not applied: %+v", listing)
	}
}

func TestCreateListingDuplicatePair(t *testing.T) {
	f := newSupplierFixture(t)
	supplier := f.seedActiveSupplier()
	product := f.seedProduct()

	input := CreateListingInput{
		SupplierID:    supplier.ID,
		ProductID:     product.ID,
		SupplierPrice: decimal.RequireFromString("10000"),
		SellingPrice:  decimal.RequireFromString("15000"),
	}
	if _, err := f.svc.CreateListing(context.Background(), input); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	_, err := f.svc.CreateListing(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateListingNegativeMarginRefused(t *testing.T) {
	f := newSupplierFixture(t)
	supplier := f.seedActiveSupplier()
	product := f.seedProduct()

	_, err := f.svc.CreateListing(context.Background(), CreateListingInput{
		SupplierID:    supplier.ID,
		ProductID:     product.ID,
		SupplierPrice: decimal.RequireFromString("20000"),
		SellingPrice:  decimal.RequireFromString("15000"),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateSaleStatusTransitions(t *testing.T) {
	f := newSupplierFixture(t)
	sale := &models.SupplierSale{
		ID:         uuid.New(),
		SupplierID: uuid.New(),
		Status:     enums.SupplierSaleStatusPending,
	}
	f.repo.sales[sale.ID] = sale

	steps := []enums.SupplierSaleStatus{
		enums.SupplierSaleStatusConfirmed,
		enums.SupplierSaleStatusShipped,
		enums.SupplierSaleStatusDelivered,
	}
	for _, status := range steps {
		if err := f.svc.UpdateSaleStatus(context.Background(), UpdateSaleStatusInput{SaleID: sale.ID, Status: status}); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	err := f.svc.UpdateSaleStatus(context.Background(), UpdateSaleStatusInput{
		SaleID: sale.ID,
		Status: enums.SupplierSaleStatusCancelled,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("delivered sale must not be cancellable, got %v", err)
	}
}

func TestUpdateSaleStatusSkipRefused(t *testing.T) {
	f := newSupplierFixture(t)
	sale := &models.SupplierSale{
		ID:         uuid.New(),
		SupplierID: uuid.New(),
		Status:     enums.SupplierSaleStatusPending,
	}
	f.repo.sales[sale.ID] = sale

	err := f.svc.UpdateSaleStatus(context.Background(), UpdateSaleStatusInput{
		SaleID: sale.ID,
		Status: enums.SupplierSaleStatusDelivered,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestLedgerExcludesCancelledSales(t *testing.T) {
	f := newSupplierFixture(t)
	supplierID := uuid.New()

	f.repo.sales[uuid.New()] = &models.SupplierSale{
		ID:               uuid.New(),
		SupplierID:       supplierID,
		Quantity:         2,
		SellingPrice:     decimal.RequireFromString("15000"),
		CommissionEarned: decimal.RequireFromString("10000"),
		Status:           enums.SupplierSaleStatusConfirmed,
	}
	f.repo.sales[uuid.New()] = &models.SupplierSale{
		ID:               uuid.New(),
		SupplierID:       supplierID,
		Quantity:         5,
		SellingPrice:     decimal.RequireFromString("15000"),
		CommissionEarned: decimal.RequireFromString("25000"),
		Status:           enums.SupplierSaleStatusCancelled,
	}

	summary, err := f.svc.Ledger(context.Background(), supplierID)
	if err != nil {
		t.Fatalf("Ledger: %v", err)
	}
	if summary.TotalSales != 1 || summary.UnitsSold != 2 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if !summary.CommissionEarned.Equal(decimal.RequireFromString("10000")) {
		t.Fatalf("commission = %s, want 10000", summary.CommissionEarned)
	}
}
