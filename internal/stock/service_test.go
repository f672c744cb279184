package stock

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
)

type stubStockRepo struct {
	stock     *models.Stock
	listings  []models.DropshipProduct
	movements []models.StockMovement
	sales     []models.SupplierSale

	stockSaves    int
	dropshipSaves map[uuid.UUID]int
}

func (s *stubStockRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubStockRepo) FindStockByProduct(ctx context.Context, productID uuid.UUID) (*models.Stock, error) {
	if s.stock == nil || s.stock.ProductID != productID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.stock, nil
}

func (s *stubStockRepo) CreateStock(ctx context.Context, stock *models.Stock) (*models.Stock, error) {
	if stock.ID == uuid.Nil {
		stock.ID = uuid.New()
	}
	s.stock = stock
	return stock, nil
}

func (s *stubStockRepo) SaveStock(ctx context.Context, stock *models.Stock) error {
	s.stock = stock
	s.stockSaves++
	return nil
}

func (s *stubStockRepo) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	s.movements = append(s.movements, *movement)
	return nil
}

func (s *stubStockRepo) ListMovementsByStock(ctx context.Context, stockID uuid.UUID, limit int) ([]models.StockMovement, error) {
	return s.movements, nil
}

func (s *stubStockRepo) FindActiveDropshipByProduct(ctx context.Context, productID uuid.UUID) ([]models.DropshipProduct, error) {
	var out []models.DropshipProduct
	for _, dp := range s.listings {
		if dp.ProductID == productID && dp.IsActive {
			out = append(out, dp)
		}
	}
	return out, nil
}

func (s *stubStockRepo) FindNewestActiveDropship(ctx context.Context, productID uuid.UUID) (*models.DropshipProduct, error) {
	var newest *models.DropshipProduct
	for i := range s.listings {
		dp := &s.listings[i]
		if dp.ProductID != productID || !dp.IsActive {
			continue
		}
		if newest == nil || dp.CreatedAt.After(newest.CreatedAt) {
			newest = dp
		}
	}
	if newest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return newest, nil
}

func (s *stubStockRepo) SaveDropshipProduct(ctx context.Context, dp *models.DropshipProduct) error {
	if s.dropshipSaves == nil {
		s.dropshipSaves = map[uuid.UUID]int{}
	}
	s.dropshipSaves[dp.ID]++
	for i := range s.listings {
		if s.listings[i].ID == dp.ID {
			s.listings[i] = *dp
			return nil
		}
	}
	s.listings = append(s.listings, *dp)
	return nil
}

func (s *stubStockRepo) CreateSupplierSales(ctx context.Context, sales []models.SupplierSale) error {
	s.sales = append(s.sales, sales...)
	return nil
}

func (s *stubStockRepo) ListLowStock(ctx context.Context) ([]models.Stock, error) {
	if s.stock != nil && s.stock.CurrentQty <= s.stock.MinQty {
		return []models.Stock{*s.stock}, nil
	}
	return nil, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func newStockService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func physicalStock(productID uuid.UUID, current, min int) *models.Stock {
	s := &models.Stock{
		ID:         uuid.New(),
		ProductID:  productID,
		CurrentQty: current,
		MinQty:     min,
		IsActive:   true,
	}
	s.Recalculate()
	return s
}

func listing(productID, supplierID uuid.UUID, virtual int, supplierPrice, sellingPrice int64, createdAt time.Time) models.DropshipProduct {
	return models.DropshipProduct{
		ID:            uuid.New(),
		SupplierID:    supplierID,
		ProductID:     productID,
		VirtualStock:  virtual,
		SupplierPrice: decimal.NewFromInt(supplierPrice),
		SellingPrice:  decimal.NewFromInt(sellingPrice),
		IsActive:      true,
		CreatedAt:     createdAt,
	}
}

func TestAllocatePhysicalFirst(t *testing.T) {
	productID := uuid.New()
	supplierID := uuid.New()
	repo := &stubStockRepo{
		stock: physicalStock(productID, 10, 2),
		listings: []models.DropshipProduct{
			listing(productID, supplierID, 50, 800, 1000, time.Now()),
		},
	}
	svc := newStockService(t, repo)

	result, err := svc.Allocate(context.Background(), &gorm.DB{}, AllocationInput{
		ProductID:   productID,
		Quantity:    6,
		OrderID:     uuid.New(),
		OrderItemID: uuid.New(),
		Reference:   "CMD-2025-03-0001",
	})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	if result.PhysicalUnits != 6 || result.DropshipUnits != 0 {
		t.Fatalf("expected all 6 units from physical stock, got %+v", result)
	}
	if repo.stock.CurrentQty != 4 {
		t.Fatalf("expected current qty 4, got %d", repo.stock.CurrentQty)
	}
	if repo.listings[0].VirtualStock != 50 {
		t.Fatalf("dropship stock should be untouched, got %d", repo.listings[0].VirtualStock)
	}
	if len(repo.movements) != 1 || repo.movements[0].Type != enums.StockMovementOut {
		t.Fatalf("expected one out movement, got %+v", repo.movements)
	}
	if repo.movements[0].QtyBefore != 10 || repo.movements[0].QtyAfter != 4 {
		t.Fatalf("movement audit fields wrong: %+v", repo.movements[0])
	}
	if len(repo.sales) != 0 {
		t.Fatalf("no supplier sales expected, got %d", len(repo.sales))
	}
}

func TestAllocateSpillsToOldestSupplier(t *testing.T) {
	productID := uuid.New()
	oldSupplier := uuid.New()
	newSupplier := uuid.New()
	base := time.Now()
	repo := &stubStockRepo{
		stock: physicalStock(productID, 2, 1),
		listings: []models.DropshipProduct{
			listing(productID, oldSupplier, 3, 800, 1000, base.Add(-48*time.Hour)),
			listing(productID, newSupplier, 10, 700, 1000, base),
		},
	}
	svc := newStockService(t, repo)

	orderID := uuid.New()
	itemID := uuid.New()
	result, err := svc.Allocate(context.Background(), &gorm.DB{}, AllocationInput{
		ProductID:   productID,
		Quantity:    7,
		OrderID:     orderID,
		OrderItemID: itemID,
		Reference:   "CMD-2025-03-0002",
	})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	if result.PhysicalUnits != 2 || result.DropshipUnits != 5 {
		t.Fatalf("expected 2 physical + 5 dropship, got %+v", result)
	}
	// oldest listing drains fully before the newer one is touched
	if repo.listings[0].VirtualStock != 0 {
		t.Fatalf("expected oldest listing drained, got %d", repo.listings[0].VirtualStock)
	}
	if repo.listings[1].VirtualStock != 8 {
		t.Fatalf("expected newest listing at 8, got %d", repo.listings[1].VirtualStock)
	}

	if len(repo.sales) != 2 {
		t.Fatalf("expected one sale per contributing supplier, got %d", len(repo.sales))
	}
	first, second := repo.sales[0], repo.sales[1]
	if first.SupplierID != oldSupplier || first.Quantity != 3 {
		t.Fatalf("unexpected first sale %+v", first)
	}
	if !first.CommissionEarned.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected commission 3*(1000-800)=600, got %s", first.CommissionEarned)
	}
	if second.SupplierID != newSupplier || second.Quantity != 2 {
		t.Fatalf("unexpected second sale %+v", second)
	}
	if !second.CommissionEarned.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected commission 2*(1000-700)=600, got %s", second.CommissionEarned)
	}
	for _, sale := range repo.sales {
		if sale.OrderID != orderID || sale.OrderItemID != itemID {
			t.Fatalf("sale not linked to order line: %+v", sale)
		}
		if sale.Status != enums.SupplierSaleStatusPending {
			t.Fatalf("expected pending sale, got %s", sale.Status)
		}
	}
}

func TestAllocateRejectsBeforeAnyMutation(t *testing.T) {
	productID := uuid.New()
	repo := &stubStockRepo{
		stock: physicalStock(productID, 2, 1),
		listings: []models.DropshipProduct{
			listing(productID, uuid.New(), 3, 800, 1000, time.Now()),
		},
	}
	svc := newStockService(t, repo)

	_, err := svc.Allocate(context.Background(), &gorm.DB{}, AllocationInput{
		ProductID:   productID,
		Quantity:    6,
		OrderID:     uuid.New(),
		OrderItemID: uuid.New(),
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficient {
		t.Fatalf("expected CodeInsufficient, got %v", err)
	}
	details, ok := typed.Details().(InsufficientStockDetails)
	if !ok || details.Requested != 6 || details.Available != 5 {
		t.Fatalf("unexpected details %+v", typed.Details())
	}

	if repo.stock.CurrentQty != 2 {
		t.Fatalf("physical stock mutated on rejection: %d", repo.stock.CurrentQty)
	}
	if repo.listings[0].VirtualStock != 3 {
		t.Fatalf("dropship stock mutated on rejection: %d", repo.listings[0].VirtualStock)
	}
	if len(repo.movements) != 0 || len(repo.sales) != 0 {
		t.Fatal("no movements or sales expected on rejection")
	}
}

func TestAllocateDropshipOnlyProduct(t *testing.T) {
	productID := uuid.New()
	supplierID := uuid.New()
	repo := &stubStockRepo{
		listings: []models.DropshipProduct{
			listing(productID, supplierID, 4, 500, 900, time.Now()),
		},
	}
	svc := newStockService(t, repo)

	result, err := svc.Allocate(context.Background(), &gorm.DB{}, AllocationInput{
		ProductID:   productID,
		Quantity:    4,
		OrderID:     uuid.New(),
		OrderItemID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if result.PhysicalUnits != 0 || result.DropshipUnits != 4 {
		t.Fatalf("expected dropship-only allocation, got %+v", result)
	}
	if !repo.sales[0].CommissionEarned.Equal(decimal.NewFromInt(1600)) {
		t.Fatalf("expected commission 4*(900-500)=1600, got %s", repo.sales[0].CommissionEarned)
	}
}

func TestRestorePrefersNewestListing(t *testing.T) {
	productID := uuid.New()
	base := time.Now()
	repo := &stubStockRepo{
		stock: physicalStock(productID, 5, 1),
		listings: []models.DropshipProduct{
			listing(productID, uuid.New(), 1, 800, 1000, base.Add(-time.Hour)),
			listing(productID, uuid.New(), 2, 700, 1000, base),
		},
	}
	svc := newStockService(t, repo)

	if err := svc.Restore(context.Background(), &gorm.DB{}, RestoreInput{
		ProductID: productID,
		Quantity:  3,
		Reference: "CMD-2025-03-0003",
	}); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if repo.listings[1].VirtualStock != 5 {
		t.Fatalf("expected newest listing restored to 5, got %d", repo.listings[1].VirtualStock)
	}
	if repo.listings[0].VirtualStock != 1 {
		t.Fatalf("older listing should be untouched, got %d", repo.listings[0].VirtualStock)
	}
	if repo.stock.CurrentQty != 5 {
		t.Fatalf("physical stock should be untouched, got %d", repo.stock.CurrentQty)
	}
}

func TestRestoreFallsBackToPhysical(t *testing.T) {
	productID := uuid.New()
	repo := &stubStockRepo{
		stock: physicalStock(productID, 5, 1),
	}
	svc := newStockService(t, repo)

	if err := svc.Restore(context.Background(), &gorm.DB{}, RestoreInput{
		ProductID: productID,
		Quantity:  2,
		Reference: "CMD-2025-03-0004",
	}); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if repo.stock.CurrentQty != 7 {
		t.Fatalf("expected physical stock 7, got %d", repo.stock.CurrentQty)
	}
	if len(repo.movements) != 1 || repo.movements[0].Type != enums.StockMovementReturn {
		t.Fatalf("expected return movement, got %+v", repo.movements)
	}
}

func TestRemoveRejectsOverdraw(t *testing.T) {
	productID := uuid.New()
	repo := &stubStockRepo{stock: physicalStock(productID, 3, 1)}
	svc := newStockService(t, repo)

	_, err := svc.Remove(context.Background(), MovementInput{
		ProductID: productID,
		Quantity:  5,
		Reason:    "damage write-off",
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficient {
		t.Fatalf("expected CodeInsufficient, got %v", err)
	}
}

func TestAdjustRecordsDelta(t *testing.T) {
	productID := uuid.New()
	repo := &stubStockRepo{stock: physicalStock(productID, 10, 2)}
	svc := newStockService(t, repo)

	updated, err := svc.Adjust(context.Background(), AdjustInput{
		ProductID: productID,
		NewQty:    4,
		Reason:    "annual count",
	})
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if updated.CurrentQty != 4 {
		t.Fatalf("expected qty 4, got %d", updated.CurrentQty)
	}
	if len(repo.movements) != 1 {
		t.Fatalf("expected one movement, got %d", len(repo.movements))
	}
	m := repo.movements[0]
	if m.Type != enums.StockMovementAdjustment || m.Quantity != 6 || m.QtyBefore != 10 || m.QtyAfter != 4 {
		t.Fatalf("unexpected adjustment movement %+v", m)
	}
}

func TestAvailabilityCombinesSources(t *testing.T) {
	productID := uuid.New()
	repo := &stubStockRepo{
		stock: physicalStock(productID, 6, 1),
		listings: []models.DropshipProduct{
			listing(productID, uuid.New(), 3, 800, 1000, time.Now().Add(-time.Hour)),
			listing(productID, uuid.New(), 4, 700, 1000, time.Now()),
		},
	}
	svc := newStockService(t, repo)

	avail, err := svc.Availability(context.Background(), productID)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if avail.PhysicalAvailable != 6 || avail.VirtualAvailable != 7 || avail.Total != 13 {
		t.Fatalf("unexpected availability %+v", avail)
	}
	if len(avail.Suppliers) != 2 {
		t.Fatalf("expected 2 supplier entries, got %d", len(avail.Suppliers))
	}
}
