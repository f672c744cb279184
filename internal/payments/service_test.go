package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/internal/orders"
	"github.com/mamadoubah/nimbashop-backend/internal/stock"
	"github.com/mamadoubah/nimbashop-backend/pkg/config"
	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/pagination"
)

type stubPaymentRepo struct {
	payments []models.Payment
}

func (s *stubPaymentRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPaymentRepo) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	s.payments = append(s.payments, *payment)
	return payment, nil
}

func (s *stubPaymentRepo) ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range s.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubOrderRepo struct {
	orders map[uuid.UUID]*models.Order
	saves  int
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrderRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrderRepo) SaveOrder(ctx context.Context, order *models.Order) error {
	s.orders[order.ID] = order
	s.saves++
	return nil
}

func (s *stubOrderRepo) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubOrderRepo) FindOrderForCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.Order, error) {
	return s.FindOrder(ctx, id)
}

func (s *stubOrderRepo) ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) ListOrders(ctx context.Context, status *enums.OrderStatus, customerID *uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) CountOrdersCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return 0, nil
}

func (s *stubOrderRepo) CancelSupplierSalesByOrder(ctx context.Context, orderID uuid.UUID) error {
	return nil
}

func (s *stubOrderRepo) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	return nil, nil
}

type stubAllocator struct {
	allocations []stock.AllocationInput
	err         error
}

func (s *stubAllocator) Allocate(ctx context.Context, tx *gorm.DB, input stock.AllocationInput) (*stock.AllocationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.allocations = append(s.allocations, input)
	return &stock.AllocationResult{PhysicalUnits: input.Quantity}, nil
}

type stubUserLoader struct{}

func (stubUserLoader) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type paymentFixture struct {
	repo      *stubPaymentRepo
	orders    *stubOrderRepo
	allocator *stubAllocator
	svc       Service
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	f := &paymentFixture{
		repo:      &stubPaymentRepo{},
		orders:    newStubOrderRepo(),
		allocator: &stubAllocator{},
	}
	svc, err := NewService(
		f.repo,
		f.orders,
		f.allocator,
		stubUserLoader{},
		stubTxRunner{},
		nil,
		nil,
		config.DeliveryConfig{Currency: "GNF"},
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func (f *paymentFixture) seedPendingOrder(total string, itemQty int) *models.Order {
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "CMD-2026-08-0001",
		CustomerID:    uuid.New(),
		Status:        enums.OrderStatusPending,
		PaymentMethod: enums.PaymentMethodMobileMoney,
		PaymentStatus: enums.PaymentStatusPending,
		TotalAmount:   decimal.RequireFromString(total),
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), Quantity: itemQty},
		},
	}
	f.orders.orders[order.ID] = order
	return order
}

func TestConfirmMobileMoneyHappyPath(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.seedPendingOrder("90000", 3)

	receipt, err := f.svc.ConfirmMobileMoney(context.Background(), MobileMoneyInput{
		OrderID: order.ID,
		Phone:   "+224620000000",
		TxnID:   "MM-12345",
	})
	if err != nil {
		t.Fatalf("ConfirmMobileMoney: %v", err)
	}

	if !receipt.Amount.Equal(order.TotalAmount) {
		t.Fatalf("receipt amount = %s, want %s", receipt.Amount, order.TotalAmount)
	}
	stored := f.orders.orders[order.ID]
	if stored.PaymentStatus != enums.PaymentStatusPaid || stored.Status != enums.OrderStatusPaid {
		t.Fatalf("order not transitioned: %s / %s", stored.Status, stored.PaymentStatus)
	}
	if stored.PaidAt == nil || !stored.PaidAmount.Equal(order.TotalAmount) {
		t.Fatalf("paid fields not stamped: %+v", stored)
	}
	if len(f.allocator.allocations) != 1 || f.allocator.allocations[0].Quantity != 3 {
		t.Fatalf("expected one allocation of 3 units, got %+v", f.allocator.allocations)
	}
	if len(f.repo.payments) != 1 || f.repo.payments[0].Status != enums.PaymentStateCompleted {
		t.Fatalf("unexpected payment rows: %+v", f.repo.payments)
	}
}

func TestConfirmCardStoresOnlyLastFour(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.seedPendingOrder("65000", 1)

	_, err := f.svc.ConfirmCard(context.Background(), CardInput{
		OrderID:    order.ID,
		CardNumber: "4111 1111 1111 1234",
		Brand:      "Visa",
	})
	if err != nil {
		t.Fatalf("ConfirmCard: %v", err)
	}

	payment := f.repo.payments[0]
	if payment.CardLastFour == nil || *payment.CardLastFour != "1234" {
		t.Fatalf("expected last four 1234, got %+v", payment.CardLastFour)
	}
	if payment.CardBrand == nil || *payment.CardBrand != "Visa" {
		t.Fatalf("expected brand Visa, got %+v", payment.CardBrand)
	}
}

func TestConfirmCashComputesChange(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.seedPendingOrder("65000", 2)
	managerID := uuid.New()

	receipt, err := f.svc.ConfirmCash(context.Background(), CashInput{
		OrderID:      order.ID,
		CashReceived: decimal.RequireFromString("70000"),
		ConfirmedBy:  managerID,
	})
	if err != nil {
		t.Fatalf("ConfirmCash: %v", err)
	}

	if receipt.Change == nil || !receipt.Change.Equal(decimal.RequireFromString("5000")) {
		t.Fatalf("change = %+v, want 5000", receipt.Change)
	}
	stored := f.orders.orders[order.ID]
	if stored.CashConfirmedBy == nil || *stored.CashConfirmedBy != managerID {
		t.Fatal("cash confirmation must record the confirming manager")
	}
	if stored.CashConfirmedAt == nil {
		t.Fatal("cash confirmation must be timestamped")
	}
}

func TestConfirmCashInsufficientLeavesOrderUntouched(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.seedPendingOrder("65000", 2)

	_, err := f.svc.ConfirmCash(context.Background(), CashInput{
		OrderID:      order.ID,
		CashReceived: decimal.RequireFromString("60000"),
		ConfirmedBy:  uuid.New(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	if len(f.repo.payments) != 0 {
		t.Fatal("rejected cash confirmation must not create a payment row")
	}
	if f.orders.saves != 0 {
		t.Fatal("rejected cash confirmation must not save the order")
	}
	if len(f.allocator.allocations) != 0 {
		t.Fatal("rejected cash confirmation must not allocate stock")
	}
	stored := f.orders.orders[order.ID]
	if stored.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("order payment status changed: %s", stored.PaymentStatus)
	}
}

func TestConfirmAlreadyPaidOrder(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.seedPendingOrder("65000", 1)
	order.PaymentStatus = enums.PaymentStatusPaid
	order.Status = enums.OrderStatusPaid

	_, err := f.svc.ConfirmMobileMoney(context.Background(), MobileMoneyInput{
		OrderID: order.ID,
		Phone:   "+224620000000",
		TxnID:   "MM-12345",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestConfirmFailsWhenAllocationFails(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.seedPendingOrder("65000", 5)
	f.allocator.err = pkgerrors.New(pkgerrors.CodeInsufficient, "insufficient stock")

	_, err := f.svc.ConfirmMobileMoney(context.Background(), MobileMoneyInput{
		OrderID: order.ID,
		Phone:   "+224620000000",
		TxnID:   "MM-12345",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficient {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
}
