package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/internal/orders"
	"github.com/mamadoubah/nimbashop-backend/internal/stock"
	"github.com/mamadoubah/nimbashop-backend/pkg/config"
	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/mailer"
	"github.com/mamadoubah/nimbashop-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockAllocator interface {
	Allocate(ctx context.Context, tx *gorm.DB, input stock.AllocationInput) (*stock.AllocationResult, error)
}

type userLoader interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service confirms payments and drives the pending -> paid transition.
type Service interface {
	ConfirmMobileMoney(ctx context.Context, input MobileMoneyInput) (*ReceiptDTO, error)
	ConfirmCard(ctx context.Context, input CardInput) (*ReceiptDTO, error)
	ConfirmCash(ctx context.Context, input CashInput) (*ReceiptDTO, error)
	ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
}

type service struct {
	repo     Repository
	orders   orders.Repository
	stock    stockAllocator
	users    userLoader
	tx       txRunner
	mail     mailer.Sender
	commerce *metrics.CommerceMetrics
	delivery config.DeliveryConfig
}

// NewService builds the payment service. The mailer and metrics are optional.
func NewService(
	repo Repository,
	orderRepo orders.Repository,
	stockSvc stockAllocator,
	users userLoader,
	tx txRunner,
	mail mailer.Sender,
	commerce *metrics.CommerceMetrics,
	delivery config.DeliveryConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("stock allocator required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		orders:   orderRepo,
		stock:    stockSvc,
		users:    users,
		tx:       tx,
		mail:     mail,
		commerce: commerce,
		delivery: delivery,
	}, nil
}

func (s *service) ConfirmMobileMoney(ctx context.Context, input MobileMoneyInput) (*ReceiptDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mobile money phone required")
	}
	txnID := strings.TrimSpace(input.TxnID)
	if txnID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}

	return s.confirm(ctx, input.OrderID, enums.PaymentMethodMobileMoney, input.ActorID, func(order *models.Order) *models.Payment {
		return &models.Payment{
			OrderID:          order.ID,
			Amount:           order.TotalAmount,
			Method:           enums.PaymentMethodMobileMoney,
			MobileMoneyPhone: &phone,
			MobileMoneyTxnID: &txnID,
		}
	})
}

func (s *service) ConfirmCard(ctx context.Context, input CardInput) (*ReceiptDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	digits := strings.ReplaceAll(strings.TrimSpace(input.CardNumber), " ", "")
	if len(digits) < 12 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card number too short")
	}
	lastFour := digits[len(digits)-4:]
	brand := strings.TrimSpace(input.Brand)

	return s.confirm(ctx, input.OrderID, enums.PaymentMethodCard, input.ActorID, func(order *models.Order) *models.Payment {
		payment := &models.Payment{
			OrderID:      order.ID,
			Amount:       order.TotalAmount,
			Method:       enums.PaymentMethodCard,
			CardLastFour: &lastFour,
		}
		if brand != "" {
			payment.CardBrand = &brand
		}
		return payment
	})
}

// ConfirmCash settles a cash-on-delivery order. Receiving less than the
// total is rejected before anything is written; the change is recorded on
// the payment row.
func (s *service) ConfirmCash(ctx context.Context, input CashInput) (*ReceiptDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ConfirmedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "confirming user required")
	}

	var receipt *ReceiptDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.loadPendingOrder(ctx, tx, input.OrderID)
		if err != nil {
			return err
		}
		if input.CashReceived.LessThan(order.TotalAmount) {
			s.commerce.IncPaymentRejected(enums.PaymentMethodCashOnDelivery.String(), "insufficient_cash")
			return pkgerrors.New(pkgerrors.CodeValidation, "cash received is less than the order total").
				WithDetails(map[string]any{
					"received": input.CashReceived,
					"total":    order.TotalAmount,
				})
		}
		change := input.CashReceived.Sub(order.TotalAmount)

		payment := &models.Payment{
			OrderID:      order.ID,
			Amount:       order.TotalAmount,
			Method:       enums.PaymentMethodCashOnDelivery,
			CashReceived: &input.CashReceived,
			CashChange:   &change,
		}

		now := time.Now().UTC()
		order.CashConfirmedBy = &input.ConfirmedBy
		order.CashConfirmedAt = &now

		receipt, err = s.settle(ctx, tx, order, payment, input.ConfirmedBy)
		if err != nil {
			return err
		}
		receipt.Change = &change
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterConfirm(ctx, receipt)
	return receipt, nil
}

func (s *service) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	payments, err := s.repo.ListPaymentsByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return payments, nil
}

func (s *service) confirm(
	ctx context.Context,
	orderID uuid.UUID,
	method enums.PaymentMethod,
	actorID uuid.UUID,
	build func(order *models.Order) *models.Payment,
) (*ReceiptDTO, error) {
	var receipt *ReceiptDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.loadPendingOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		receipt, err = s.settle(ctx, tx, order, build(order), actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterConfirm(ctx, receipt)
	return receipt, nil
}

func (s *service) loadPendingOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.WithTx(tx).FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.IsPaid() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already paid")
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is cancelled")
	}
	return order, nil
}

// settle writes the payment row, transitions the order to paid and
// allocates stock for every line inside the caller's transaction.
func (s *service) settle(ctx context.Context, tx *gorm.DB, order *models.Order, payment *models.Payment, actorID uuid.UUID) (*ReceiptDTO, error) {
	now := time.Now().UTC()
	payment.Status = enums.PaymentStateCompleted
	payment.CompletedAt = &now

	created, err := s.repo.WithTx(tx).CreatePayment(ctx, payment)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}

	order.Status = enums.OrderStatusPaid
	order.PaymentStatus = enums.PaymentStatusPaid
	order.PaymentMethod = payment.Method
	order.PaidAmount = order.TotalAmount
	order.PaidAt = &now
	if err := s.orders.WithTx(tx).SaveOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
	}

	var actor *uuid.UUID
	if actorID != uuid.Nil {
		actor = &actorID
	}
	for _, item := range order.Items {
		_, err := s.stock.Allocate(ctx, tx, stock.AllocationInput{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			OrderID:     order.ID,
			OrderItemID: item.ID,
			Reference:   fmt.Sprintf("order allocation %s", order.OrderNumber),
			ActorID:     actor,
		})
		if err != nil {
			return nil, err
		}
	}

	return &ReceiptDTO{
		PaymentID:   created.ID,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Method:      payment.Method,
		Amount:      payment.Amount,
		CompletedAt: now,
	}, nil
}

// afterConfirm runs the post-commit side effects: metrics and the
// best-effort receipt email.
func (s *service) afterConfirm(ctx context.Context, receipt *ReceiptDTO) {
	s.commerce.IncPaymentConfirmed(receipt.Method.String())
	if s.mail == nil {
		return
	}
	order, err := s.orders.FindOrder(ctx, receipt.OrderID)
	if err != nil {
		return
	}
	user, err := s.users.FindUser(ctx, order.CustomerID)
	if err != nil {
		return
	}
	s.mail.SendAsync(ctx, mailer.PaymentReceipt(
		user.Email, user.FirstName, receipt.OrderNumber,
		receipt.Amount, s.delivery.Currency, receipt.Method.String(),
	))
}
