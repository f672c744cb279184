package refunds

import (
	"context"
	"errors"
	"fmt"
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
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockRestorer interface {
	Restore(ctx context.Context, tx *gorm.DB, input stock.RestoreInput) error
}

type userLoader interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service handles the refund lifecycle.
type Service interface {
	Request(ctx context.Context, input RequestInput) (*RefundDTO, error)
	Process(ctx context.Context, input ProcessInput) (*RefundDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*RefundDTO, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]RefundDTO, error)
	ListPending(ctx context.Context) ([]RefundDTO, error)
}

type service struct {
	repo     Repository
	orders   orders.Repository
	stock    stockRestorer
	users    userLoader
	tx       txRunner
	mail     mailer.Sender
	delivery config.DeliveryConfig
}

// NewService builds the refund service. The mailer is optional.
func NewService(
	repo Repository,
	orderRepo orders.Repository,
	stockSvc stockRestorer,
	users userLoader,
	tx txRunner,
	mail mailer.Sender,
	delivery config.DeliveryConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("refunds repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("stock restorer required")
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
		delivery: delivery,
	}, nil
}

// Request opens a refund for a paid order. The order is cancelled in the
// same transaction: stock is restored and supplier sales are voided.
func (s *service) Request(ctx context.Context, input RequestInput) (*RefundDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.RequestedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requesting user required")
	}
	if !input.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown refund reason")
	}

	var created *models.Refund
	var orderNumber string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		order, err := orderRepo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.CustomerID != input.RequestedBy {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
		if !order.IsPaid() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only paid orders can be refunded")
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already cancelled")
		}

		if _, err := repo.FindOpenRefundByOrder(ctx, order.ID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already has an open refund")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open refunds")
		}

		for _, item := range order.Items {
			err := s.stock.Restore(ctx, tx, stock.RestoreInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Reference: fmt.Sprintf("refund request %s", order.OrderNumber),
				ActorID:   &input.RequestedBy,
			})
			if err != nil {
				return err
			}
		}
		if err := orderRepo.CancelSupplierSalesByOrder(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel supplier sales")
		}

		order.Status = enums.OrderStatusCancelled
		if err := orderRepo.SaveOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
		}

		refund := &models.Refund{
			OrderID:           order.ID,
			Amount:            order.PaidAmount,
			Reason:            input.Reason,
			ReasonDescription: input.ReasonDescription,
			Status:            enums.RefundStatusPending,
			Method:            order.PaymentMethod,
			RequestedBy:       input.RequestedBy,
		}
		if _, err := repo.CreateRefund(ctx, refund); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refund")
		}
		created = refund
		orderNumber = order.OrderNumber
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, created.RequestedBy, func(u *models.User) mailer.Message {
		return mailer.RefundRequested(u.Email, u.FirstName, orderNumber, created.Amount, s.delivery.Currency)
	})
	dto := toRefundDTO(created)
	dto.OrderNumber = orderNumber
	return dto, nil
}

// Process settles a pending refund. Approval marks the order refunded;
// rejection leaves the order cancelled but unrefunded.
func (s *service) Process(ctx context.Context, input ProcessInput) (*RefundDTO, error) {
	if input.RefundID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund id required")
	}
	if input.ProcessedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "processing user required")
	}

	var processed *models.Refund
	var orderNumber string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		refund, err := repo.FindRefund(ctx, input.RefundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "refund not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund")
		}
		if !refund.Status.IsOpen() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "refund already settled")
		}

		now := time.Now().UTC()
		refund.ProcessedBy = &input.ProcessedBy
		refund.ProcessedAt = &now
		refund.TransactionID = input.TransactionID
		if input.Approve {
			refund.Status = enums.RefundStatusCompleted
		} else {
			refund.Status = enums.RefundStatusFailed
		}
		if err := repo.SaveRefund(ctx, refund); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save refund")
		}

		order, err := orderRepo.FindOrder(ctx, refund.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		orderNumber = order.OrderNumber
		if input.Approve {
			order.Status = enums.OrderStatusRefunded
			order.PaymentStatus = enums.PaymentStatusRefunded
			if err := orderRepo.SaveOrder(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
			}
		}
		processed = refund
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, processed.RequestedBy, func(u *models.User) mailer.Message {
		return mailer.RefundProcessed(u.Email, u.FirstName, orderNumber, processed.Amount, s.delivery.Currency, input.Approve)
	})
	dto := toRefundDTO(processed)
	dto.OrderNumber = orderNumber
	return dto, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*RefundDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund id required")
	}
	refund, err := s.repo.FindRefund(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "refund not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund")
	}
	return toRefundDTO(refund), nil
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]RefundDTO, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	refunds, err := s.repo.ListRefundsByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list refunds")
	}
	return toRefundDTOs(refunds), nil
}

func (s *service) ListPending(ctx context.Context) ([]RefundDTO, error) {
	refunds, err := s.repo.ListRefundsByStatus(ctx, enums.RefundStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending refunds")
	}
	return toRefundDTOs(refunds), nil
}

func (s *service) notify(ctx context.Context, userID uuid.UUID, build func(*models.User) mailer.Message) {
	if s.mail == nil {
		return
	}
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return
	}
	s.mail.SendAsync(ctx, build(user))
}

func toRefundDTO(r *models.Refund) *RefundDTO {
	return &RefundDTO{
		ID:                r.ID,
		OrderID:           r.OrderID,
		Amount:            r.Amount,
		Reason:            r.Reason,
		ReasonDescription: r.ReasonDescription,
		Status:            r.Status,
		Method:            r.Method,
		TransactionID:     r.TransactionID,
		RequestedBy:       r.RequestedBy,
		ProcessedBy:       r.ProcessedBy,
		CreatedAt:         r.CreatedAt,
		ProcessedAt:       r.ProcessedAt,
	}
}

func toRefundDTOs(rows []models.Refund) []RefundDTO {
	out := make([]RefundDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toRefundDTO(&rows[i]))
	}
	return out
}
