package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/internal/cart"
	"github.com/mamadoubah/nimbashop-backend/internal/stock"
	"github.com/mamadoubah/nimbashop-backend/pkg/config"
	"github.com/mamadoubah/nimbashop-backend/pkg/db"
	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/mailer"
	"github.com/mamadoubah/nimbashop-backend/pkg/metrics"
	"github.com/mamadoubah/nimbashop-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindActiveProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type userLoader interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type stockRestorer interface {
	Restore(ctx context.Context, tx *gorm.DB, input stock.RestoreInput) error
}

// Service exposes order lifecycle operations.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*OrderDTO, error)
	GetForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*OrderDTO, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, p pagination.Params) (*ListResult, error)
	Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error)
	Cancel(ctx context.Context, input CancelInput) (*OrderDTO, error)
}

type service struct {
	repo     Repository
	carts    cart.Repository
	products productLoader
	users    userLoader
	stock    stockRestorer
	tx       txRunner
	mail     mailer.Sender
	commerce *metrics.CommerceMetrics
	delivery config.DeliveryConfig
	orders   config.OrdersConfig
}

// NewService builds the order service. The mailer and metrics are optional.
func NewService(
	repo Repository,
	carts cart.Repository,
	products productLoader,
	users userLoader,
	stockSvc stockRestorer,
	tx txRunner,
	mail mailer.Sender,
	commerce *metrics.CommerceMetrics,
	delivery config.DeliveryConfig,
	ordersCfg config.OrdersConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("stock restorer required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		carts:    carts,
		products: products,
		users:    users,
		stock:    stockSvc,
		tx:       tx,
		mail:     mail,
		commerce: commerce,
		delivery: delivery,
		orders:   ordersCfg,
	}, nil
}

// Checkout turns the customer's cart into a pending order. Prices are
// snapshotted at this moment and never track later catalog edits.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*OrderDTO, error) {
	if err := validateCheckout(input); err != nil {
		return nil, err
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		carts := s.carts.WithTx(tx)

		customerCart, err := carts.FindCartByCustomer(ctx, input.CustomerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(customerCart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		order := &models.Order{
			CustomerID:      input.CustomerID,
			Status:          enums.OrderStatusPending,
			PaymentMethod:   input.PaymentMethod,
			PaymentStatus:   enums.PaymentStatusPending,
			DeliveryAddress: input.DeliveryAddress,
			DeliveryPhone:   input.DeliveryPhone,
			DeliveryNotes:   input.DeliveryNotes,
			DeliveryFee:     s.delivery.Fee(),
		}

		for _, item := range customerCart.Items {
			product, err := s.products.FindActiveProduct(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "cart references an unavailable product").
						WithDetails(map[string]any{"product_id": item.ProductID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			line := models.OrderItem{
				ProductID:   product.ID,
				Quantity:    item.Quantity,
				PriceAtTime: product.Price,
			}
			order.Items = append(order.Items, line)
			order.Subtotal = order.Subtotal.Add(line.LineTotal())
		}
		order.TotalAmount = order.Subtotal.Add(order.DeliveryFee)

		number, err := s.nextOrderNumber(ctx, repo)
		if err != nil {
			return err
		}
		order.OrderNumber = number

		if _, err := repo.CreateOrder(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number already taken, retry checkout")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := carts.DeleteItems(ctx, customerCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.commerce.IncOrderCreated(created.PaymentMethod.String())
	s.notifyCustomer(ctx, created.CustomerID, func(u *models.User) mailer.Message {
		return mailer.OrderConfirmation(u.Email, u.FirstName, created.OrderNumber, created.TotalAmount, s.delivery.Currency)
	})
	return toOrderDTO(created), nil
}

// nextOrderNumber allocates the next sequential number for the current
// month, e.g. CMD-2026-08-0042.
func (s *service) nextOrderNumber(ctx context.Context, repo Repository) (string, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	count, err := repo.CountOrdersCreatedBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count month orders")
	}
	prefix := s.orders.NumberPrefix
	if prefix == "" {
		prefix = "CMD"
	}
	return fmt.Sprintf("%s-%04d-%02d-%04d", prefix, now.Year(), int(now.Month()), count+1), nil
}

func (s *service) GetForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*OrderDTO, error) {
	if orderID == uuid.Nil || customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order and customer ids required")
	}
	order, err := s.repo.FindOrderForCustomer(ctx, orderID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return toOrderDTO(order), nil
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID, p pagination.Params) (*ListResult, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	return s.list(ctx, ListInput{CustomerID: &customerID, Pagination: p})
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return toOrderDTO(order), nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	return s.list(ctx, input)
}

func (s *service) list(ctx context.Context, input ListInput) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Pagination.Limit)

	rows, err := s.repo.ListOrders(ctx, input.Status, input.CustomerID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	result := &ListResult{}
	if len(rows) > limit {
		last := rows[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:limit]
	}
	for i := range rows {
		result.Orders = append(result.Orders, *toOrderDTO(&rows[i]))
	}
	return result, nil
}

// validTransitions lists the allowed manager-driven moves; payment and
// refund flows drive pending->paid and ->refunded elsewhere.
var validTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPaid:       {enums.OrderStatusProcessing},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered},
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	for _, candidate := range validTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !transitionAllowed(order.Status, input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
				WithDetails(map[string]any{"from": order.Status, "to": input.Status})
		}

		order.Status = input.Status
		if input.Status == enums.OrderStatusDelivered {
			now := time.Now().UTC()
			order.DeliveredAt = &now
		}
		if err := repo.SaveOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch updated.Status {
	case enums.OrderStatusShipped:
		s.notifyCustomer(ctx, updated.CustomerID, func(u *models.User) mailer.Message {
			return mailer.OrderShipped(u.Email, u.FirstName, updated.OrderNumber)
		})
	case enums.OrderStatusDelivered:
		s.notifyCustomer(ctx, updated.CustomerID, func(u *models.User) mailer.Message {
			return mailer.OrderDelivered(u.Email, u.FirstName, updated.OrderNumber)
		})
	}
	return toOrderDTO(updated), nil
}

// Cancel aborts an order that has not shipped yet. Paid or processing
// orders get their stock restored and supplier sales cancelled.
func (s *service) Cancel(ctx context.Context, input CancelInput) (*OrderDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var cancelled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if input.CustomerID != nil && order.CustomerID != *input.CustomerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
		if !order.Status.CanBeCancelled() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled").
				WithDetails(map[string]any{"status": order.Status})
		}

		restock := order.Status == enums.OrderStatusPaid || order.Status == enums.OrderStatusProcessing
		if restock {
			for _, item := range order.Items {
				err := s.stock.Restore(ctx, tx, stock.RestoreInput{
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
					Reference: fmt.Sprintf("order cancellation %s", order.OrderNumber),
					ActorID:   &input.ActorID,
				})
				if err != nil {
					return err
				}
			}
			if err := repo.CancelSupplierSalesByOrder(ctx, order.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel supplier sales")
			}
		}

		order.Status = enums.OrderStatusCancelled
		if err := repo.SaveOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderDTO(cancelled), nil
}

// notifyCustomer sends a best-effort email; failures are logged by the
// mailer and never surface to the caller.
func (s *service) notifyCustomer(ctx context.Context, customerID uuid.UUID, build func(*models.User) mailer.Message) {
	if s.mail == nil {
		return
	}
	user, err := s.users.FindUser(ctx, customerID)
	if err != nil {
		return
	}
	s.mail.SendAsync(ctx, build(user))
}

func validateCheckout(input CheckoutInput) error {
	if input.CustomerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if input.DeliveryAddress == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery address required")
	}
	if input.DeliveryPhone == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery phone required")
	}
	return nil
}

func toOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerID:      order.CustomerID,
		Status:          order.Status,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		DeliveryAddress: order.DeliveryAddress,
		DeliveryPhone:   order.DeliveryPhone,
		DeliveryNotes:   order.DeliveryNotes,
		Subtotal:        order.Subtotal,
		DeliveryFee:     order.DeliveryFee,
		TotalAmount:     order.TotalAmount,
		PaidAmount:      order.PaidAmount,
		PaidAt:          order.PaidAt,
		DeliveredAt:     order.DeliveredAt,
		CreatedAt:       order.CreatedAt,
	}
	for i := range order.Items {
		item := &order.Items[i]
		line := ItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			PriceAtTime: item.PriceAtTime,
			LineTotal:   item.LineTotal(),
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}
