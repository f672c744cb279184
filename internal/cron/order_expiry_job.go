package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/mamadoubah/nimbashop-backend/internal/orders"
	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/logger"
	"go.uber.org/multierr"
)

const (
	orderExpirationDays  = 7
	orderExpiryBatchSize = 100
)

// OrderExpiryJobParams configure the pending order expiry job.
type OrderExpiryJobParams struct {
	Logger     *logger.Logger
	Repository pendingOrderLister
	Orders     orderCanceller
	TTLDays    int
}

type pendingOrderLister interface {
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

type orderCanceller interface {
	Cancel(ctx context.Context, input orders.CancelInput) (*orders.OrderDTO, error)
}

// NewOrderExpiryJob builds the job that cancels pending orders whose payment window lapsed.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	ttl := params.TTLDays
	if ttl <= 0 {
		ttl = orderExpirationDays
	}
	return &orderExpiryJob{
		logg:   params.Logger,
		repo:   params.Repository,
		orders: params.Orders,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

type orderExpiryJob struct {
	logg   *logger.Logger
	repo   pendingOrderLister
	orders orderCanceller
	ttl    int
	now    func() time.Time
}

func (j *orderExpiryJob) Name() string { return "order-expiry" }

func (j *orderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.ttl) * 24 * time.Hour)
	stale, err := j.repo.ListPendingOlderThan(ctx, cutoff, orderExpiryBatchSize)
	if err != nil {
		return fmt.Errorf("list pending orders: %w", err)
	}

	var errs error
	cancelled := 0
	for _, order := range stale {
		_, err := j.orders.Cancel(ctx, orders.CancelInput{
			OrderID: order.ID,
			ActorID: order.CustomerID,
			Reason:  "payment window expired",
		})
		if err != nil {
			orderCtx := j.logg.WithField(ctx, "order_number", order.OrderNumber)
			j.logg.Error(orderCtx, "failed to expire order", err)
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", order.OrderNumber, err))
			continue
		}
		cancelled++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":    cutoff,
		"ttl_days":  j.ttl,
		"stale":     len(stale),
		"cancelled": cancelled,
	})
	j.logg.Info(logCtx, "order expiry complete")
	return errs
}
