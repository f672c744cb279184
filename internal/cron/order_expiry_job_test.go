package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mamadoubah/nimbashop-backend/internal/orders"
	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/logger"
	"github.com/google/uuid"
)

func TestOrderExpiryJobCancelsStaleOrders(t *testing.T) {
	now := time.Date(2026, 2, 15, 8, 0, 0, 0, time.UTC)
	stale := []models.Order{
		{ID: uuid.New(), OrderNumber: "NS-000101", CustomerID: uuid.New()},
		{ID: uuid.New(), OrderNumber: "NS-000102", CustomerID: uuid.New()},
	}
	repo := &fakePendingOrderLister{orders: stale}
	canceller := &fakeOrderCanceller{}
	job := newOrderExpiryJob(t, repo, canceller)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expectedCutoff := now.UTC().Add(-orderExpirationDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, repo.lastCutoff)
	}
	if len(canceller.inputs) != 2 {
		t.Fatalf("expected 2 cancellations, got %d", len(canceller.inputs))
	}
	first := canceller.inputs[0]
	if first.OrderID != stale[0].ID {
		t.Fatalf("expected order %s cancelled first, got %s", stale[0].ID, first.OrderID)
	}
	if first.Reason != "payment window expired" {
		t.Fatalf("unexpected cancel reason %q", first.Reason)
	}
	if first.CustomerID != nil {
		t.Fatal("expiry must not scope the cancellation to a customer")
	}
}

func TestOrderExpiryJobContinuesPastFailures(t *testing.T) {
	stale := []models.Order{
		{ID: uuid.New(), OrderNumber: "NS-000201", CustomerID: uuid.New()},
		{ID: uuid.New(), OrderNumber: "NS-000202", CustomerID: uuid.New()},
	}
	repo := &fakePendingOrderLister{orders: stale}
	canceller := &fakeOrderCanceller{failFirst: true}
	job := newOrderExpiryJob(t, repo, canceller)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected aggregated error")
	}
	if len(canceller.inputs) != 2 {
		t.Fatalf("expected both orders attempted, got %d", len(canceller.inputs))
	}
}

func TestOrderExpiryJobPropagatesListErrors(t *testing.T) {
	repo := &fakePendingOrderLister{err: errors.New("boom")}
	job := newOrderExpiryJob(t, repo, &fakeOrderCanceller{})

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newOrderExpiryJob(t *testing.T, repo *fakePendingOrderLister, canceller *fakeOrderCanceller) *orderExpiryJob {
	t.Helper()
	jobIface, err := NewOrderExpiryJob(OrderExpiryJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
		Orders:     canceller,
	})
	if err != nil {
		t.Fatalf("NewOrderExpiryJob: %v", err)
	}
	job, ok := jobIface.(*orderExpiryJob)
	if !ok {
		t.Fatalf("expected orderExpiryJob, got %T", jobIface)
	}
	return job
}

type fakePendingOrderLister struct {
	orders     []models.Order
	err        error
	lastCutoff time.Time
}

func (f *fakePendingOrderLister) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	f.lastCutoff = cutoff
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

type fakeOrderCanceller struct {
	inputs    []orders.CancelInput
	failFirst bool
}

func (f *fakeOrderCanceller) Cancel(ctx context.Context, input orders.CancelInput) (*orders.OrderDTO, error) {
	f.inputs = append(f.inputs, input)
	if f.failFirst && len(f.inputs) == 1 {
		return nil, errors.New("cancel failed")
	}
	return &orders.OrderDTO{}, nil
}
