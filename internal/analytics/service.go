package analytics

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
)

const (
	defaultRangeDays = 30
	topProductsLimit = 10
)

// Service exposes the manager dashboard reports.
type Service interface {
	RevenueByDay(ctx context.Context, r Range) ([]RevenuePoint, error)
	TopProducts(ctx context.Context, r Range) ([]TopProduct, error)
	CommissionBySupplier(ctx context.Context, r Range) ([]SupplierCommission, error)
	Dashboard(ctx context.Context, r Range) (*Dashboard, error)
}

type service struct {
	repo Repository
}

// NewService builds the analytics service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) RevenueByDay(ctx context.Context, r Range) ([]RevenuePoint, error) {
	from, to, err := normalizeRange(r)
	if err != nil {
		return nil, err
	}
	points, err := s.repo.RevenueByDay(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revenue by day")
	}
	return points, nil
}

func (s *service) TopProducts(ctx context.Context, r Range) ([]TopProduct, error) {
	from, to, err := normalizeRange(r)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.TopProductsByUnits(ctx, from, to, topProductsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top products")
	}
	return products, nil
}

func (s *service) CommissionBySupplier(ctx context.Context, r Range) ([]SupplierCommission, error) {
	from, to, err := normalizeRange(r)
	if err != nil {
		return nil, err
	}
	commissions, err := s.repo.CommissionBySupplier(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commission by supplier")
	}
	return commissions, nil
}

func (s *service) Dashboard(ctx context.Context, r Range) (*Dashboard, error) {
	revenue, err := s.RevenueByDay(ctx, r)
	if err != nil {
		return nil, err
	}
	products, err := s.TopProducts(ctx, r)
	if err != nil {
		return nil, err
	}
	commissions, err := s.CommissionBySupplier(ctx, r)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Revenue:     revenue,
		TopProducts: products,
		Commissions: commissions,
	}, nil
}

func normalizeRange(r Range) (time.Time, time.Time, error) {
	to := r.To
	if to.IsZero() {
		to = time.Now().UTC()
	}
	from := r.From
	if from.IsZero() {
		from = to.AddDate(0, 0, -defaultRangeDays)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "range start must precede range end")
	}
	return from, to, nil
}
