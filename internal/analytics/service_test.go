package analytics

import (
	"context"
	"testing"
	"time"

	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
)

type stubAnalyticsRepo struct {
	revenueCalls [][2]time.Time
}

func (s *stubAnalyticsRepo) RevenueByDay(ctx context.Context, from, to time.Time) ([]RevenuePoint, error) {
	s.revenueCalls = append(s.revenueCalls, [2]time.Time{from, to})
	return nil, nil
}

func (s *stubAnalyticsRepo) TopProductsByUnits(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error) {
	return nil, nil
}

func (s *stubAnalyticsRepo) CommissionBySupplier(ctx context.Context, from, to time.Time) ([]SupplierCommission, error) {
	return nil, nil
}

func TestRevenueDefaultsToLastThirtyDays(t *testing.T) {
	repo := &stubAnalyticsRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.RevenueByDay(context.Background(), Range{}); err != nil {
		t.Fatalf("RevenueByDay: %v", err)
	}
	if len(repo.revenueCalls) != 1 {
		t.Fatalf("calls = %d, want 1", len(repo.revenueCalls))
	}
	span := repo.revenueCalls[0][1].Sub(repo.revenueCalls[0][0])
	if span != 30*24*time.Hour {
		t.Fatalf("span = %s, want 720h", span)
	}
}

func TestRevenueRejectsInvertedRange(t *testing.T) {
	svc, err := NewService(&stubAnalyticsRepo{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	now := time.Now().UTC()
	_, err = svc.RevenueByDay(context.Background(), Range{From: now, To: now.Add(-time.Hour)})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
