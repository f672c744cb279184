package cron

import (
	"context"
	"fmt"

	"github.com/mamadoubah/nimbashop-backend/internal/notifications"
	"github.com/mamadoubah/nimbashop-backend/pkg/logger"
)

// LowStockJobParams configure the low stock alert job.
type LowStockJobParams struct {
	Logger        *logger.Logger
	Notifications lowStockScanner
}

type lowStockScanner interface {
	ScanLowStock(ctx context.Context) ([]notifications.LowStockProduct, error)
}

// NewLowStockJob builds the job that flags products under their stock threshold
// and alerts active managers.
func NewLowStockJob(params LowStockJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	return &lowStockJob{
		logg:    params.Logger,
		scanner: params.Notifications,
	}, nil
}

type lowStockJob struct {
	logg    *logger.Logger
	scanner lowStockScanner
}

func (j *lowStockJob) Name() string { return "low-stock-scan" }

func (j *lowStockJob) Run(ctx context.Context) error {
	flagged, err := j.scanner.ScanLowStock(ctx)
	if err != nil {
		return fmt.Errorf("low stock scan: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "flagged", len(flagged))
	j.logg.Info(logCtx, "low stock scan complete")
	return nil
}
