package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service covers warehouse operations plus the allocation hooks used by
// payment confirmation and order cancellation.
type Service interface {
	Availability(ctx context.Context, productID uuid.UUID) (*Availability, error)
	Add(ctx context.Context, input MovementInput) (*models.Stock, error)
	Remove(ctx context.Context, input MovementInput) (*models.Stock, error)
	Adjust(ctx context.Context, input AdjustInput) (*models.Stock, error)
	Movements(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockMovement, error)
	LowStock(ctx context.Context) ([]models.Stock, error)
	Allocate(ctx context.Context, tx *gorm.DB, input AllocationInput) (*AllocationResult, error)
	Restore(ctx context.Context, tx *gorm.DB, input RestoreInput) error
}

type service struct {
	repo    Repository
	tx      txRunner
	metrics *metrics.CommerceMetrics
}

// NewService builds a stock service with the required dependencies.
func NewService(repo Repository, tx txRunner, commerce *metrics.CommerceMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, metrics: commerce}, nil
}

// Availability merges the physical stock row with every active dropship
// listing for the product.
func (s *service) Availability(ctx context.Context, productID uuid.UUID) (*Availability, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	result := &Availability{ProductID: productID}

	stockRow, err := s.repo.FindStockByProduct(ctx, productID)
	switch {
	case err == nil:
		if stockRow.IsActive {
			result.PhysicalAvailable = stockRow.AvailableQty
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// no physical stock record yet, dropship only
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
	}

	listings, err := s.repo.FindActiveDropshipByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dropship listings")
	}
	for _, dp := range listings {
		result.VirtualAvailable += dp.VirtualStock
		entry := SupplierAvailability{SupplierID: dp.SupplierID, VirtualStock: dp.VirtualStock}
		if dp.Supplier != nil {
			entry.SupplierName = dp.Supplier.Name
		}
		result.Suppliers = append(result.Suppliers, entry)
	}

	result.Total = result.PhysicalAvailable + result.VirtualAvailable
	return result, nil
}

func (s *service) Add(ctx context.Context, input MovementInput) (*models.Stock, error) {
	if err := validateMovement(input); err != nil {
		return nil, err
	}

	var updated *models.Stock
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		stockRow, err := findOrCreateStock(ctx, repo, input.ProductID)
		if err != nil {
			return err
		}

		before := stockRow.CurrentQty
		stockRow.CurrentQty += input.Quantity
		if err := saveWithMovement(ctx, repo, stockRow, enums.StockMovementIn, input.Quantity, before, input.Reason, input.ActorID); err != nil {
			return err
		}
		updated = stockRow
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncStockMovement(enums.StockMovementIn.String())
	return updated, nil
}

func (s *service) Remove(ctx context.Context, input MovementInput) (*models.Stock, error) {
	if err := validateMovement(input); err != nil {
		return nil, err
	}

	var updated *models.Stock
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		stockRow, err := repo.FindStockByProduct(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
		}
		if stockRow.CurrentQty < input.Quantity {
			return pkgerrors.New(pkgerrors.CodeInsufficient, "cannot remove more than current quantity").
				WithDetails(InsufficientStockDetails{
					ProductID: input.ProductID,
					Requested: input.Quantity,
					Available: stockRow.CurrentQty,
				})
		}

		before := stockRow.CurrentQty
		stockRow.CurrentQty -= input.Quantity
		if err := saveWithMovement(ctx, repo, stockRow, enums.StockMovementOut, input.Quantity, before, input.Reason, input.ActorID); err != nil {
			return err
		}
		updated = stockRow
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncStockMovement(enums.StockMovementOut.String())
	return updated, nil
}

func (s *service) Adjust(ctx context.Context, input AdjustInput) (*models.Stock, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.NewQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}

	var updated *models.Stock
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		stockRow, err := findOrCreateStock(ctx, repo, input.ProductID)
		if err != nil {
			return err
		}

		before := stockRow.CurrentQty
		if before == input.NewQty {
			updated = stockRow
			return nil
		}
		stockRow.CurrentQty = input.NewQty
		delta := input.NewQty - before
		if delta < 0 {
			delta = -delta
		}
		if err := saveWithMovement(ctx, repo, stockRow, enums.StockMovementAdjustment, delta, before, input.Reason, input.ActorID); err != nil {
			return err
		}
		updated = stockRow
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncStockMovement(enums.StockMovementAdjustment.String())
	return updated, nil
}

func (s *service) Movements(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockMovement, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	stockRow, err := s.repo.FindStockByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
	}
	movements, err := s.repo.ListMovementsByStock(ctx, stockRow.ID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list movements")
	}
	return movements, nil
}

func (s *service) LowStock(ctx context.Context) ([]models.Stock, error) {
	stocks, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}
	s.metrics.SetLowStockProducts(len(stocks))
	return stocks, nil
}

// Allocate sources one order line, draining physical stock first and then
// dropship listings oldest first. The whole line is checked against combined
// availability before anything is mutated, so a short line never leaves a
// partial decrement behind.
func (s *service) Allocate(ctx context.Context, tx *gorm.DB, input AllocationInput) (*AllocationResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "allocation requires a transaction")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	repo := s.repo.WithTx(tx)

	var stockRow *models.Stock
	physical := 0
	row, err := repo.FindStockByProduct(ctx, input.ProductID)
	switch {
	case err == nil:
		stockRow = row
		if stockRow.IsActive {
			physical = stockRow.AvailableQty
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
	}

	listings, err := repo.FindActiveDropshipByProduct(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dropship listings")
	}
	virtual := 0
	for _, dp := range listings {
		virtual += dp.VirtualStock
	}

	if physical+virtual < input.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficient, "insufficient stock for product").
			WithDetails(InsufficientStockDetails{
				ProductID: input.ProductID,
				Requested: input.Quantity,
				Available: physical + virtual,
			})
	}

	result := &AllocationResult{}
	remaining := input.Quantity

	if physical > 0 {
		take := remaining
		if take > physical {
			take = physical
		}
		before := stockRow.CurrentQty
		stockRow.CurrentQty -= take
		reason := fmt.Sprintf("order allocation %s", input.Reference)
		if err := saveWithMovement(ctx, repo, stockRow, enums.StockMovementOut, take, before, reason, input.ActorID); err != nil {
			return nil, err
		}
		s.metrics.IncStockMovement(enums.StockMovementOut.String())
		result.PhysicalUnits = take
		remaining -= take
	}

	if remaining == 0 {
		return result, nil
	}

	var sales []models.SupplierSale
	for i := range listings {
		if remaining == 0 {
			break
		}
		dp := &listings[i]
		if dp.VirtualStock <= 0 {
			continue
		}
		units := remaining
		if units > dp.VirtualStock {
			units = dp.VirtualStock
		}
		dp.VirtualStock -= units
		if err := repo.SaveDropshipProduct(ctx, dp); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update dropship listing")
		}

		commission := dp.Margin().Mul(decimal.NewFromInt(int64(units)))
		sales = append(sales, models.SupplierSale{
			SupplierID:        dp.SupplierID,
			DropshipProductID: dp.ID,
			OrderID:           input.OrderID,
			OrderItemID:       input.OrderItemID,
			Quantity:          units,
			SupplierPrice:     dp.SupplierPrice,
			SellingPrice:      dp.SellingPrice,
			CommissionEarned:  commission,
			Status:            enums.SupplierSaleStatusPending,
		})
		result.Suppliers = append(result.Suppliers, SupplierAllocation{
			SupplierID: dp.SupplierID,
			Units:      units,
			Commission: commission,
		})
		result.DropshipUnits += units
		remaining -= units
	}

	if remaining > 0 {
		// availability changed between check and drain, keep the invariant
		return nil, pkgerrors.New(pkgerrors.CodeInsufficient, "insufficient stock for product").
			WithDetails(InsufficientStockDetails{
				ProductID: input.ProductID,
				Requested: input.Quantity,
				Available: input.Quantity - remaining,
			})
	}

	if err := repo.CreateSupplierSales(ctx, sales); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record supplier sales")
	}
	return result, nil
}

// Restore returns units after a cancellation. Units go back to the newest
// active dropship listing when one exists, otherwise to physical stock. This
// mirrors allocation only approximately; the trade-off keeps cancellation a
// single cheap write.
func (s *service) Restore(ctx context.Context, tx *gorm.DB, input RestoreInput) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "restore requires a transaction")
	}
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	repo := s.repo.WithTx(tx)

	listing, err := repo.FindNewestActiveDropship(ctx, input.ProductID)
	if err == nil {
		listing.VirtualStock += input.Quantity
		if err := repo.SaveDropshipProduct(ctx, listing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore dropship listing")
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dropship listing")
	}

	stockRow, err := findOrCreateStock(ctx, repo, input.ProductID)
	if err != nil {
		return err
	}
	before := stockRow.CurrentQty
	stockRow.CurrentQty += input.Quantity
	reason := fmt.Sprintf("order cancellation %s", input.Reference)
	if err := saveWithMovement(ctx, repo, stockRow, enums.StockMovementReturn, input.Quantity, before, reason, input.ActorID); err != nil {
		return err
	}
	s.metrics.IncStockMovement(enums.StockMovementReturn.String())
	return nil
}

func validateMovement(input MovementInput) error {
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.Reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}
	return nil
}

func findOrCreateStock(ctx context.Context, repo Repository, productID uuid.UUID) (*models.Stock, error) {
	stockRow, err := repo.FindStockByProduct(ctx, productID)
	if err == nil {
		return stockRow, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
	}
	created, err := repo.CreateStock(ctx, &models.Stock{ProductID: productID, IsActive: true})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock record")
	}
	return created, nil
}

func saveWithMovement(ctx context.Context, repo Repository, stockRow *models.Stock, movementType enums.StockMovementType, qty, before int, reason string, actorID *uuid.UUID) error {
	now := time.Now().UTC()
	stockRow.LastMovement = &now
	stockRow.Recalculate()
	if err := repo.SaveStock(ctx, stockRow); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save stock")
	}
	movement := &models.StockMovement{
		StockID:   stockRow.ID,
		Type:      movementType,
		Quantity:  qty,
		Reason:    reason,
		QtyBefore: before,
		QtyAfter:  stockRow.CurrentQty,
		ActorID:   actorID,
	}
	if err := repo.CreateMovement(ctx, movement); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}
	return nil
}
