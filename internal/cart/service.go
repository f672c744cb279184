package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/internal/stock"
	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindActiveProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type availabilityChecker interface {
	Availability(ctx context.Context, productID uuid.UUID) (*stock.Availability, error)
}

// Line is one cart row with its current catalog price.
type Line struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// View is the customer-facing cart snapshot.
type View struct {
	CartID   uuid.UUID       `json:"cart_id"`
	Lines    []Line          `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Service exposes cart operations scoped to a customer.
type Service interface {
	Get(ctx context.Context, customerID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, customerID, productID uuid.UUID, qty int) (*View, error)
	UpdateItem(ctx context.Context, customerID, productID uuid.UUID, qty int) (*View, error)
	RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, customerID uuid.UUID) error
}

type service struct {
	repo     Repository
	tx       txRunner
	products productLoader
	stock    availabilityChecker
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, tx txRunner, products productLoader, stockSvc availabilityChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("availability checker required")
	}
	return &service{repo: repo, tx: tx, products: products, stock: stockSvc}, nil
}

func (s *service) Get(ctx context.Context, customerID uuid.UUID) (*View, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	cart, err := s.repo.FindCartByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &View{Subtotal: decimal.Zero}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return buildView(cart), nil
}

// AddItem puts qty units of the product in the cart, merging with an
// existing line. The requested total is checked against combined physical
// plus dropship availability.
func (s *service) AddItem(ctx context.Context, customerID, productID uuid.UUID, qty int) (*View, error) {
	if err := validateItemInput(customerID, productID, qty); err != nil {
		return nil, err
	}

	product, err := s.products.FindActiveProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := findOrCreateCart(ctx, repo, customerID)
		if err != nil {
			return err
		}

		target := qty
		item, err := repo.FindItem(ctx, cart.ID, product.ID)
		switch {
		case err == nil:
			target = item.Quantity + qty
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = &models.CartItem{CartID: cart.ID, ProductID: product.ID}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}

		avail, err := s.stock.Availability(ctx, product.ID)
		if err != nil {
			return err
		}
		if avail.Total < target {
			return pkgerrors.New(pkgerrors.CodeInsufficient, "requested quantity exceeds availability").
				WithDetails(stock.InsufficientStockDetails{
					ProductID: product.ID,
					Requested: target,
					Available: avail.Total,
				})
		}

		item.Quantity = target
		if err := repo.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, customerID)
}

// UpdateItem sets the line to an absolute quantity; zero removes the line.
func (s *service) UpdateItem(ctx context.Context, customerID, productID uuid.UUID, qty int) (*View, error) {
	if customerID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer and product ids required")
	}
	if qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if qty == 0 {
		return s.RemoveItem(ctx, customerID, productID)
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.FindCartByCustomer(ctx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		item, err := repo.FindItem(ctx, cart.ID, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}

		avail, err := s.stock.Availability(ctx, productID)
		if err != nil {
			return err
		}
		if avail.Total < qty {
			return pkgerrors.New(pkgerrors.CodeInsufficient, "requested quantity exceeds availability").
				WithDetails(stock.InsufficientStockDetails{
					ProductID: productID,
					Requested: qty,
					Available: avail.Total,
				})
		}

		item.Quantity = qty
		if err := repo.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, customerID)
}

func (s *service) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*View, error) {
	if customerID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer and product ids required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.FindCartByCustomer(ctx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		item, err := repo.FindItem(ctx, cart.ID, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}
		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, customerID)
}

func (s *service) Clear(ctx context.Context, customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.FindCartByCustomer(ctx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if err := repo.DeleteItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return nil
	})
}

func validateItemInput(customerID, productID uuid.UUID, qty int) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return nil
}

func findOrCreateCart(ctx context.Context, repo Repository, customerID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindCartByCustomer(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	created, err := repo.CreateCart(ctx, &models.Cart{CustomerID: customerID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

func buildView(cart *models.Cart) *View {
	view := &View{CartID: cart.ID, Subtotal: decimal.Zero}
	for _, item := range cart.Items {
		line := Line{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			line.Name = item.Product.Name
			line.SKU = item.Product.SKU
			line.UnitPrice = item.Product.Price
			line.LineTotal = item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		view.Lines = append(view.Lines, line)
		view.Subtotal = view.Subtotal.Add(line.LineTotal)
	}
	return view
}
