package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/pagination"
)

type stubCatalogRepo struct {
	categories map[uuid.UUID]*models.Category
	products   map[uuid.UUID]*models.Product
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{
		categories: map[uuid.UUID]*models.Category{},
		products:   map[uuid.UUID]*models.Product{},
	}
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCatalogRepo) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	for _, c := range s.categories {
		if c.Name == category.Name {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	s.categories[category.ID] = category
	return category, nil
}

func (s *stubCatalogRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, c := range s.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubCatalogRepo) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, ok := s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (s *stubCatalogRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	delete(s.categories, id)
	return nil
}

func (s *stubCatalogRepo) CountProductsByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	for _, p := range s.products {
		if p.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (s *stubCatalogRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.products[product.ID] = product
	return product, nil
}

func (s *stubCatalogRepo) SaveProduct(ctx context.Context, product *models.Product) error {
	s.products[product.ID] = product
	return nil
}

func (s *stubCatalogRepo) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *stubCatalogRepo) FindActiveProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok || !p.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *stubCatalogRepo) FindProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	for _, p := range s.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) ListProducts(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	var out []models.Product
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func newCatalogService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func seedCategory(repo *stubCatalogRepo, name string) *models.Category {
	category := &models.Category{ID: uuid.New(), Name: name}
	repo.categories[category.ID] = category
	return category
}

func TestCreateProductRejectsDuplicateSKU(t *testing.T) {
	repo := newStubCatalogRepo()
	category := seedCategory(repo, "Cosmetiques")
	svc := newCatalogService(t, repo)

	input := CreateProductInput{
		Name:       "Savon noir",
		SKU:        "SAV-001",
		Price:      decimal.RequireFromString("25000"),
		CategoryID: category.ID,
		IsActive:   true,
	}
	if _, err := svc.CreateProduct(context.Background(), input); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	_, err := svc.CreateProduct(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateProductUnknownCategory(t *testing.T) {
	repo := newStubCatalogRepo()
	svc := newCatalogService(t, repo)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Savon noir",
		SKU:        "SAV-001",
		Price:      decimal.RequireFromString("25000"),
		CategoryID: uuid.New(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateProductPartialFields(t *testing.T) {
	repo := newStubCatalogRepo()
	category := seedCategory(repo, "Cosmetiques")
	svc := newCatalogService(t, repo)

	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Savon noir",
		SKU:        "SAV-001",
		Price:      decimal.RequireFromString("25000"),
		CategoryID: category.ID,
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	newPrice := decimal.RequireFromString("27500")
	inactive := false
	updated, err := svc.UpdateProduct(context.Background(), created.ID, UpdateProductInput{
		Price:    &newPrice,
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if !updated.Price.Equal(newPrice) || updated.IsActive {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if updated.Name != "Savon noir" {
		t.Fatalf("untouched field changed: %q", updated.Name)
	}
}

func TestDeleteCategoryWithProducts(t *testing.T) {
	repo := newStubCatalogRepo()
	category := seedCategory(repo, "Cosmetiques")
	svc := newCatalogService(t, repo)

	if _, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Savon noir",
		SKU:        "SAV-001",
		Price:      decimal.RequireFromString("25000"),
		CategoryID: category.ID,
	}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	err := svc.DeleteCategory(context.Background(), category.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, ok := repo.categories[category.ID]; !ok {
		t.Fatal("category must survive a refused delete")
	}
}

func TestFindActiveProductSkipsInactive(t *testing.T) {
	repo := newStubCatalogRepo()
	category := seedCategory(repo, "Cosmetiques")
	svc := newCatalogService(t, repo)

	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Savon noir",
		SKU:        "SAV-001",
		Price:      decimal.RequireFromString("25000"),
		CategoryID: category.ID,
		IsActive:   false,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	if _, err := svc.FindActiveProduct(context.Background(), created.ID); err == nil {
		t.Fatal("expected inactive product to be hidden")
	}
}
