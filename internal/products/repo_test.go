package product

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.Product{},
	))

	return db
}

func seedProduct(t *testing.T, db *gorm.DB, categoryID uuid.UUID, sku string, price string, active bool, createdAt time.Time) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:       "Produit " + sku,
		SKU:        sku,
		Price:      decimal.RequireFromString(price),
		CategoryID: categoryID,
		IsActive:   active,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRepositoryFindProductBySKU(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := &models.Category{Name: "Cosmetiques"}
	require.NoError(t, db.Create(category).Error)

	seeded := seedProduct(t, db, category.ID, "SAV-001", "25000", true, time.Now())

	found, err := repo.FindProductBySKU(ctx, "SAV-001")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)

	_, err = repo.FindProductBySKU(ctx, "SAV-999")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryFindActiveProduct(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := &models.Category{Name: "Cosmetiques"}
	require.NoError(t, db.Create(category).Error)

	active := seedProduct(t, db, category.ID, "SAV-001", "25000", true, time.Now())
	inactive := seedProduct(t, db, category.ID, "SAV-002", "25000", false, time.Now())

	found, err := repo.FindActiveProduct(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, found.ID)

	_, err = repo.FindActiveProduct(ctx, inactive.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListProductsFilters(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cosmetics := &models.Category{Name: "Cosmetiques"}
	textiles := &models.Category{Name: "Textiles"}
	require.NoError(t, db.Create(cosmetics).Error)
	require.NoError(t, db.Create(textiles).Error)

	base := time.Now().Add(-time.Hour)
	seedProduct(t, db, cosmetics.ID, "SAV-001", "25000", true, base)
	seedProduct(t, db, cosmetics.ID, "SAV-002", "80000", true, base.Add(time.Minute))
	seedProduct(t, db, textiles.ID, "TEX-001", "120000", true, base.Add(2*time.Minute))
	seedProduct(t, db, cosmetics.ID, "SAV-003", "30000", false, base.Add(3*time.Minute))

	rows, err := repo.ListProducts(ctx, ListFilters{CategoryID: &cosmetics.ID}, nil, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	activeOnly := true
	rows, err = repo.ListProducts(ctx, ListFilters{CategoryID: &cosmetics.ID, IsActive: &activeOnly}, nil, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	priceMax := decimal.RequireFromString("50000")
	rows, err = repo.ListProducts(ctx, ListFilters{PriceMax: &priceMax}, nil, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.ListProducts(ctx, ListFilters{Query: "tex"}, nil, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "TEX-001", rows[0].SKU)
}

func TestRepositoryListProductsOrdering(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := &models.Category{Name: "Cosmetiques"}
	require.NoError(t, db.Create(category).Error)

	base := time.Now().Add(-time.Hour)
	oldest := seedProduct(t, db, category.ID, "SAV-001", "25000", true, base)
	newest := seedProduct(t, db, category.ID, "SAV-002", "25000", true, base.Add(time.Minute))

	rows, err := repo.ListProducts(ctx, ListFilters{}, nil, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newest.ID, rows[0].ID)
	assert.Equal(t, oldest.ID, rows[1].ID)
}
