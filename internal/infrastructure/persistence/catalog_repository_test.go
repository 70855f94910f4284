package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/catalog"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCategory(t *testing.T, repo *GormCategoryRepository, name string) *catalog.Category {
	t.Helper()
	category, err := catalog.NewCategory(name, "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), category))
	return category
}

func createTestProduct(t *testing.T, repo *GormProductRepository, code string, categoryID uuid.UUID, stock int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(code, "Plancha "+code, categoryID, catalog.SteelTypeStainless, decimal.NewFromInt(12500))
	require.NoError(t, err)
	require.NoError(t, product.SetStock(stock, catalog.DefaultMinimumStock))
	require.NoError(t, repo.Save(context.Background(), product))
	return product
}

func TestGormCategoryRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("saves and finds by name ignoring case", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormCategoryRepository(db)
		category := createTestCategory(t, repo, "Planchas")

		found, err := repo.FindByName(ctx, "planchas")
		require.NoError(t, err)
		assert.Equal(t, category.ID, found.ID)
		assert.True(t, found.Active)

		exists, err := repo.ExistsByName(ctx, "PLANCHAS")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("returns ErrNotFound for unknown id", func(t *testing.T) {
		repo := NewGormCategoryRepository(newTestDB(t))
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("filters by active and searches by name", func(t *testing.T) {
		repo := NewGormCategoryRepository(newTestDB(t))
		createTestCategory(t, repo, "Tubos")
		hidden := createTestCategory(t, repo, "Perfiles")
		hidden.SetActive(false)
		require.NoError(t, repo.Save(ctx, hidden))

		filter := shared.DefaultFilter()
		filter.Filters["active"] = true
		active, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "Tubos", active[0].Name)

		search := shared.DefaultFilter()
		search.Search = "perf"
		count, err := repo.Count(ctx, search)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("delete removes the category products", func(t *testing.T) {
		db := newTestDB(t)
		categories := NewGormCategoryRepository(db)
		products := NewGormProductRepository(db)
		category := createTestCategory(t, categories, "Barras")
		other := createTestCategory(t, categories, "Ángulos")
		createTestProduct(t, products, "BAR-1", category.ID, 10)
		createTestProduct(t, products, "BAR-2", category.ID, 10)
		kept := createTestProduct(t, products, "ANG-1", other.ID, 10)

		n, err := products.CountByCategory(ctx, category.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		require.NoError(t, categories.Delete(ctx, category.ID))

		n, err = products.CountByCategory(ctx, category.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
		_, err = products.FindByID(ctx, kept.ID)
		assert.NoError(t, err)

		assert.ErrorIs(t, categories.Delete(ctx, category.ID), shared.ErrNotFound)
	})
}

func TestGormProductRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips prices and dimensions", func(t *testing.T) {
		db := newTestDB(t)
		category := createTestCategory(t, NewGormCategoryRepository(db), "Planchas")
		repo := NewGormProductRepository(db)

		product, err := catalog.NewProduct("pl-304-2", "Plancha 304 2mm", category.ID, catalog.SteelTypeStainless, decimal.RequireFromString("45990.50"))
		require.NoError(t, err)
		thickness := decimal.NewFromInt(2)
		perKg := decimal.NewFromInt(3200)
		require.NoError(t, product.SetDimensions(catalog.Dimensions{Thickness: &thickness}))
		require.NoError(t, product.SetPrices(product.UnitPrice, nil, &perKg))
		require.NoError(t, repo.Save(ctx, product))

		found, err := repo.FindByCode(ctx, "PL-304-2")
		require.NoError(t, err)
		assert.Equal(t, product.ID, found.ID)
		assert.True(t, found.UnitPrice.Equal(decimal.RequireFromString("45990.50")))
		require.NotNil(t, found.Dimensions.Thickness)
		assert.True(t, found.Dimensions.Thickness.Equal(thickness))
		assert.Nil(t, found.Dimensions.Width)
		assert.Nil(t, found.PricePerMeter)
		require.NotNil(t, found.PricePerKg)
		assert.True(t, found.PricePerKg.Equal(perKg))
	})

	t.Run("low stock filter and count use stock at or below minimum", func(t *testing.T) {
		db := newTestDB(t)
		category := createTestCategory(t, NewGormCategoryRepository(db), "Planchas")
		repo := NewGormProductRepository(db)
		createTestProduct(t, repo, "A", category.ID, catalog.DefaultMinimumStock)
		createTestProduct(t, repo, "B", category.ID, catalog.DefaultMinimumStock+1)
		createTestProduct(t, repo, "C", category.ID, 0)

		count, err := repo.CountLowStock(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		filter := shared.DefaultFilter()
		filter.Filters["low_stock"] = true
		filter.OrderBy = "code"
		filter.OrderDir = "asc"
		low, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, low, 2)
		assert.Equal(t, "A", low[0].Code)
		assert.Equal(t, "C", low[1].Code)
	})

	t.Run("finds by ids and ignores empty input", func(t *testing.T) {
		db := newTestDB(t)
		category := createTestCategory(t, NewGormCategoryRepository(db), "Tubos")
		repo := NewGormProductRepository(db)
		a := createTestProduct(t, repo, "T-1", category.ID, 10)
		createTestProduct(t, repo, "T-2", category.ID, 10)

		products, err := repo.FindByIDs(ctx, []uuid.UUID{a.ID})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "T-1", products[0].Code)

		products, err = repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("paginates", func(t *testing.T) {
		db := newTestDB(t)
		category := createTestCategory(t, NewGormCategoryRepository(db), "Tubos")
		repo := NewGormProductRepository(db)
		for _, code := range []string{"P1", "P2", "P3"} {
			createTestProduct(t, repo, code, category.ID, 10)
		}

		filter := shared.Filter{Page: 2, PageSize: 2, OrderBy: "code", OrderDir: "asc"}
		page, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "P3", page[0].Code)
	})
}
