package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/catalog"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCategoryService() (*CategoryService, *MockCategoryRepository, *MockProductRepository, *recordingPublisher) {
	categoryRepo := new(MockCategoryRepository)
	productRepo := new(MockProductRepository)
	publisher := &recordingPublisher{}
	svc := NewCategoryService(categoryRepo, productRepo, nil)
	svc.SetEventPublisher(publisher)
	return svc, categoryRepo, productRepo, publisher
}

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates category", func(t *testing.T) {
		svc, categoryRepo, _, publisher := newTestCategoryService()
		categoryRepo.On("ExistsByName", ctx, "Planchas").Return(false, nil)
		categoryRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil)

		resp, err := svc.Create(ctx, CreateCategoryRequest{Name: "Planchas", Description: "Planchas de acero"})
		require.NoError(t, err)
		assert.Equal(t, "Planchas", resp.Name)
		assert.True(t, resp.Active)
		assert.Equal(t, []string{catalog.EventTypeCategoryCreated}, publisher.types())
	})

	t.Run("creates inactive category", func(t *testing.T) {
		svc, categoryRepo, _, _ := newTestCategoryService()
		categoryRepo.On("ExistsByName", ctx, "Tubos").Return(false, nil)
		categoryRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil)

		inactive := false
		resp, err := svc.Create(ctx, CreateCategoryRequest{Name: "Tubos", Active: &inactive})
		require.NoError(t, err)
		assert.False(t, resp.Active)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		svc, categoryRepo, _, _ := newTestCategoryService()
		categoryRepo.On("ExistsByName", ctx, "Planchas").Return(true, nil)

		_, err := svc.Create(ctx, CreateCategoryRequest{Name: "Planchas"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		categoryRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCategoryService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("renames category", func(t *testing.T) {
		svc, categoryRepo, _, _ := newTestCategoryService()
		category, _ := catalog.NewCategory("Planchas", "")
		categoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
		categoryRepo.On("FindByName", ctx, "Planchas Inox").Return(nil, shared.ErrNotFound)
		categoryRepo.On("Save", ctx, category).Return(nil)

		name := "Planchas Inox"
		resp, err := svc.Update(ctx, category.ID, UpdateCategoryRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Planchas Inox", resp.Name)
	})

	t.Run("rejects name used by another category", func(t *testing.T) {
		svc, categoryRepo, _, _ := newTestCategoryService()
		category, _ := catalog.NewCategory("Planchas", "")
		other, _ := catalog.NewCategory("Tubos", "")
		categoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
		categoryRepo.On("FindByName", ctx, "Tubos").Return(other, nil)

		name := "Tubos"
		_, err := svc.Update(ctx, category.ID, UpdateCategoryRequest{Name: &name})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("preview reports dependent product count", func(t *testing.T) {
		svc, categoryRepo, productRepo, _ := newTestCategoryService()
		category, _ := catalog.NewCategory("Perfiles", "")
		categoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
		productRepo.On("CountByCategory", ctx, category.ID).Return(int64(3), nil)

		preview, err := svc.DeletePreview(ctx, category.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), preview.ProductCount)
		assert.False(t, preview.Deleted)
		categoryRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("refuses to delete category with products without force", func(t *testing.T) {
		svc, categoryRepo, productRepo, _ := newTestCategoryService()
		category, _ := catalog.NewCategory("Perfiles", "")
		categoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
		productRepo.On("CountByCategory", ctx, category.ID).Return(int64(2), nil)

		result, err := svc.Delete(ctx, category.ID, false)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CATEGORY_HAS_PRODUCTS", domainErr.Code)
		assert.Contains(t, domainErr.Message, "2 products")
		require.NotNil(t, result)
		assert.Equal(t, int64(2), result.ProductCount)
		categoryRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("force deletes category with products", func(t *testing.T) {
		svc, categoryRepo, productRepo, publisher := newTestCategoryService()
		category, _ := catalog.NewCategory("Perfiles", "")
		category.ClearDomainEvents()
		categoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
		productRepo.On("CountByCategory", ctx, category.ID).Return(int64(2), nil)
		categoryRepo.On("Delete", ctx, category.ID).Return(nil)

		result, err := svc.Delete(ctx, category.ID, true)
		require.NoError(t, err)
		assert.True(t, result.Deleted)
		assert.Equal(t, int64(2), result.ProductCount)
		assert.Equal(t, []string{catalog.EventTypeCategoryDeleted}, publisher.types())
	})

	t.Run("deletes empty category", func(t *testing.T) {
		svc, categoryRepo, productRepo, _ := newTestCategoryService()
		category, _ := catalog.NewCategory("Vacia", "")
		categoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
		productRepo.On("CountByCategory", ctx, category.ID).Return(int64(0), nil)
		categoryRepo.On("Delete", ctx, category.ID).Return(nil)

		result, err := svc.Delete(ctx, category.ID, false)
		require.NoError(t, err)
		assert.True(t, result.Deleted)
	})

	t.Run("returns not found", func(t *testing.T) {
		svc, categoryRepo, _, _ := newTestCategoryService()
		id := uuid.New()
		categoryRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Delete(ctx, id, true)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCategoryService_List(t *testing.T) {
	ctx := context.Background()
	svc, categoryRepo, _, _ := newTestCategoryService()

	a, _ := catalog.NewCategory("Barras", "")
	b, _ := catalog.NewCategory("Tubos", "")
	active := true
	categoryRepo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["active"] == true && f.Page == 1 && f.PageSize == 20 && f.OrderBy == "name"
	})).Return([]catalog.Category{*a, *b}, nil)
	categoryRepo.On("Count", ctx, mock.Anything).Return(int64(2), nil)

	items, total, err := svc.List(ctx, CategoryListFilter{Active: &active})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, "Barras", items[0].Name)
}
