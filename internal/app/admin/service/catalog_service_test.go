package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"painelloja/internal/app/admin/entity"
	"painelloja/internal/app/admin/repository"
	"painelloja/internal/app/admin/repository/mocks"
	"painelloja/internal/app/admin/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testMaxImageBytes = 5 * 1024 * 1024

type catalogFixture struct {
	categoryRepo *mocks.MockCategoryRepository
	productRepo  *mocks.MockProductRepository
	images       *mocks.MockImageStore
	cache        *mocks.MockViewCache
	producer     *mocks.MockMessagePublisher
	auditor      *mocks.MockAuditRecorder
	service      *CatalogService
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		categoryRepo: new(mocks.MockCategoryRepository),
		productRepo:  new(mocks.MockProductRepository),
		images:       new(mocks.MockImageStore),
		cache:        new(mocks.MockViewCache),
		producer:     new(mocks.MockMessagePublisher),
		auditor:      new(mocks.MockAuditRecorder),
	}
	f.service = NewCatalogService(
		f.categoryRepo,
		f.productRepo,
		f.images,
		f.cache,
		f.producer,
		f.auditor,
		testMaxImageBytes,
	)
	return f
}

// expectSideEffects covers the best-effort calls every successful
// mutation makes.
func (f *catalogFixture) expectSideEffects() {
	f.cache.On("Invalidate", mock.Anything, mock.AnythingOfType("string")).Return(nil)
	f.producer.On("PublishMessage", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)
	f.auditor.On("Record", mock.Anything, mock.AnythingOfType("audit.Entry")).Return(nil)
}

func newTestCategory() *entity.Category {
	return &entity.Category{
		ID:        uuid.New(),
		Name:      "Bebidas",
		CreatedAt: time.Now(),
	}
}

func newTestProduct(categoryID uuid.UUID) *entity.Product {
	return &entity.Product{
		ID:          uuid.New(),
		Name:        "Suco de Laranja",
		Description: "Garrafa de 1L",
		Price:       12.5,
		CategoryID:  categoryID,
		CreatedAt:   time.Now(),
	}
}

// ==================== Category Tests ====================

func TestCatalogService_CreateCategory_Success(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()

	f.categoryRepo.On("Create", ctx, mock.AnythingOfType("*entity.Category")).Return(nil)
	f.expectSideEffects()

	category, err := f.service.CreateCategory(ctx, &entity.CreateCategoryRequest{Name: "  Bebidas  "})

	require.NoError(t, err)
	assert.Equal(t, "Bebidas", category.Name)
	assert.NotEqual(t, uuid.Nil, category.ID)

	f.categoryRepo.AssertExpectations(t)
	// Category names render in the product listing too, so both views
	// must be dropped.
	f.cache.AssertCalled(t, "Invalidate", mock.Anything, util.ViewCategories)
	f.cache.AssertCalled(t, "Invalidate", mock.Anything, util.ViewProducts)
}

func TestCatalogService_CreateCategory_DuplicateName(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()

	f.categoryRepo.On("Create", ctx, mock.AnythingOfType("*entity.Category")).
		Return(repository.ErrCategoryAlreadyExists)

	category, err := f.service.CreateCategory(ctx, &entity.CreateCategoryRequest{Name: "Bebidas"})

	assert.Nil(t, category)
	assert.ErrorIs(t, err, ErrCategoryAlreadyExists)

	// No events and no invalidation when nothing was written.
	f.producer.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestCatalogService_CreateCategory_SideEffectFailuresIgnored(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()

	f.categoryRepo.On("Create", ctx, mock.AnythingOfType("*entity.Category")).Return(nil)
	f.cache.On("Invalidate", mock.Anything, mock.AnythingOfType("string")).Return(errors.New("redis down"))
	f.producer.On("PublishMessage", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(errors.New("kafka down"))
	f.auditor.On("Record", mock.Anything, mock.AnythingOfType("audit.Entry")).Return(errors.New("mongo down"))

	category, err := f.service.CreateCategory(ctx, &entity.CreateCategoryRequest{Name: "Bebidas"})

	require.NoError(t, err)
	assert.NotNil(t, category)
}

func TestCatalogService_GetCategory_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	id := uuid.New()

	f.categoryRepo.On("GetByID", ctx, id).Return(nil, repository.ErrCategoryNotFound)

	category, err := f.service.GetCategory(ctx, id)

	assert.Nil(t, category)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCatalogService_ListCategories_CacheMiss(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()

	f.cache.On("GetView", ctx, util.ViewCategories, 1, 20).Return(nil, nil)
	f.categoryRepo.On("List", ctx, 20, 0).
		Return([]entity.Category{*newTestCategory()}, int64(41), nil)
	f.cache.On("SetView", ctx, util.ViewCategories, 1, 20, mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.ListCategories(ctx, 1, 20)

	require.NoError(t, err)
	assert.Len(t, resp.Categories, 1)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	f.cache.AssertExpectations(t)
}

func TestCatalogService_ListCategories_CacheHit(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()

	cached := []byte(`{"categories":[{"name":"Bebidas"}],"meta":{"page":1,"page_size":20,"total":1,"total_pages":1}}`)
	f.cache.On("GetView", ctx, util.ViewCategories, 1, 20).Return(cached, nil)

	resp, err := f.service.ListCategories(ctx, 1, 20)

	require.NoError(t, err)
	assert.Equal(t, "Bebidas", resp.Categories[0].Name)

	f.categoryRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_DeleteCategory_HasProducts(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	id := uuid.New()

	f.categoryRepo.On("Delete", ctx, id).Return(repository.ErrCategoryHasProducts)

	err := f.service.DeleteCategory(ctx, id)

	assert.ErrorIs(t, err, ErrCategoryHasProducts)
	f.producer.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}

// ==================== Product Tests ====================

func TestCatalogService_CreateProduct_WithImage(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	category := newTestCategory()

	f.categoryRepo.On("GetByID", ctx, category.ID).Return(category, nil)
	f.images.On("Save", ctx, mock.Anything, ".png").Return("/uploads/produto-1.png", nil)
	f.productRepo.On("Create", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)
	f.expectSideEffects()

	req := &entity.CreateProductRequest{
		Name:       "Suco de Laranja",
		Price:      12.5,
		CategoryID: category.ID,
	}
	image := &entity.ImageUpload{
		Data:        []byte("png-bytes"),
		ContentType: "image/png",
		Filename:    "foto.png",
	}

	product, err := f.service.CreateProduct(ctx, req, image)

	require.NoError(t, err)
	require.NotNil(t, product.ImagePath)
	assert.Equal(t, "/uploads/produto-1.png", *product.ImagePath)

	f.images.AssertExpectations(t)
	f.productRepo.AssertExpectations(t)
}

func TestCatalogService_CreateProduct_WithoutImage(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	category := newTestCategory()

	f.categoryRepo.On("GetByID", ctx, category.ID).Return(category, nil)
	f.productRepo.On("Create", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)
	f.expectSideEffects()

	req := &entity.CreateProductRequest{
		Name:       "Suco de Laranja",
		Price:      12.5,
		CategoryID: category.ID,
	}

	product, err := f.service.CreateProduct(ctx, req, nil)

	require.NoError(t, err)
	assert.Nil(t, product.ImagePath)
	f.images.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_CreateProduct_InvalidImageType(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	category := newTestCategory()

	f.categoryRepo.On("GetByID", ctx, category.ID).Return(category, nil)

	req := &entity.CreateProductRequest{
		Name:       "Suco de Laranja",
		Price:      12.5,
		CategoryID: category.ID,
	}
	image := &entity.ImageUpload{
		Data:        []byte("%PDF-1.7"),
		ContentType: "application/pdf",
		Filename:    "nota.pdf",
	}

	product, err := f.service.CreateProduct(ctx, req, image)

	assert.Nil(t, product)
	assert.ErrorIs(t, err, ErrInvalidImageType)
	f.productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCatalogService_CreateProduct_ImageTooLarge(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	category := newTestCategory()

	f.categoryRepo.On("GetByID", ctx, category.ID).Return(category, nil)

	req := &entity.CreateProductRequest{
		Name:       "Suco de Laranja",
		Price:      12.5,
		CategoryID: category.ID,
	}
	image := &entity.ImageUpload{
		Data:        make([]byte, testMaxImageBytes+1),
		ContentType: "image/jpeg",
		Filename:    "foto.jpg",
	}

	product, err := f.service.CreateProduct(ctx, req, image)

	assert.Nil(t, product)
	assert.ErrorIs(t, err, ErrImageTooLarge)
	f.images.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_CreateProduct_ImageExactlyAtLimit(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	category := newTestCategory()

	f.categoryRepo.On("GetByID", ctx, category.ID).Return(category, nil)
	f.images.On("Save", ctx, mock.Anything, ".jpg").Return("/uploads/produto-2.jpg", nil)
	f.productRepo.On("Create", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)
	f.expectSideEffects()

	req := &entity.CreateProductRequest{
		Name:       "Suco de Laranja",
		Price:      12.5,
		CategoryID: category.ID,
	}
	image := &entity.ImageUpload{
		Data:        make([]byte, testMaxImageBytes),
		ContentType: "image/jpeg",
		Filename:    "foto.jpg",
	}

	product, err := f.service.CreateProduct(ctx, req, image)

	require.NoError(t, err)
	assert.NotNil(t, product.ImagePath)
}

func TestCatalogService_CreateProduct_UnknownCategory(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	id := uuid.New()

	f.categoryRepo.On("GetByID", ctx, id).Return(nil, repository.ErrCategoryNotFound)

	req := &entity.CreateProductRequest{
		Name:       "Suco de Laranja",
		Price:      12.5,
		CategoryID: id,
	}

	product, err := f.service.CreateProduct(ctx, req, nil)

	assert.Nil(t, product)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCatalogService_CreateProduct_RepoFailureCleansUpImage(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	category := newTestCategory()

	f.categoryRepo.On("GetByID", ctx, category.ID).Return(category, nil)
	f.images.On("Save", ctx, mock.Anything, ".png").Return("/uploads/produto-3.png", nil)
	f.productRepo.On("Create", ctx, mock.AnythingOfType("*entity.Product")).Return(errors.New("db error"))
	f.images.On("Delete", ctx, "/uploads/produto-3.png").Return(nil)

	req := &entity.CreateProductRequest{
		Name:       "Suco de Laranja",
		Price:      12.5,
		CategoryID: category.ID,
	}
	image := &entity.ImageUpload{
		Data:        []byte("png-bytes"),
		ContentType: "image/png",
		Filename:    "foto.png",
	}

	product, err := f.service.CreateProduct(ctx, req, image)

	assert.Nil(t, product)
	assert.Error(t, err)
	f.images.AssertCalled(t, "Delete", ctx, "/uploads/produto-3.png")
}

func TestCatalogService_UpdateProduct_SwapsImage(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	category := newTestCategory()
	current := newTestProduct(category.ID)
	oldPath := "/uploads/produto-old.png"
	current.ImagePath = &oldPath

	f.productRepo.On("GetByID", ctx, current.ID).Return(current, nil)
	f.categoryRepo.On("GetByID", ctx, category.ID).Return(category, nil)
	f.images.On("Save", ctx, mock.Anything, ".png").Return("/uploads/produto-new.png", nil)
	f.productRepo.On("Update", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)
	f.images.On("Delete", ctx, oldPath).Return(nil)
	f.expectSideEffects()

	req := &entity.UpdateProductRequest{
		Name:       "Suco de Uva",
		Price:      14.0,
		CategoryID: category.ID,
	}
	image := &entity.ImageUpload{
		Data:        []byte("new-png-bytes"),
		ContentType: "image/png",
		Filename:    "nova.png",
	}

	product, err := f.service.UpdateProduct(ctx, current.ID, req, image)

	require.NoError(t, err)
	require.NotNil(t, product.ImagePath)
	assert.Equal(t, "/uploads/produto-new.png", *product.ImagePath)
	// The old blob goes away only after the row points at the new one.
	f.images.AssertCalled(t, "Delete", ctx, oldPath)
}

func TestCatalogService_UpdateProduct_KeepsImageWhenNoneUploaded(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	category := newTestCategory()
	current := newTestProduct(category.ID)
	oldPath := "/uploads/produto-old.png"
	current.ImagePath = &oldPath

	f.productRepo.On("GetByID", ctx, current.ID).Return(current, nil)
	f.categoryRepo.On("GetByID", ctx, category.ID).Return(category, nil)
	f.productRepo.On("Update", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)
	f.expectSideEffects()

	req := &entity.UpdateProductRequest{
		Name:       "Suco de Uva",
		Price:      14.0,
		CategoryID: category.ID,
	}

	product, err := f.service.UpdateProduct(ctx, current.ID, req, nil)

	require.NoError(t, err)
	require.NotNil(t, product.ImagePath)
	assert.Equal(t, oldPath, *product.ImagePath)
	f.images.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCatalogService_DeleteProduct_RemovesImage(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	category := newTestCategory()
	current := newTestProduct(category.ID)
	path := "/uploads/produto-del.png"
	current.ImagePath = &path

	f.productRepo.On("GetByID", ctx, current.ID).Return(current, nil)
	f.productRepo.On("Delete", ctx, current.ID).Return(nil)
	f.images.On("Delete", ctx, path).Return(nil)
	f.expectSideEffects()

	err := f.service.DeleteProduct(ctx, current.ID)

	require.NoError(t, err)
	f.images.AssertCalled(t, "Delete", ctx, path)
	// Order pages render product fields, so they are stale now too.
	f.cache.AssertCalled(t, "Invalidate", mock.Anything, util.ViewProducts)
	f.cache.AssertCalled(t, "Invalidate", mock.Anything, util.ViewOrders)
}

func TestCatalogService_DeleteProduct_BlobFailureDoesNotBlockDeletion(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	category := newTestCategory()
	current := newTestProduct(category.ID)
	path := "/uploads/produto-stuck.png"
	current.ImagePath = &path

	f.productRepo.On("GetByID", ctx, current.ID).Return(current, nil)
	f.productRepo.On("Delete", ctx, current.ID).Return(nil)
	f.images.On("Delete", ctx, path).Return(errors.New("disk error"))
	f.expectSideEffects()

	err := f.service.DeleteProduct(ctx, current.ID)

	// The row is gone; a stuck blob is the cleanup worker's problem.
	require.NoError(t, err)
}

func TestCatalogService_DeleteProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	id := uuid.New()

	f.productRepo.On("GetByID", ctx, id).Return(nil, repository.ErrProductNotFound)

	err := f.service.DeleteProduct(ctx, id)

	assert.ErrorIs(t, err, ErrProductNotFound)
}
