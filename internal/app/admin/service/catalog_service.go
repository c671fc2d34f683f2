package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"painelloja/internal/app/admin/audit"
	"painelloja/internal/app/admin/entity"
	"painelloja/internal/app/admin/repository"
	"painelloja/internal/app/admin/storage"
	"painelloja/internal/app/admin/util"
	"painelloja/pkg/logger"
	"painelloja/pkg/metrics"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
	ErrCategoryHasProducts   = errors.New("cannot delete category with existing products")
	ErrProductNotFound       = errors.New("product not found")
	ErrInvalidImageType      = errors.New("uploaded file must be an image")
	ErrImageTooLarge         = errors.New("uploaded image exceeds the size limit")
)

// CatalogService holds the category and product business logic:
// validation-adjacent checks, image handling, cache invalidation and
// change notification around the repositories.
type CatalogService struct {
	categoryRepo  repository.CategoryRepository
	productRepo   repository.ProductRepository
	images        storage.ImageStore
	cache         util.ViewCache
	producer      util.MessagePublisher
	auditor       audit.Recorder
	maxImageBytes int64
}

func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	images storage.ImageStore,
	cache util.ViewCache,
	producer util.MessagePublisher,
	auditor audit.Recorder,
	maxImageBytes int64,
) *CatalogService {
	return &CatalogService{
		categoryRepo:  categoryRepo,
		productRepo:   productRepo,
		images:        images,
		cache:         cache,
		producer:      producer,
		auditor:       auditor,
		maxImageBytes: maxImageBytes,
	}
}

// === CATEGORIES ===

func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	category := &entity.Category{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return nil, ErrCategoryAlreadyExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	// Category names render inside the products listing too.
	invalidateViews(ctx, s.cache, util.ViewCategories, util.ViewProducts)
	publishChange(ctx, s.producer, "CATEGORY_CREATED", "category", category.ID, category.Name)
	recordAudit(ctx, s.auditor, "create", "category", category.ID)
	metrics.RecordMutation(serviceName, "category", "create")

	return category, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// ListCategories returns one page of categories, cache-aside through
// the view cache.
func (s *CatalogService) ListCategories(ctx context.Context, page, pageSize int) (*entity.CategoryListResponse, error) {
	if data, err := s.cache.GetView(ctx, util.ViewCategories, page, pageSize); err == nil && data != nil {
		var resp entity.CategoryListResponse
		if err := json.Unmarshal(data, &resp); err == nil {
			metrics.RecordCacheHit(serviceName, util.ViewCategories)
			return &resp, nil
		}
	}
	metrics.RecordCacheMiss(serviceName, util.ViewCategories)

	categories, total, err := s.categoryRepo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	resp := &entity.CategoryListResponse{
		Categories: categories,
		Meta:       pageMeta(page, pageSize, total),
	}
	s.cacheView(ctx, util.ViewCategories, page, pageSize, resp)

	return resp, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	category := &entity.Category{
		ID:   id,
		Name: strings.TrimSpace(req.Name),
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return nil, ErrCategoryNotFound
		case errors.Is(err, repository.ErrCategoryAlreadyExists):
			return nil, ErrCategoryAlreadyExists
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	invalidateViews(ctx, s.cache, util.ViewCategories, util.ViewProducts)
	publishChange(ctx, s.producer, "CATEGORY_UPDATED", "category", id, category.Name)
	recordAudit(ctx, s.auditor, "update", "category", id)
	metrics.RecordMutation(serviceName, "category", "update")

	return s.GetCategory(ctx, id)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return ErrCategoryNotFound
		case errors.Is(err, repository.ErrCategoryHasProducts):
			return ErrCategoryHasProducts
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	invalidateViews(ctx, s.cache, util.ViewCategories, util.ViewProducts)
	publishChange(ctx, s.producer, "CATEGORY_DELETED", "category", id, "")
	recordAudit(ctx, s.auditor, "delete", "category", id)
	metrics.RecordMutation(serviceName, "category", "delete")

	return nil
}

// === PRODUCTS ===

// CreateProduct creates a product, storing the uploaded image first so
// a storage failure aborts before anything is persisted.
func (s *CatalogService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest, image *entity.ImageUpload) (*entity.Product, error) {
	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}

	imagePath, err := s.storeImage(ctx, image)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		ImagePath:   imagePath,
		CreatedAt:   time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if imagePath != nil {
			s.deleteImage(ctx, *imagePath)
		}
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	invalidateViews(ctx, s.cache, util.ViewProducts)
	publishChange(ctx, s.producer, "PRODUCT_CREATED", "product", product.ID, product.Name)
	recordAudit(ctx, s.auditor, "create", "product", product.ID)
	metrics.RecordMutation(serviceName, "product", "create")

	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.ProductWithCategory, error) {
	product, err := s.productRepo.GetWithCategory(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, page, pageSize int) (*entity.ProductListResponse, error) {
	if data, err := s.cache.GetView(ctx, util.ViewProducts, page, pageSize); err == nil && data != nil {
		var resp entity.ProductListResponse
		if err := json.Unmarshal(data, &resp); err == nil {
			metrics.RecordCacheHit(serviceName, util.ViewProducts)
			return &resp, nil
		}
	}
	metrics.RecordCacheMiss(serviceName, util.ViewProducts)

	products, total, err := s.productRepo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	resp := &entity.ProductListResponse{
		Products: products,
		Meta:     pageMeta(page, pageSize, total),
	}
	s.cacheView(ctx, util.ViewProducts, page, pageSize, resp)

	return resp, nil
}

// UpdateProduct updates the product's fields and, when a new image is
// supplied, swaps the stored blob; the old blob is deleted
// best-effort after the new one is in place.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req *entity.UpdateProductRequest, image *entity.ImageUpload) (*entity.Product, error) {
	current, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}

	imagePath := current.ImagePath
	newImagePath, err := s.storeImage(ctx, image)
	if err != nil {
		return nil, err
	}
	if newImagePath != nil {
		imagePath = newImagePath
	}

	product := &entity.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		ImagePath:   imagePath,
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if newImagePath != nil {
			s.deleteImage(ctx, *newImagePath)
		}
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrCategoryNotFound):
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if newImagePath != nil && current.ImagePath != nil {
		s.deleteImage(ctx, *current.ImagePath)
	}

	// Orders render product display fields, so their cached pages are
	// stale now too.
	invalidateViews(ctx, s.cache, util.ViewProducts, util.ViewOrders)
	publishChange(ctx, s.producer, "PRODUCT_UPDATED", "product", id, product.Name)
	recordAudit(ctx, s.auditor, "update", "product", id)
	metrics.RecordMutation(serviceName, "product", "update")

	product.CreatedAt = current.CreatedAt
	return product, nil
}

// DeleteProduct removes the product and its order associations; the
// image blob is deleted best-effort afterwards and never blocks the
// entity deletion.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	current, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if current.ImagePath != nil {
		s.deleteImage(ctx, *current.ImagePath)
	}

	invalidateViews(ctx, s.cache, util.ViewProducts, util.ViewOrders)
	publishChange(ctx, s.producer, "PRODUCT_DELETED", "product", id, current.Name)
	recordAudit(ctx, s.auditor, "delete", "product", id)
	metrics.RecordMutation(serviceName, "product", "delete")

	return nil
}

// storeImage validates and persists an uploaded image, returning the
// opaque reference, or nil when no image was supplied.
func (s *CatalogService) storeImage(ctx context.Context, image *entity.ImageUpload) (*string, error) {
	if image == nil || len(image.Data) == 0 {
		return nil, nil
	}

	if !strings.HasPrefix(image.ContentType, "image/") {
		return nil, ErrInvalidImageType
	}
	if int64(len(image.Data)) > s.maxImageBytes {
		return nil, ErrImageTooLarge
	}

	ref, err := s.images.Save(ctx, image.Data, filepath.Ext(image.Filename))
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	return &ref, nil
}

func (s *CatalogService) deleteImage(ctx context.Context, ref string) {
	if err := s.images.Delete(ctx, ref); err != nil {
		logger.Warn().Err(err).Str("image_ref", ref).Msg("failed to delete image blob")
	}
}

func (s *CatalogService) cacheView(ctx context.Context, view string, page, pageSize int, resp interface{}) {
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Error().Err(err).Str("view", view).Msg("failed to marshal view for cache")
		return
	}
	if err := s.cache.SetView(ctx, view, page, pageSize, data, viewCacheTTL); err != nil {
		logger.Warn().Err(err).Str("view", view).Msg("failed to cache view")
	}
}
