package repository

import (
	"context"
	"errors"
	"fmt"

	"painelloja/internal/app/admin/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product. A dangling category reference is
// caught by the foreign key constraint.
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by id: %w", result.Error)
	}
	return &product, nil
}

func (r *productRepository) GetWithCategory(ctx context.Context, id uuid.UUID) (*entity.ProductWithCategory, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product with category: %w", result.Error)
	}

	pwc := &entity.ProductWithCategory{Product: product}
	if product.Category != nil {
		pwc.Category = *product.Category
	}
	return pwc, nil
}

// List returns one page of products sorted by name, each joined with
// its category, plus the total count.
func (r *productRepository) List(ctx context.Context, limit, offset int) ([]entity.ProductWithCategory, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Product{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []entity.Product
	result := r.db.WithContext(ctx).
		Preload("Category").
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&products)
	if result.Error != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", result.Error)
	}

	withCategories := make([]entity.ProductWithCategory, 0, len(products))
	for _, p := range products {
		pwc := entity.ProductWithCategory{Product: p}
		if p.Category != nil {
			pwc.Category = *p.Category
		}
		withCategories = append(withCategories, pwc)
	}

	return withCategories, total, nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"category_id": product.CategoryID,
			"image_path":  product.ImagePath,
		})
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Delete removes a product together with its order associations, as
// one atomic unit, so no association row ever points at a dead product.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&entity.OrderProduct{}).Error; err != nil {
			return fmt.Errorf("failed to delete product associations: %w", err)
		}

		result := tx.Delete(&entity.Product{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete product: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})
}

// GetImagePaths returns every image reference currently held by a
// product. The cleanup worker diffs this set against the upload dir.
func (r *productRepository) GetImagePaths(ctx context.Context) ([]string, error) {
	var paths []string
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("image_path IS NOT NULL").
		Pluck("image_path", &paths)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get image paths: %w", result.Error)
	}
	return paths, nil
}
