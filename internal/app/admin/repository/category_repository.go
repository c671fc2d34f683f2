package repository

import (
	"context"
	"errors"
	"fmt"

	"painelloja/internal/app/admin/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository backed by
// PostgreSQL via GORM.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a new category. Name uniqueness is enforced by the
// UNIQUE index, not by a read-then-write check, so concurrent creates
// of the same name cannot both succeed.
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var category entity.Category
	result := r.db.WithContext(ctx).First(&category, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category by id: %w", result.Error)
	}
	return &category, nil
}

// List returns one page of categories sorted by name plus the total
// count for pagination metadata.
func (r *categoryRepository) List(ctx context.Context, limit, offset int) ([]entity.Category, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Category{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	var categories []entity.Category
	result := r.db.WithContext(ctx).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&categories)
	if result.Error != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", result.Error)
	}

	return categories, total, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).Model(&entity.Category{}).
		Where("id = ?", category.ID).
		Update("name", category.Name)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category. A category still referenced by products
// is rejected; the explicit count keeps the error specific, and the
// foreign key constraint covers the race between check and delete.
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var productCount int64
	if err := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("category_id = ?", id).
		Count(&productCount).Error; err != nil {
		return fmt.Errorf("failed to check products in category: %w", err)
	}
	if productCount > 0 {
		return ErrCategoryHasProducts
	}

	result := r.db.WithContext(ctx).Delete(&entity.Category{}, "id = ?", id)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return ErrCategoryHasProducts
		}
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
