package service

import (
	"context"

	"painelloja/internal/app/admin/entity"

	"github.com/google/uuid"
)

type CatalogServiceInterface interface {
	CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	ListCategories(ctx context.Context, page, pageSize int) (*entity.CategoryListResponse, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, req *entity.CreateProductRequest, image *entity.ImageUpload) (*entity.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.ProductWithCategory, error)
	ListProducts(ctx context.Context, page, pageSize int) (*entity.ProductListResponse, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *entity.UpdateProductRequest, image *entity.ImageUpload) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, req *entity.CreateOrderRequest) (*entity.OrderWithProducts, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*entity.OrderWithProducts, error)
	ListOrders(ctx context.Context, page, pageSize int) (*entity.OrderListResponse, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, req *entity.UpdateOrderRequest) (*entity.OrderWithProducts, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}
