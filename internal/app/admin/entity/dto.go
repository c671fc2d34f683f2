package entity

import "github.com/google/uuid"

type CreateCategoryRequest struct {
	Name string `json:"name" form:"name" validate:"required,min=2,max=100"`
}

type UpdateCategoryRequest struct {
	Name string `json:"name" form:"name" validate:"required,min=2,max=100"`
}

// CreateProductRequest is bound from a multipart form; the image file
// itself travels separately as an ImageUpload.
type CreateProductRequest struct {
	Name        string    `json:"name" form:"name" validate:"required,min=2,max=200"`
	Description string    `json:"description" form:"description" validate:"omitempty,max=2000"`
	Price       float64   `json:"price" form:"price" validate:"required,gt=0"`
	CategoryID  uuid.UUID `json:"category_id" form:"category_id" validate:"required"`
}

type UpdateProductRequest struct {
	Name        string    `json:"name" form:"name" validate:"required,min=2,max=200"`
	Description string    `json:"description" form:"description" validate:"omitempty,max=2000"`
	Price       float64   `json:"price" form:"price" validate:"required,gt=0"`
	CategoryID  uuid.UUID `json:"category_id" form:"category_id" validate:"required"`
}

// ImageUpload carries the raw bytes of an uploaded product image.
type ImageUpload struct {
	Data        []byte
	ContentType string
	Filename    string
}

// CreateOrderRequest carries the order's scalar fields plus the
// complete desired product set (never a delta).
type CreateOrderRequest struct {
	CustomerName string      `json:"customer_name" validate:"required,min=2,max=200"`
	Address      string      `json:"address" validate:"required,min=5,max=500"`
	Phone        string      `json:"phone" validate:"required,min=8,max=20"`
	ProductIDs   []uuid.UUID `json:"product_ids" validate:"required,min=1"`
}

type UpdateOrderRequest struct {
	CustomerName string      `json:"customer_name" validate:"required,min=2,max=200"`
	Address      string      `json:"address" validate:"required,min=5,max=500"`
	Phone        string      `json:"phone" validate:"required,min=8,max=20"`
	ProductIDs   []uuid.UUID `json:"product_ids" validate:"required,min=1"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageMeta describes pagination of a listing. Page is 1-based;
// TotalPages = ceil(Total / PageSize).
type PageMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
	Meta       PageMeta   `json:"meta"`
}

type ProductListResponse struct {
	Products []ProductWithCategory `json:"products"`
	Meta     PageMeta              `json:"meta"`
}

type OrderListResponse struct {
	Orders []OrderWithProducts `json:"orders"`
	Meta   PageMeta            `json:"meta"`
}
