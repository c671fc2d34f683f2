package repository

import (
	"context"
	"errors"

	"painelloja/internal/app/admin/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
	ErrCategoryHasProducts   = errors.New("cannot delete category with existing products")
	ErrProductNotFound       = errors.New("product not found")
	ErrOrderNotFound         = errors.New("order not found")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	List(ctx context.Context, limit, offset int) ([]entity.Category, int64, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetWithCategory(ctx context.Context, id uuid.UUID) (*entity.ProductWithCategory, error)
	List(ctx context.Context, limit, offset int) ([]entity.ProductWithCategory, int64, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetImagePaths(ctx context.Context) ([]string, error)
}

// OrderRepository owns the association reconciliation: an order and
// its product set are always written together, inside one transaction.
type OrderRepository interface {
	CreateWithProducts(ctx context.Context, order *entity.Order, productIDs []uuid.UUID) error
	UpdateWithProducts(ctx context.Context, order *entity.Order, productIDs []uuid.UUID) error
	GetWithProducts(ctx context.Context, id uuid.UUID) (*entity.OrderWithProducts, error)
	List(ctx context.Context, limit, offset int) ([]entity.OrderWithProducts, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// isPgError reports whether err carries the given PostgreSQL error
// code. 23505 is unique_violation, 23503 is foreign_key_violation.
func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isUniqueViolation(err error) bool {
	return isPgError(err, "23505")
}

func isForeignKeyViolation(err error) bool {
	return isPgError(err, "23503")
}
