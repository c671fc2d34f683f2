package mocks

import (
	"context"
	"time"

	"painelloja/internal/app/admin/audit"
	"painelloja/internal/app/admin/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context, limit, offset int) ([]entity.Category, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Category), args.Get(1).(int64), args.Error(2)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *entity.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *entity.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) GetWithCategory(ctx context.Context, id uuid.UUID) (*entity.ProductWithCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductWithCategory), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, limit, offset int) ([]entity.ProductWithCategory, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.ProductWithCategory), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Update(ctx context.Context, product *entity.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) GetImagePaths(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateWithProducts(ctx context.Context, order *entity.Order, productIDs []uuid.UUID) error {
	args := m.Called(ctx, order, productIDs)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateWithProducts(ctx context.Context, order *entity.Order, productIDs []uuid.UUID) error {
	args := m.Called(ctx, order, productIDs)
	return args.Error(0)
}

func (m *MockOrderRepository) GetWithProducts(ctx context.Context, id uuid.UUID) (*entity.OrderWithProducts, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OrderWithProducts), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, limit, offset int) ([]entity.OrderWithProducts, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.OrderWithProducts), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockViewCache doubles for the Redis view cache.
type MockViewCache struct {
	mock.Mock
}

func (m *MockViewCache) GetView(ctx context.Context, view string, page, pageSize int) ([]byte, error) {
	args := m.Called(ctx, view, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockViewCache) SetView(ctx context.Context, view string, page, pageSize int, data []byte, ttl time.Duration) error {
	args := m.Called(ctx, view, page, pageSize, data, ttl)
	return args.Error(0)
}

func (m *MockViewCache) Invalidate(ctx context.Context, view string) error {
	args := m.Called(ctx, view)
	return args.Error(0)
}

func (m *MockViewCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockMessagePublisher doubles for the Kafka producer and keeps the
// published payloads for assertions.
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	if args.Error(0) == nil {
		m.Messages = append(m.Messages, value)
	}
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, data []byte, extension string) (string, error) {
	args := m.Called(ctx, data, extension)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, entry audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRecorder) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
