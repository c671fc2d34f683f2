package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"painelloja/internal/app/admin/audit"
	"painelloja/internal/app/admin/entity"
	"painelloja/internal/app/admin/repository"
	"painelloja/internal/app/admin/util"
	"painelloja/pkg/logger"
	"painelloja/pkg/metrics"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderProductUnknown = errors.New("order references a product that does not exist")
)

// OrderService owns the order lifecycle. An order and its product
// association set are always written together through the repository's
// transactional reconciliation, so no path here can leave a
// half-created order or a partially replaced set.
type OrderService struct {
	orderRepo repository.OrderRepository
	cache     util.ViewCache
	producer  util.MessagePublisher
	auditor   audit.Recorder
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cache util.ViewCache,
	producer util.MessagePublisher,
	auditor audit.Recorder,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		cache:     cache,
		producer:  producer,
		auditor:   auditor,
	}
}

// CreateOrder inserts the order and its association rows atomically.
// When a product id does not exist the whole create rolls back and no
// order row remains.
func (s *OrderService) CreateOrder(ctx context.Context, req *entity.CreateOrderRequest) (*entity.OrderWithProducts, error) {
	order := &entity.Order{
		ID:           uuid.New(),
		CustomerName: req.CustomerName,
		Address:      req.Address,
		Phone:        req.Phone,
		CreatedAt:    time.Now(),
	}

	if err := s.orderRepo.CreateWithProducts(ctx, order, req.ProductIDs); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrOrderProductUnknown
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	created, err := s.orderRepo.GetWithProducts(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created order: %w", err)
	}

	invalidateViews(ctx, s.cache, util.ViewOrders)
	publishChange(ctx, s.producer, "ORDER_CREATED", "order", order.ID, order.CustomerName)
	recordAudit(ctx, s.auditor, "create", "order", order.ID)
	metrics.RecordMutation(serviceName, "order", "create")

	return created, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.OrderWithProducts, error) {
	order, err := s.orderRepo.GetWithProducts(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// ListOrders returns one page of orders, newest first, with resolved
// products, cache-aside through the view cache.
func (s *OrderService) ListOrders(ctx context.Context, page, pageSize int) (*entity.OrderListResponse, error) {
	if data, err := s.cache.GetView(ctx, util.ViewOrders, page, pageSize); err == nil && data != nil {
		var resp entity.OrderListResponse
		if err := json.Unmarshal(data, &resp); err == nil {
			metrics.RecordCacheHit(serviceName, util.ViewOrders)
			return &resp, nil
		}
	}
	metrics.RecordCacheMiss(serviceName, util.ViewOrders)

	orders, total, err := s.orderRepo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	resp := &entity.OrderListResponse{
		Orders: orders,
		Meta:   pageMeta(page, pageSize, total),
	}

	if data, err := json.Marshal(resp); err == nil {
		if err := s.cache.SetView(ctx, util.ViewOrders, page, pageSize, data, viewCacheTTL); err != nil {
			logger.Warn().Err(err).Str("view", util.ViewOrders).Msg("failed to cache view")
		}
	}

	return resp, nil
}

// UpdateOrder replaces the order's scalar fields and its entire
// association set in one transaction. The request always carries the
// complete desired product set, never a delta.
func (s *OrderService) UpdateOrder(ctx context.Context, id uuid.UUID, req *entity.UpdateOrderRequest) (*entity.OrderWithProducts, error) {
	order := &entity.Order{
		ID:           id,
		CustomerName: req.CustomerName,
		Address:      req.Address,
		Phone:        req.Phone,
	}

	if err := s.orderRepo.UpdateWithProducts(ctx, order, req.ProductIDs); err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return nil, ErrOrderNotFound
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, ErrOrderProductUnknown
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	updated, err := s.orderRepo.GetWithProducts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load updated order: %w", err)
	}

	invalidateViews(ctx, s.cache, util.ViewOrders)
	publishChange(ctx, s.producer, "ORDER_UPDATED", "order", id, order.CustomerName)
	recordAudit(ctx, s.auditor, "update", "order", id)
	metrics.RecordMutation(serviceName, "order", "update")

	return updated, nil
}

// DeleteOrder removes the order together with its association rows.
func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to delete order: %w", err)
	}

	invalidateViews(ctx, s.cache, util.ViewOrders)
	publishChange(ctx, s.producer, "ORDER_DELETED", "order", id, "")
	recordAudit(ctx, s.auditor, "delete", "order", id)
	metrics.RecordMutation(serviceName, "order", "delete")

	return nil
}
