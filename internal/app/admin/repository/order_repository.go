package repository

import (
	"context"
	"errors"
	"fmt"

	"painelloja/internal/app/admin/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateWithProducts inserts the order row and one association row per
// product id, all inside one transaction. If any product id does not
// exist the foreign key fires, the transaction rolls back and no order
// row remains.
func (r *orderRepository) CreateWithProducts(ctx context.Context, order *entity.Order, productIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Products").Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := insertAssociations(tx, order.ID, productIDs); err != nil {
			return err
		}
		return nil
	})
}

// UpdateWithProducts replaces the order's association set wholesale:
// delete every existing row, update the scalar fields, insert the new
// set. One transaction, so a concurrent reader sees either the old
// full set or the new full set, never a partial one.
func (r *orderRepository) UpdateWithProducts(ctx context.Context, order *entity.Order, productIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&entity.OrderProduct{}).Error; err != nil {
			return fmt.Errorf("failed to delete order associations: %w", err)
		}

		result := tx.Model(&entity.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"customer_name": order.CustomerName,
				"address":       order.Address,
				"phone":         order.Phone,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrOrderNotFound
		}

		if err := insertAssociations(tx, order.ID, productIDs); err != nil {
			return err
		}
		return nil
	})
}

// insertAssociations writes one join row per distinct product id.
// Duplicate ids in the input are deduplicated and ON CONFLICT DO
// NOTHING backs that up at the database level.
func insertAssociations(tx *gorm.DB, orderID uuid.UUID, productIDs []uuid.UUID) error {
	ids := dedupIDs(productIDs)
	if len(ids) == 0 {
		return nil
	}

	rows := make([]entity.OrderProduct, 0, len(ids))
	for _, pid := range ids {
		rows = append(rows, entity.OrderProduct{OrderID: orderID, ProductID: pid})
	}

	err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to create order associations: %w", err)
	}
	return nil
}

func dedupIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (r *orderRepository) GetWithProducts(ctx context.Context, id uuid.UUID) (*entity.OrderWithProducts, error) {
	var order entity.Order
	result := r.db.WithContext(ctx).Preload("Products").First(&order, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", result.Error)
	}

	return &entity.OrderWithProducts{
		Order:    order,
		Products: order.Products,
	}, nil
}

// List returns one page of orders, newest first, with their product
// sets resolved, plus the total count.
func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]entity.OrderWithProducts, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Order{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []entity.Order
	result := r.db.WithContext(ctx).
		Preload("Products").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders)
	if result.Error != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", result.Error)
	}

	withProducts := make([]entity.OrderWithProducts, 0, len(orders))
	for _, o := range orders {
		withProducts = append(withProducts, entity.OrderWithProducts{
			Order:    o,
			Products: o.Products,
		})
	}

	return withProducts, total, nil
}

// Delete removes the order's association rows and then the order row
// as one atomic unit, so no orphaned join rows can survive.
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&entity.OrderProduct{}).Error; err != nil {
			return fmt.Errorf("failed to delete order associations: %w", err)
		}

		result := tx.Delete(&entity.Order{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrOrderNotFound
		}
		return nil
	})
}
