package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// View names used as cache invalidation scopes. A mutation names the
// listing views that must be recomputed on the next read.
const (
	ViewCategories = "categories"
	ViewProducts   = "products"
	ViewOrders     = "orders"
)

// RedisViewCache stores serialized listing pages under
// view:<name>:page:<n>:size:<s> keys and drops a whole view by prefix.
type RedisViewCache struct {
	client *redis.Client
}

func NewRedisViewCache(addr, password string, db int) (*RedisViewCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisViewCache{client: client}, nil
}

func viewKey(view string, page, pageSize int) string {
	return fmt.Sprintf("view:%s:page:%d:size:%d", view, page, pageSize)
}

// GetView returns the cached page or nil on a cache miss.
func (r *RedisViewCache) GetView(ctx context.Context, view string, page, pageSize int) ([]byte, error) {
	data, err := r.client.Get(ctx, viewKey(view, page, pageSize)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get view from cache: %w", err)
	}
	return data, nil
}

func (r *RedisViewCache) SetView(ctx context.Context, view string, page, pageSize int, data []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, viewKey(view, page, pageSize), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set view in cache: %w", err)
	}
	return nil
}

// Invalidate deletes every cached page of the named view.
func (r *RedisViewCache) Invalidate(ctx context.Context, view string) error {
	pattern := fmt.Sprintf("view:%s:*", view)

	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cached view key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached view keys: %w", err)
	}
	return nil
}

func (r *RedisViewCache) Close() error {
	return r.client.Close()
}
