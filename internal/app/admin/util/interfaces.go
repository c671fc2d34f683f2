package util

import (
	"context"
	"time"
)

// ViewCache caches rendered listing views and invalidates them by
// view name after mutations. Injected so the services stay testable
// without a running Redis.
type ViewCache interface {
	GetView(ctx context.Context, view string, page, pageSize int) ([]byte, error)
	SetView(ctx context.Context, view string, page, pageSize int, data []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, view string) error
	Close() error
}

// MessagePublisher publishes change events to a message broker.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
