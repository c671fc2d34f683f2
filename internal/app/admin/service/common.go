package service

import (
	"context"
	"encoding/json"
	"time"

	"painelloja/internal/app/admin/audit"
	"painelloja/internal/app/admin/entity"
	"painelloja/internal/app/admin/util"
	"painelloja/pkg/logger"

	"github.com/google/uuid"
)

const (
	serviceName  = "admin-service"
	viewCacheTTL = 5 * time.Minute
)

func pageMeta(page, pageSize int, total int64) entity.PageMeta {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return entity.PageMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// invalidateViews drops the named cached listing views. Failures are
// logged only: the write is already committed and stale cache entries
// expire on their own.
func invalidateViews(ctx context.Context, cache util.ViewCache, views ...string) {
	for _, view := range views {
		if err := cache.Invalidate(ctx, view); err != nil {
			logger.Warn().Err(err).Str("view", view).Msg("failed to invalidate view cache")
		}
	}
}

// publishChange emits a change event, best-effort.
func publishChange(ctx context.Context, producer util.MessagePublisher, eventType, entityType string, id uuid.UUID, name string) {
	event := entity.ChangeEvent{
		EventType:  eventType,
		EntityType: entityType,
		EntityID:   id,
		Name:       name,
		Timestamp:  time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal change event")
		return
	}

	if err := producer.PublishMessage(ctx, id.String(), data); err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish change event")
	}
}

// recordAudit writes a mutation audit entry, best-effort.
func recordAudit(ctx context.Context, recorder audit.Recorder, action, entityType string, id uuid.UUID) {
	entry := audit.Entry{
		Actor:      audit.ActorFromContext(ctx),
		Action:     action,
		EntityType: entityType,
		EntityID:   id.String(),
		Timestamp:  time.Now(),
	}

	if err := recorder.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("entity_type", entityType).Msg("failed to record audit entry")
	}
}
