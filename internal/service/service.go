// Package service holds the business rules of the shop on top of repo.GormRepo.
package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Skotchmaster/shopdb/internal/repo"
	"github.com/Skotchmaster/shopdb/pkg/cache"
	"github.com/Skotchmaster/shopdb/pkg/events"
	"github.com/Skotchmaster/shopdb/pkg/logging"
)

const (
	userStatsKey    = "stats:users"
	productStatsKey = "stats:products"
	orderStatsKey   = "stats:orders"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Deps is shared by every service.
type Deps struct {
	Repo     *repo.GormRepo
	Events   events.Publisher
	Cache    cache.Cache
	CacheTTL time.Duration
	Now      func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d *Deps) publish(ctx context.Context, topic, eventType, id string, data any) {
	if d.Events == nil {
		return
	}
	if err := d.Events.PublishEvent(ctx, topic, id, events.New(eventType, id, data)); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed",
			"topic", topic, "type", eventType, "entity_id", id, "error", err)
	}
}

func (d *Deps) invalidate(ctx context.Context, keys ...string) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.Delete(ctx, keys...); err != nil {
		logging.FromContext(ctx).Warn("cache_invalidate_failed", "keys", keys, "error", err)
	}
}

func (d *Deps) cache() cache.Cache {
	if d.Cache == nil {
		return cache.Noop{}
	}
	return d.Cache
}
