package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/studio-desk/lib/events"
	"github.com/studio-desk/lib/querycache"
	"github.com/studio-desk/monitoring"
)

// ChangeRecorder runs after every committed write: it invalidates the
// dependent cached queries and publishes the change.
type ChangeRecorder struct {
	cache     *querycache.Cache
	publisher events.Publisher
	logger    *zap.Logger
}

func NewChangeRecorder(cache *querycache.Cache, publisher events.Publisher, logger *zap.Logger) *ChangeRecorder {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ChangeRecorder{cache: cache, publisher: publisher, logger: logger}
}

// Record must be called once per write, after the write succeeded.
func (r *ChangeRecorder) Record(ctx context.Context, actorID string, change querycache.Change) {
	removed := r.cache.Invalidate(ctx, change)
	monitoring.MutationsTotal.WithLabelValues(string(change.Entity), string(change.Action)).Inc()

	parents := make(map[string]string, len(change.Parents))
	for entity, id := range change.Parents {
		parents[string(entity)] = id
	}
	event := events.Event{
		Type:    "entity",
		Entity:  string(change.Entity),
		Action:  string(change.Action),
		ID:      change.ID,
		UserID:  actorID,
		Parents: parents,
	}
	routingKey := events.RoutingKey("entity", string(change.Entity), string(change.Action))
	if err := r.publisher.Publish(ctx, routingKey, event); err != nil {
		r.logger.Warn("Failed to publish change event", zap.String("routing_key", routingKey), zap.Error(err))
	}

	r.logger.Debug("Recorded change",
		zap.String("entity", string(change.Entity)),
		zap.String("action", string(change.Action)),
		zap.String("id", change.ID),
		zap.Int("invalidated", removed),
	)
}

// Cache returns the query cache, for writers that patch keys in place.
func (r *ChangeRecorder) Cache() *querycache.Cache {
	return r.cache
}
