package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/rugby-club-api/pkg/events"
)

// eventEmitter publishes domain events without failing the request that produced them.
type eventEmitter struct {
	publisher events.Publisher
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

func newEventEmitter(publisher events.Publisher, metrics *MetricsService, logger *zap.Logger) eventEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NewNoopPublisher(logger)
	}
	return eventEmitter{publisher: publisher, metrics: metrics, logger: logger, now: time.Now}
}

func (e eventEmitter) emit(ctx context.Context, eventType, key string, payload interface{}) {
	err := e.publisher.Publish(ctx, events.Event{Type: eventType, Key: key, Payload: payload, OccurredAt: e.now().UTC()})
	e.metrics.ObserveEvent(eventType, err)
	if err != nil {
		e.logger.Warn("publish domain event failed", zap.String("type", eventType), zap.String("key", key), zap.Error(err))
	}
}
