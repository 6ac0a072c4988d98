package messaging

import (
	"context"

	"memorylane-backend/domain/events"
	"memorylane-backend/pkg/observability"
)

// MetricsEventHandler bumps business counters when ledger events fire
type MetricsEventHandler struct {
	metrics *observability.Metrics
}

// NewMetricsEventHandler creates the handler
func NewMetricsEventHandler(metrics *observability.Metrics) *MetricsEventHandler {
	return &MetricsEventHandler{metrics: metrics}
}

// Handle processes a ledger event
func (h *MetricsEventHandler) Handle(ctx context.Context, event events.DomainEvent) error {
	switch event.GetEventType() {
	case events.TypeMemoryStored:
		h.metrics.MemoriesStored.Inc()
		h.metrics.PublishBusinessMetric(ctx, "MemoriesStored", 1)
	case events.TypeMemoryUnlocked:
		h.metrics.MemoriesRetrieved.Inc()
		h.metrics.PublishBusinessMetric(ctx, "MemoriesRetrieved", 1)
	case events.TypeMemoryLiked:
		h.metrics.MemoriesLiked.Inc()
		h.metrics.PublishBusinessMetric(ctx, "MemoriesLiked", 1)
	case events.TypeLocationBecameLandmark:
		h.metrics.LandmarksLatched.Inc()
		h.metrics.PublishBusinessMetric(ctx, "LandmarksLatched", 1)
	}
	return nil
}

// CanHandle reports whether this handler cares about the event type
func (h *MetricsEventHandler) CanHandle(eventType string) bool {
	switch eventType {
	case events.TypeMemoryStored,
		events.TypeMemoryUnlocked,
		events.TypeMemoryLiked,
		events.TypeLocationBecameLandmark:
		return true
	}
	return false
}
