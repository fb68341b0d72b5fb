// Package audit is the fire-and-forget event log of the service.
package audit

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"

	"rentals/entity"
	"rentals/metrics"
)

const drainTimeout = 5 * time.Second

type EventBus interface {
	Publish(ctx context.Context, event any) error
}

// Emitter queues audit events and publishes them from a single worker, so
// callers never wait for the broker. When the queue is full events are dropped.
type Emitter struct {
	bus   EventBus
	queue chan entity.AuditEvent
}

func NewEmitter(bus EventBus, buffer int) *Emitter {
	if bus == nil {
		panic("missing event bus")
	}
	if buffer <= 0 {
		panic("buffer must be positive")
	}

	return &Emitter{
		bus:   bus,
		queue: make(chan entity.AuditEvent, buffer),
	}
}

func (e *Emitter) Emit(ctx context.Context, eventType string, details map[string]any) {
	event := entity.AuditEvent{
		Header:    entity.NewEventHeaderWithCorrelationID(log.CorrelationIDFromContext(ctx)),
		EventType: eventType,
		Details:   details,
	}

	select {
	case e.queue <- event:
	default:
		metrics.AuditEvents.WithLabelValues("dropped").Inc()
		log.FromContext(ctx).
			WithField("event_type", eventType).
			Warn("Audit queue is full, dropping event")
	}
}

// Run publishes queued events until ctx is done, then flushes what is left.
func (e *Emitter) Run(ctx context.Context) error {
	for {
		select {
		case event := <-e.queue:
			e.publish(ctx, event)
		case <-ctx.Done():
			e.drain()
			return nil
		}
	}
}

func (e *Emitter) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case event := <-e.queue:
			e.publish(ctx, event)
		default:
			return
		}
	}
}

func (e *Emitter) publish(ctx context.Context, event entity.AuditEvent) {
	ctx = log.ContextWithCorrelationID(ctx, event.Header.CorrelationID)
	logger := log.FromContext(ctx).WithFields(logrus.Fields{
		"event_id":   event.Header.ID,
		"event_type": event.EventType,
	})

	if err := e.bus.Publish(ctx, event); err != nil {
		metrics.AuditEvents.WithLabelValues("failed").Inc()
		logger.WithError(err).Error("Could not publish audit event")
		return
	}

	metrics.AuditEvents.WithLabelValues("published").Inc()
	logger.Debug("Audit event published")
}
