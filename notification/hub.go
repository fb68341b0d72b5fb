// Package notification fans booking notifications out to connected observers.
package notification

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"golang.org/x/sync/errgroup"

	"rentals/metrics"
)

// Observer is one listening client. Implementations must be comparable
// (pointer types), as the hub keys its active set by observer value.
type Observer interface {
	Send(ctx context.Context, message string) error
}

// evict removes o from the active set. Observers that are also io.Closer are
// closed, so their clients see the disconnect.
func (h *Hub) evict(ctx context.Context, o Observer) {
	h.Unregister(o)

	if closer, ok := o.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.FromContext(ctx).WithError(err).Debug("Could not close evicted observer")
		}
	}
}

// Hub owns the set of active observers. Register, Unregister and Broadcast
// are safe for concurrent use.
type Hub struct {
	mu        sync.RWMutex
	observers map[Observer]struct{}

	sendTimeout time.Duration
	maxParallel int
}

func NewHub(sendTimeout time.Duration, maxParallel int) *Hub {
	if sendTimeout <= 0 {
		panic("send timeout must be positive")
	}
	if maxParallel <= 0 {
		panic("max parallel must be positive")
	}

	return &Hub{
		observers:   make(map[Observer]struct{}),
		sendTimeout: sendTimeout,
		maxParallel: maxParallel,
	}
}

func (h *Hub) Register(o Observer) {
	h.mu.Lock()
	h.observers[o] = struct{}{}
	count := len(h.observers)
	h.mu.Unlock()

	metrics.ActiveObservers.Set(float64(count))
}

// Unregister removes o from the active set. Removing an absent observer is a no-op.
func (h *Hub) Unregister(o Observer) {
	h.mu.Lock()
	delete(h.observers, o)
	count := len(h.observers)
	h.mu.Unlock()

	metrics.ActiveObservers.Set(float64(count))
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.observers)
}

// Broadcast delivers message to every observer registered when the call
// started and returns how many of them received it. Each delivery runs on its
// own goroutine (at most maxParallel at once) bounded by the send timeout;
// observers whose delivery fails are unregistered.
func (h *Hub) Broadcast(ctx context.Context, message string) int {
	observers := h.snapshot()
	if len(observers) == 0 {
		return 0
	}

	var delivered atomic.Int64

	var g errgroup.Group
	g.SetLimit(h.maxParallel)

	for _, o := range observers {
		o := o
		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(ctx, h.sendTimeout)
			defer cancel()

			if err := o.Send(sendCtx, message); err != nil {
				log.FromContext(ctx).WithError(err).Warn("Dropping observer after failed delivery")
				metrics.NotificationsFailed.Inc()
				h.evict(ctx, o)
				return nil
			}

			delivered.Add(1)
			metrics.NotificationsDelivered.Inc()
			return nil
		})
	}

	// deliveries never return errors, failures only shrink the active set
	_ = g.Wait()

	return int(delivered.Load())
}

func (h *Hub) snapshot() []Observer {
	h.mu.RLock()
	defer h.mu.RUnlock()

	observers := make([]Observer, 0, len(h.observers))
	for o := range h.observers {
		observers = append(observers, o)
	}
	return observers
}
