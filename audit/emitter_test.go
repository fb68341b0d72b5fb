package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentals/entity"
)

type eventBusMock struct {
	lock   sync.Mutex
	events []entity.AuditEvent

	failures int
}

func (b *eventBusMock) Publish(ctx context.Context, event any) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.failures > 0 {
		b.failures--
		return errors.New("broker unavailable")
	}

	b.events = append(b.events, event.(entity.AuditEvent))
	return nil
}

func (b *eventBusMock) Events() []entity.AuditEvent {
	b.lock.Lock()
	defer b.lock.Unlock()

	return append([]entity.AuditEvent(nil), b.events...)
}

func runEmitter(t *testing.T, e *Emitter) (cancel func()) {
	t.Helper()

	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, e.Run(ctx))
	}()

	return func() {
		cancelCtx()
		<-done
	}
}

func TestEmitter_Emit(t *testing.T) {
	bus := &eventBusMock{}
	emitter := NewEmitter(bus, 10)
	stop := runEmitter(t, emitter)
	defer stop()

	ctx := log.ContextWithCorrelationID(context.Background(), "correlation-1")
	emitter.Emit(ctx, entity.AuditVehicleBooked, map[string]any{"vehicle_id": "v-1", "total_cost": "150"})

	require.EventuallyWithT(t, func(t *assert.CollectT) {
		assert.Len(t, bus.Events(), 1)
	}, time.Second, 10*time.Millisecond)

	event := bus.Events()[0]
	assert.Equal(t, entity.AuditVehicleBooked, event.EventType)
	assert.Equal(t, "v-1", event.Details["vehicle_id"])
	assert.Equal(t, "correlation-1", event.Header.CorrelationID)
	assert.NotEmpty(t, event.Header.ID)
}

func TestEmitter_publishFailureDoesNotStopWorker(t *testing.T) {
	bus := &eventBusMock{failures: 1}
	emitter := NewEmitter(bus, 10)
	stop := runEmitter(t, emitter)
	defer stop()

	emitter.Emit(context.Background(), entity.AuditUserRegistered, map[string]any{"email": "lost@example.com"})
	emitter.Emit(context.Background(), entity.AuditUserRegistered, map[string]any{"email": "kept@example.com"})

	require.EventuallyWithT(t, func(t *assert.CollectT) {
		assert.Len(t, bus.Events(), 1)
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, "kept@example.com", bus.Events()[0].Details["email"])
}

func TestEmitter_Emit_fullQueueDrops(t *testing.T) {
	bus := &eventBusMock{}
	emitter := NewEmitter(bus, 1)

	// no worker is running, so the second event does not fit
	emitter.Emit(context.Background(), entity.AuditVehicleAdded, map[string]any{"n": 1})
	emitter.Emit(context.Background(), entity.AuditVehicleAdded, map[string]any{"n": 2})

	stop := runEmitter(t, emitter)
	stop()

	events := bus.Events()
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].Details["n"])
}

func TestEmitter_Run_drainsOnShutdown(t *testing.T) {
	bus := &eventBusMock{}
	emitter := NewEmitter(bus, 10)

	for i := 0; i < 5; i++ {
		emitter.Emit(context.Background(), entity.AuditVehicleBooked, map[string]any{"i": i})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, emitter.Run(ctx))

	assert.Len(t, bus.Events(), 5)
}
