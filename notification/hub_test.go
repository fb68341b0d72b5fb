package notification

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observerMock struct {
	lock     sync.Mutex
	messages []string

	err   error
	block bool
}

func (o *observerMock) Send(ctx context.Context, message string) error {
	if o.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if o.err != nil {
		return o.err
	}

	o.lock.Lock()
	defer o.lock.Unlock()
	o.messages = append(o.messages, message)

	return nil
}

func (o *observerMock) Messages() []string {
	o.lock.Lock()
	defer o.lock.Unlock()

	return append([]string(nil), o.messages...)
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(time.Second, 8)

	observers := []*observerMock{{}, {}, {}}
	for _, o := range observers {
		hub.Register(o)
	}

	delivered := hub.Broadcast(context.Background(), "Vehicle Toyota Corolla has been booked.")
	assert.Equal(t, 3, delivered)

	for _, o := range observers {
		assert.Equal(t, []string{"Vehicle Toyota Corolla has been booked."}, o.Messages())
	}
}

func TestHub_Broadcast_noObservers(t *testing.T) {
	hub := NewHub(time.Second, 8)

	assert.Equal(t, 0, hub.Broadcast(context.Background(), "nobody listens"))
}

func TestHub_Broadcast_failedObserverIsRemoved(t *testing.T) {
	hub := NewHub(time.Second, 8)

	healthy := []*observerMock{{}, {}}
	broken := &observerMock{err: errors.New("connection reset")}

	hub.Register(healthy[0])
	hub.Register(broken)
	hub.Register(healthy[1])

	delivered := hub.Broadcast(context.Background(), "first")
	assert.Equal(t, 2, delivered)
	assert.Equal(t, 2, hub.Len())

	delivered = hub.Broadcast(context.Background(), "second")
	assert.Equal(t, 2, delivered)

	for _, o := range healthy {
		assert.Equal(t, []string{"first", "second"}, o.Messages())
	}
}

type closableObserverMock struct {
	observerMock

	closed atomic.Bool
}

func (o *closableObserverMock) Close() error {
	o.closed.Store(true)
	return nil
}

func TestHub_Broadcast_failedObserverIsClosed(t *testing.T) {
	hub := NewHub(time.Second, 8)

	healthy := &closableObserverMock{}
	broken := &closableObserverMock{observerMock: observerMock{err: errors.New("broken pipe")}}

	hub.Register(healthy)
	hub.Register(broken)

	assert.Equal(t, 1, hub.Broadcast(context.Background(), "hello"))

	assert.True(t, broken.closed.Load(), "evicted observer must be closed")
	assert.False(t, healthy.closed.Load())
	assert.Equal(t, 1, hub.Len())
}

func TestHub_Broadcast_slowObserverDoesNotBlockOthers(t *testing.T) {
	hub := NewHub(200*time.Millisecond, 1)

	stalled := &observerMock{block: true}
	fast := &observerMock{}

	hub.Register(stalled)
	hub.Register(fast)

	start := time.Now()
	delivered := hub.Broadcast(context.Background(), "hello")
	elapsed := time.Since(start)

	assert.Equal(t, 1, delivered)
	assert.Equal(t, []string{"hello"}, fast.Messages())
	assert.Less(t, elapsed, 2*time.Second)
	assert.Equal(t, 1, hub.Len(), "stalled observer should be dropped")
}

func TestHub_Unregister_idempotent(t *testing.T) {
	hub := NewHub(time.Second, 8)

	registered := &observerMock{}
	neverRegistered := &observerMock{}

	hub.Register(registered)

	hub.Unregister(registered)
	hub.Unregister(registered)
	hub.Unregister(neverRegistered)

	assert.Equal(t, 0, hub.Len())
	assert.Equal(t, 0, hub.Broadcast(context.Background(), "message"))
	assert.Empty(t, registered.Messages())
}

func TestHub_concurrentAccess(t *testing.T) {
	hub := NewHub(time.Second, 4)

	stable := &observerMock{}
	hub.Register(stable)

	const workers = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			o := &observerMock{}
			hub.Register(o)
			hub.Unregister(o)
		}()

		go func() {
			defer wg.Done()
			hub.Broadcast(context.Background(), "tick")
		}()
	}
	wg.Wait()

	require.Equal(t, 1, hub.Len())
	assert.Len(t, stable.Messages(), workers)
}
