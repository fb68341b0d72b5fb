package pubsub_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentals/entity"
	"rentals/pubsub"
)

type dataLakeMock struct {
	mu     sync.Mutex
	events []entity.DataLakeEvent
}

func (d *dataLakeMock) StoreEvent(ctx context.Context, dataLakeEvent entity.DataLakeEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, dataLakeEvent)
	return nil
}

func (d *dataLakeMock) Events() []entity.DataLakeEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]entity.DataLakeEvent(nil), d.events...)
}

func TestRouter_storesAuditEventsInDataLake(t *testing.T) {
	logger := watermill.NopLogger{}
	goChannel := gochannel.NewGoChannel(gochannel.Config{}, logger)
	dataLake := &dataLakeMock{}

	router, err := pubsub.NewWatermillRouter(goChannel, dataLake, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = router.Run(ctx)
	}()
	<-router.Running()

	bus, err := pubsub.NewEventBus(goChannel)
	require.NoError(t, err)

	event := entity.AuditEvent{
		Header:    entity.NewEventHeader(),
		EventType: entity.AuditVehicleBooked,
		Details:   map[string]any{"vehicle_id": "v1", "total_cost": "150"},
	}
	require.NoError(t, bus.Publish(ctx, event))

	assert.EventuallyWithT(t, func(t *assert.CollectT) {
		events := dataLake.Events()
		if !assert.Len(t, events, 1) {
			return
		}

		assert.Equal(t, event.Header.ID, events[0].ID)
		assert.Equal(t, entity.AuditVehicleBooked, events[0].Name)
		assert.True(t, event.Header.PublishedAt.Equal(events[0].PublishedAt))

		var stored entity.AuditEvent
		if assert.NoError(t, json.Unmarshal(events[0].Payload, &stored)) {
			assert.Equal(t, "v1", stored.Details["vehicle_id"])
		}
	}, 5*time.Second, 50*time.Millisecond)
}

func TestEventBus_rejectsUnknownEvents(t *testing.T) {
	bus, err := pubsub.NewEventBus(gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}))
	require.NoError(t, err)

	err = bus.Publish(context.Background(), struct{ Name string }{Name: "unknown"})
	assert.Error(t, err)
}

func TestStoreToDataLake_rejectsIncompleteEvents(t *testing.T) {
	dataLake := &dataLakeMock{}
	handler := pubsub.StoreToDataLake(dataLake)

	testCases := []struct {
		Name    string
		Payload string
	}{
		{Name: "not_json", Payload: "not json"},
		{Name: "missing_header", Payload: `{"event_type":"VEHICLE_BOOKED","details":{}}`},
		{Name: "missing_event_type", Payload: `{"header":{"id":"` + uuid.NewString() + `"},"details":{}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			err := handler(message.NewMessage(watermill.NewUUID(), []byte(tc.Payload)))
			assert.Error(t, err)
		})
	}

	assert.Empty(t, dataLake.Events())
}
