package pubsub

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"rentals/entity"
)

type DataLake interface {
	StoreEvent(ctx context.Context, dataLakeEvent entity.DataLakeEvent) error
}

func NewWatermillRouter(
	subscriber message.Subscriber,
	dataLake DataLake,
	watermillLogger watermill.LoggerAdapter,
) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("could not create router: %w", err)
	}

	useMiddlewares(router, watermillLogger)

	router.AddNoPublisherHandler(
		"store_to_data_lake",
		EventLogsTopic,
		subscriber,
		StoreToDataLake(dataLake),
	)

	return router, nil
}

// StoreToDataLake persists audit events as they were published.
func StoreToDataLake(dataLake DataLake) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var event entity.AuditEvent
		if err := marshaler.Unmarshal(msg, &event); err != nil {
			return fmt.Errorf("could not unmarshal audit event: %w", err)
		}

		if event.Header.ID == "" || event.EventType == "" {
			return fmt.Errorf("audit event %s is missing header id or event type", msg.UUID)
		}

		return dataLake.StoreEvent(
			msg.Context(),
			entity.DataLakeEvent{
				ID:          event.Header.ID,
				PublishedAt: event.Header.PublishedAt,
				Name:        event.EventType,
				Payload:     msg.Payload,
			},
		)
	}
}
