package pubsub

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"

	"rentals/entity"
)

// EventLogsTopic is the topic every audit event is published to.
const EventLogsTopic = "event_logs"

var marshaler = cqrs.JSONMarshaler{
	GenerateName: cqrs.StructName,
}

func NewEventBus(pub message.Publisher) (*cqrs.EventBus, error) {
	return cqrs.NewEventBusWithConfig(pub, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			switch params.Event.(type) {
			case entity.AuditEvent, *entity.AuditEvent:
				return EventLogsTopic, nil
			default:
				return "", fmt.Errorf("unsupported event type: %T", params.Event)
			}
		},
		Marshaler: marshaler,
	})
}
