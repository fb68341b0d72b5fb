package pubsub

import (
	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"rentals/tracing"
)

func NewKafkaPublisher(kafkaAddr string, watermillLogger watermill.LoggerAdapter) (message.Publisher, error) {
	var publisher message.Publisher
	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   []string{kafkaAddr},
		Marshaler: kafka.DefaultMarshaler{},
	}, watermillLogger)
	if err != nil {
		return nil, err
	}

	publisher = log.CorrelationPublisherDecorator{Publisher: publisher}
	publisher = tracing.PublisherDecorator{Publisher: publisher}
	return publisher, nil
}

func NewKafkaSubscriber(kafkaAddr string, consumerGroup string, watermillLogger watermill.LoggerAdapter) (message.Subscriber, error) {
	return kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:                []string{kafkaAddr},
		Unmarshaler:            kafka.DefaultMarshaler{},
		ConsumerGroup:          consumerGroup,
		InitializeTopicDetails: &sarama.TopicDetail{NumPartitions: 1, ReplicationFactor: 1},
		OverwriteSaramaConfig:  newSaramaConfig(),
	}, watermillLogger)
}

func newSaramaConfig() *sarama.Config {
	cfg := kafka.DefaultSaramaSubscriberConfig()
	// a fresh consumer group must not skip the audit log written before it joined
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	return cfg
}
