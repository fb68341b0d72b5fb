package pubsub

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
)

const dataLakeConsumerGroup = "svc-rentals.data_lake"

// Transport is the broker carrying the audit log.
type Transport struct {
	Name       string
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// NewTransport uses Kafka when kafkaAddr is set and Redis Streams otherwise.
func NewTransport(rdb *redis.Client, kafkaAddr string, watermillLogger watermill.LoggerAdapter) (Transport, error) {
	if kafkaAddr != "" {
		pub, err := NewKafkaPublisher(kafkaAddr, watermillLogger)
		if err != nil {
			return Transport{}, fmt.Errorf("could not create kafka publisher: %w", err)
		}

		sub, err := NewKafkaSubscriber(kafkaAddr, dataLakeConsumerGroup, watermillLogger)
		if err != nil {
			return Transport{}, fmt.Errorf("could not create kafka subscriber: %w", err)
		}

		return Transport{Name: "kafka", Publisher: pub, Subscriber: sub}, nil
	}

	pub, err := NewRedisPublisher(rdb, watermillLogger)
	if err != nil {
		return Transport{}, fmt.Errorf("could not create redis publisher: %w", err)
	}

	sub, err := NewRedisSubscriber(rdb, dataLakeConsumerGroup, watermillLogger)
	if err != nil {
		return Transport{}, fmt.Errorf("could not create redis subscriber: %w", err)
	}

	return Transport{Name: "redis", Publisher: pub, Subscriber: sub}, nil
}
