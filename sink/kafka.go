package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
)

// DefaultTopic receives promotion events when none is configured.
const DefaultTopic = "newsdesk.promoted"

// Kafka publishes events with a synchronous producer keyed by entry id.
type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafka dials the brokers.
func NewKafka(brokers []string, topic string) (*Kafka, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, err
	}
	return NewKafkaWithProducer(producer, topic), nil
}

// NewKafkaWithProducer wraps an existing producer.
func NewKafkaWithProducer(producer sarama.SyncProducer, topic string) *Kafka {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Kafka{producer: producer, topic: topic}
}

func (k *Kafka) Name() string { return "kafka:" + k.topic }

func (k *Kafka) Publish(ctx context.Context, evt Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(evt.ID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("kind"), Value: []byte(evt.Kind)},
		},
	})
	if err != nil {
		return fmt.Errorf("send to kafka: %w", err)
	}
	return nil
}

func (k *Kafka) Close() error { return k.producer.Close() }
