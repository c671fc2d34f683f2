package util

import (
	"context"
	"fmt"
	"time"

	"painelloja/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer wraps a kafka writer for publishing catalog change
// events (CATEGORY_*, PRODUCT_*, ORDER_*).
type KafkaProducer struct {
	writer  *kafka.Writer
	service string
}

func NewKafkaProducer(service string, brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Second,
	}

	return &KafkaProducer{writer: writer, service: service}
}

// PublishMessage writes one message. The key is the entity id, which
// keeps events for the same entity in order within a partition.
func (p *KafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	message := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		metrics.RecordKafkaError(p.service, p.writer.Topic, "produce")
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	metrics.RecordKafkaMessageProduced(p.service, p.writer.Topic)
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
