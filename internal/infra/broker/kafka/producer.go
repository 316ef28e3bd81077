package kafka

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/IBM/sarama"
)

// Producer relays outbox rows to the broker, keyed by aggregate id.
type Producer struct {
	sync sarama.SyncProducer
}

// NewProducer connects a synchronous idempotent producer.
func NewProducer(brokers []string) (*Producer, error) {
	sync, err := sarama.NewSyncProducer(brokers, producerConfig())
	if err != nil {
		return nil, fmt.Errorf("kafka: create producer: %w", err)
	}
	return NewProducerWith(sync), nil
}

// NewProducerWith wraps an existing sync producer, e.g. a sarama mock.
func NewProducerWith(sync sarama.SyncProducer) *Producer {
	return &Producer{sync: sync}
}

// Publish sends one message keyed by key and waits for all replicas.
func (p *Producer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: recordHeaders(headers),
	}
	if _, _, err := p.sync.SendMessage(msg); err != nil {
		return fmt.Errorf("kafka: publish %s to %s: %w", key, topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}

// recordHeaders emits headers sorted by name.
func recordHeaders(headers map[string]string) []sarama.RecordHeader {
	out := make([]sarama.RecordHeader, 0, len(headers))
	for _, k := range slices.Sorted(maps.Keys(headers)) {
		out = append(out, sarama.RecordHeader{Key: []byte(k), Value: []byte(headers[k])})
	}
	return out
}
