package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
)

// MessageHandler processes one consumed message. An error leaves it unmarked.
type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// Consumer feeds notification events from the broker to a MessageHandler.
// A message whose handler fails is not marked, so it is redelivered after
// the next rebalance or restart.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	logger  *slog.Logger
}

// NewConsumer joins groupID on brokers.
func NewConsumer(brokers []string, groupID string, handler MessageHandler, logger *slog.Logger) (*Consumer, error) {
	g, err := sarama.NewConsumerGroup(brokers, groupID, consumerConfig())
	if err != nil {
		return nil, fmt.Errorf("kafka: create consumer group %s: %w", groupID, err)
	}
	return &Consumer{group: g, handler: handler, logger: logger}, nil
}

// Run consumes topics until ctx is done, rejoining after each rebalance.
func (c *Consumer) Run(ctx context.Context, topics []string) error {
	go c.logErrors()
	h := claimHandler{handler: c.handler, logger: c.logger}
	for {
		err := c.group.Consume(ctx, topics, h)
		switch {
		case errors.Is(err, sarama.ErrClosedConsumerGroup):
			return nil
		case err != nil:
			return err
		case ctx.Err() != nil:
			return ctx.Err()
		}
	}
}

func (c *Consumer) logErrors() {
	for err := range c.group.Errors() {
		if c.logger != nil {
			c.logger.Warn("kafka consumer error", "error", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type claimHandler struct {
	handler MessageHandler
	logger  *slog.Logger
}

func (claimHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (claimHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h claimHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.handler.Handle(ctx, msg); err != nil {
				if h.logger != nil {
					h.logger.WarnContext(ctx, "kafka message failed", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
				}
				continue
			}
			sess.MarkMessage(msg, "")
		}
	}
}
