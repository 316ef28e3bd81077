// Package outbox is the port between command handlers and event delivery.
// Handlers drain aggregate events into an Outbox inside their unit of work;
// delivery to email and the broker happens after commit.
package outbox

import (
	"context"
	"time"
)

// EventRecord is a domain event serialized for delivery.
type EventRecord struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Payload    []byte            `json:"payload"`
	OccurredAt time.Time         `json:"occurredAt"`
	Aggregate  string            `json:"aggregate"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// Outbox accepts encoded events during a command and releases them on Flush.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

// Handler consumes delivered event records.
type Handler interface {
	HandleEvent(ctx context.Context, record EventRecord) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, record EventRecord) error

func (f HandlerFunc) HandleEvent(ctx context.Context, record EventRecord) error {
	return f(ctx, record)
}
