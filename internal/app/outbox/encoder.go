package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"coastalstay/internal/domain/shared/events"
)

// EventEncoder turns a domain event into an outbox record.
type EventEncoder interface {
	Encode(ctx context.Context, ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder marshals the event itself as the payload. Headers, when
// set, stamps request metadata such as the request id onto every record.
type JSONEventEncoder struct {
	IDGenerator func() string
	Headers     func(ctx context.Context) map[string]string
}

func (e JSONEventEncoder) Encode(ctx context.Context, ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, fmt.Errorf("outbox: encode %s: %w", ev.EventName(), err)
	}
	newID := e.IDGenerator
	if newID == nil {
		newID = uuid.NewString
	}
	headers := map[string]string{}
	if e.Headers != nil {
		for k, v := range e.Headers(ctx) {
			if v != "" {
				headers[k] = v
			}
		}
	}
	return EventRecord{
		ID:         newID(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt().UTC(),
		Aggregate:  ev.AggregateID(),
		Headers:    headers,
	}, nil
}

// Recorder is an aggregate that buffers domain events.
type Recorder interface {
	PendingEvents() []events.DomainEvent
	ClearEvents()
}

// Drain moves the pending events of every aggregate into box. An aggregate
// is cleared only once all its events were added.
func Drain(ctx context.Context, box Outbox, encoder EventEncoder, aggregates ...Recorder) error {
	if box == nil {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		for _, ev := range agg.PendingEvents() {
			rec, err := encoder.Encode(ctx, ev)
			if err != nil {
				return err
			}
			if err := box.Add(ctx, rec); err != nil {
				return err
			}
		}
		agg.ClearEvents()
	}
	return nil
}
