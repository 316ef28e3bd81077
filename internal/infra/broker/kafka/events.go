package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IBM/sarama"

	appoutbox "coastalstay/internal/app/outbox"
)

var ErrMalformedEvent = errors.New("kafka: malformed cloud event")

// Inbox de-duplicates deliveries per consumer.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type MessageObserver interface {
	ObserveMessage(kind, key string, elapsed time.Duration, err error)
}

// EventHandler unwraps CloudEvents written by the outbox worker and hands the
// original event record to Target, at most once per event id.
type EventHandler struct {
	Inbox    Inbox
	Target   appoutbox.Handler
	Logger   *slog.Logger
	Observer MessageObserver
}

type cloudEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Source  string          `json:"source"`
	Subject string          `json:"subject"`
	Time    time.Time       `json:"time"`
	Data    json.RawMessage `json:"data"`
}

func (h *EventHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) (err error) {
	start := time.Now()
	rec, err := DecodeRecord(msg)
	if err != nil {
		// Poison messages are dropped after logging; redelivery cannot fix them.
		if h.Logger != nil {
			h.Logger.WarnContext(ctx, "kafka event dropped", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
		return nil
	}
	defer func() {
		if h.Observer != nil {
			h.Observer.ObserveMessage("kafka", rec.Name, time.Since(start), err)
		}
	}()

	if h.Inbox != nil {
		seen, err := h.Inbox.Seen(ctx, rec.ID)
		if err != nil {
			return fmt.Errorf("kafka: inbox: %w", err)
		}
		if seen {
			if h.Logger != nil {
				h.Logger.DebugContext(ctx, "kafka event already handled", "event", rec.Name, "event_id", rec.ID)
			}
			return nil
		}
	}
	if err := h.Target.HandleEvent(ctx, rec); err != nil {
		if h.Inbox != nil {
			if ferr := h.Inbox.Forget(ctx, rec.ID); ferr != nil && h.Logger != nil {
				h.Logger.WarnContext(ctx, "kafka inbox release failed", "event_id", rec.ID, "error", ferr)
			}
		}
		return err
	}
	return nil
}

// DecodeRecord turns a CloudEvent message back into an outbox record.
func DecodeRecord(msg *sarama.ConsumerMessage) (appoutbox.EventRecord, error) {
	if msg == nil || len(msg.Value) == 0 {
		return appoutbox.EventRecord{}, ErrMalformedEvent
	}
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return appoutbox.EventRecord{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if evt.ID == "" || evt.Type == "" {
		return appoutbox.EventRecord{}, ErrMalformedEvent
	}
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		if h != nil {
			headers[string(h.Key)] = string(h.Value)
		}
	}
	aggregate := evt.Subject
	if aggregate == "" {
		aggregate = string(msg.Key)
	}
	return appoutbox.EventRecord{
		ID:         evt.ID,
		Name:       strings.TrimSuffix(evt.Type, ".v1"),
		Payload:    []byte(evt.Data),
		OccurredAt: evt.Time.UTC(),
		Aggregate:  aggregate,
		Headers:    headers,
	}, nil
}

var _ MessageHandler = (*EventHandler)(nil)
