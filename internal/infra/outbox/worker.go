package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	appoutbox "coastalstay/internal/app/outbox"
)

const defaultSource = "app://coastalstay"

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

// ErrMalformedPayload marks a stored event no retry can publish.
var ErrMalformedPayload = errors.New("outbox: payload is not a JSON object")

// Producer publishes one message to the broker.
type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Queue is the part of Store the worker drives.
type Queue interface {
	Claim(ctx context.Context, workerID string) (*EventDocument, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
	MarkDead(ctx context.Context, id string, errMsg string) error
	ReleaseStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// Observer receives relay outcomes: sent, retried or dead.
type Observer interface {
	ObserveOutbox(result string)
}

// Worker relays stored events to the broker as CloudEvents, one topic per
// aggregate type. Without a Producer, events go straight to Deliver instead.
// A failed event is retried once per Backoff step and then parked as dead.
// With no Backoff it is retried every 5s until it goes through.
type Worker struct {
	Store       Queue
	Producer    Producer
	Deliver     appoutbox.Handler
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	BatchSize   int
	ClaimTTL    time.Duration
	Logger      *slog.Logger
	Observer    Observer
	Now         func() time.Time
}

// Run relays due events every Interval until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || (w.Producer == nil && w.Deliver == nil) {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
				w.log().WarnContext(ctx, "outbox relay failed", "worker", w.ID, "error", err)
			}
		}
	}
}

// ProcessBatch relays up to BatchSize due events and reports how many were
// published.
func (w *Worker) ProcessBatch(ctx context.Context) (int, error) {
	if w.ClaimTTL > 0 {
		released, err := w.Store.ReleaseStale(ctx, w.now().Add(-w.ClaimTTL))
		if err != nil {
			return 0, err
		}
		if released > 0 {
			w.log().InfoContext(ctx, "outbox released stale claims", "count", released)
		}
	}
	sent := 0
	for range w.batchSize() {
		doc, err := w.Store.Claim(ctx, w.ID)
		if err != nil {
			return sent, err
		}
		if doc == nil {
			return sent, nil
		}
		ok, err := w.relay(ctx, doc)
		if err != nil {
			return sent, err
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

func (w *Worker) relay(ctx context.Context, doc *EventDocument) (bool, error) {
	topic := w.topicFor(doc.Name)
	var err error
	if w.Producer == nil {
		topic = "local"
		err = w.Deliver.HandleEvent(ctx, doc.Record())
	} else {
		var (
			payload []byte
			headers map[string]string
		)
		payload, headers, err = w.formatPayload(doc)
		if err == nil {
			err = w.Producer.Publish(ctx, topic, doc.Aggregate, payload, headers)
		}
	}
	if err != nil {
		if errors.Is(err, ErrMalformedPayload) || (len(w.Backoff) > 0 && doc.Attempts >= len(w.Backoff)) {
			w.observe("dead")
			w.log().ErrorContext(ctx, "outbox event dead", "event", doc.Name, "event_id", doc.ID, "topic", topic, "attempt", doc.Attempts+1, "error", err)
			return false, w.Store.MarkDead(ctx, doc.ID, err.Error())
		}
		w.observe("retried")
		w.log().WarnContext(ctx, "outbox publish failed", "event", doc.Name, "event_id", doc.ID, "topic", topic, "attempt", doc.Attempts+1, "error", err)
		return false, w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
	}
	w.observe("sent")
	w.log().DebugContext(ctx, "outbox event published", "event", doc.Name, "event_id", doc.ID, "topic", topic)
	return true, w.Store.MarkSent(ctx, doc.ID)
}

func (w *Worker) formatPayload(doc *EventDocument) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(doc.Payload, &data); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              doc.ID,
		"type":            doc.Name + ".v1",
		"source":          w.source(),
		"subject":         doc.Aggregate,
		"time":            doc.OccurredAt.UTC(),
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := doc.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
		"ce-id":        doc.ID,
		"ce-type":      doc.Name,
	}
	for k, v := range doc.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// TopicFor maps "property.created" to "<prefix>property.events.v1".
func TopicFor(prefix, name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return prefix + base + ".events.v1"
}

func (w *Worker) topicFor(name string) string {
	return TopicFor(w.TopicPrefix, name)
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) batchSize() int {
	if w.BatchSize <= 0 {
		return 50
	}
	return w.BatchSize
}

func (w *Worker) nextRetry(attempts int) time.Time {
	now := w.now()
	if attempts < len(w.Backoff) {
		return now.Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return now.Add(w.Backoff[len(w.Backoff)-1])
	}
	return now.Add(5 * time.Second)
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return defaultSource
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *Worker) observe(result string) {
	if w.Observer != nil {
		w.Observer.ObserveOutbox(result)
	}
}

func (w *Worker) log() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
