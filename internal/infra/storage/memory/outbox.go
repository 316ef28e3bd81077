package memory

import (
	"context"
	"log/slog"
	"sync"

	appoutbox "coastalstay/internal/app/outbox"
)

// Outbox keeps events in memory and hands them to subscribers on Flush. It
// stands in for the broker when the app runs without mongo and kafka.
type Outbox struct {
	mu          sync.Mutex
	records     []appoutbox.EventRecord
	subscribers []appoutbox.Handler
	logger      *slog.Logger
}

// NewOutbox creates an outbox that delivers to subscribers on Flush.
func NewOutbox(logger *slog.Logger, subscribers ...appoutbox.Handler) *Outbox {
	return &Outbox{subscribers: subscribers, logger: logger}
}

func (o *Outbox) Subscribe(h appoutbox.Handler) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subscribers = append(o.subscribers, h)
}

type batchKey struct{ box *Outbox }

type batch struct {
	records []appoutbox.EventRecord
}

// Begin returns ctx carrying a buffer of its own. Add, Flush and Discard called
// with that ctx only see records of the same command.
func (o *Outbox) Begin(ctx context.Context) context.Context {
	return context.WithValue(ctx, batchKey{o}, &batch{})
}

func (o *Outbox) batchFor(ctx context.Context) *batch {
	if b, ok := ctx.Value(batchKey{o}).(*batch); ok {
		return b
	}
	return nil
}

// Add buffers record in the batch bound to ctx, or the shared buffer.
func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if b := o.batchFor(ctx); b != nil {
		b.records = append(b.records, record)
		return nil
	}
	o.records = append(o.records, record)
	return nil
}

// take removes and returns the records visible from ctx.
func (o *Outbox) take(ctx context.Context) []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	var pending []appoutbox.EventRecord
	if b := o.batchFor(ctx); b != nil {
		pending, b.records = b.records, nil
	} else {
		pending, o.records = o.records, nil
	}
	return pending
}

// Flush delivers pending records in order. Subscriber failures are logged and
// do not fail the command that produced the events.
func (o *Outbox) Flush(ctx context.Context) error {
	pending := o.take(ctx)
	o.mu.Lock()
	subscribers := append([]appoutbox.Handler(nil), o.subscribers...)
	o.mu.Unlock()

	for _, rec := range pending {
		for _, sub := range subscribers {
			if err := sub.HandleEvent(ctx, rec); err != nil && o.logger != nil {
				o.logger.WarnContext(ctx, "event subscriber failed", "event", rec.Name, "event_id", rec.ID, "error", err)
			}
		}
	}
	return nil
}

// Discard drops records not flushed yet.
func (o *Outbox) Discard(ctx context.Context) {
	o.take(ctx)
}

// Pending returns a copy of records added outside any batch and not flushed yet.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.records...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
