package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "coastalstay/internal/app/outbox"
)

type fakeQueue struct {
	due      []*EventDocument
	sent     []string
	failed   map[string]time.Time
	dead     []string
	released int64
}

func (q *fakeQueue) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	if len(q.due) == 0 {
		return nil, nil
	}
	doc := q.due[0]
	q.due = q.due[1:]
	return doc, nil
}

func (q *fakeQueue) MarkSent(ctx context.Context, id string) error {
	q.sent = append(q.sent, id)
	return nil
}

func (q *fakeQueue) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	if q.failed == nil {
		q.failed = map[string]time.Time{}
	}
	q.failed[id] = next
	return nil
}

func (q *fakeQueue) MarkDead(ctx context.Context, id string, errMsg string) error {
	q.dead = append(q.dead, id)
	return nil
}

func (q *fakeQueue) ReleaseStale(ctx context.Context, cutoff time.Time) (int64, error) {
	return q.released, nil
}

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	msgs []published
	err  error
}

func (p *fakeProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

type countingObserver map[string]int

func (o countingObserver) ObserveOutbox(result string) { o[result]++ }

var clock = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

func newDoc(id, name string, attempts int) *EventDocument {
	return &EventDocument{
		ID:         id,
		Name:       name,
		Payload:    []byte(`{"propertyId":"p1"}`),
		OccurredAt: clock,
		Aggregate:  "p1",
		Attempts:   attempts,
	}
}

func TestWorker_ProcessBatchPublishesCloudEvents(t *testing.T) {
	queue := &fakeQueue{due: []*EventDocument{newDoc("e1", "property.bookings_replaced", 0), newDoc("e2", "inquiry.submitted", 0)}}
	producer := &fakeProducer{}
	observer := countingObserver{}
	w := &Worker{Store: queue, Producer: producer, TopicPrefix: "stage.", Observer: observer, Now: func() time.Time { return clock }}

	sent, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"e1", "e2"}, queue.sent)
	assert.Equal(t, 2, observer["sent"])

	require.Len(t, producer.msgs, 2)
	first := producer.msgs[0]
	assert.Equal(t, "stage.property.events.v1", first.topic)
	assert.Equal(t, "p1", first.key)
	assert.Equal(t, "application/cloudevents+json", first.headers["content-type"])
	assert.Equal(t, "stage.inquiry.events.v1", producer.msgs[1].topic)

	var evt map[string]any
	require.NoError(t, json.Unmarshal(first.payload, &evt))
	assert.Equal(t, "1.0", evt["specversion"])
	assert.Equal(t, "e1", evt["id"])
	assert.Equal(t, "property.bookings_replaced.v1", evt["type"])
	assert.Equal(t, "app://coastalstay", evt["source"])
	assert.Equal(t, map[string]any{"propertyId": "p1"}, evt["data"])
}

func TestWorker_FailureSchedulesRetry(t *testing.T) {
	tests := []struct {
		name     string
		attempts int
		wantNext time.Duration
		result   string
	}{
		{name: "first failure", attempts: 0, wantNext: time.Second, result: "retried"},
		{name: "second failure", attempts: 1, wantNext: 5 * time.Second, result: "retried"},
		{name: "schedule used up", attempts: 2, result: "dead"},
		{name: "past schedule", attempts: 7, result: "dead"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := &fakeQueue{due: []*EventDocument{newDoc("e1", "property.created", tt.attempts)}}
			observer := countingObserver{}
			w := &Worker{
				Store:    queue,
				Producer: &fakeProducer{err: errors.New("broker down")},
				Backoff:  []time.Duration{time.Second, 5 * time.Second},
				Observer: observer,
				Now:      func() time.Time { return clock },
			}
			sent, err := w.ProcessBatch(context.Background())
			require.NoError(t, err)
			assert.Zero(t, sent)
			assert.Empty(t, queue.sent)
			assert.Equal(t, 1, observer[tt.result])
			if tt.result == "dead" {
				assert.Equal(t, []string{"e1"}, queue.dead)
				assert.NotContains(t, queue.failed, "e1")
				return
			}
			assert.Empty(t, queue.dead)
			assert.Equal(t, clock.Add(tt.wantNext), queue.failed["e1"])
		})
	}
}

func TestWorker_BadPayloadIsDead(t *testing.T) {
	doc := newDoc("e1", "property.created", 0)
	doc.Payload = []byte("not json")
	queue := &fakeQueue{due: []*EventDocument{doc}}
	producer := &fakeProducer{}
	observer := countingObserver{}
	w := &Worker{Store: queue, Producer: producer, Observer: observer, Now: func() time.Time { return clock }}

	_, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, producer.msgs)
	assert.Equal(t, []string{"e1"}, queue.dead)
	assert.Empty(t, queue.failed)
	assert.Equal(t, 1, observer["dead"])
}

func TestWorker_RetriesForeverWithoutBackoff(t *testing.T) {
	queue := &fakeQueue{due: []*EventDocument{newDoc("e1", "property.created", 40)}}
	w := &Worker{Store: queue, Producer: &fakeProducer{err: errors.New("broker down")}, Now: func() time.Time { return clock }}

	_, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, queue.dead)
	assert.Equal(t, clock.Add(5*time.Second), queue.failed["e1"])
}

func TestWorker_BatchSizeLimit(t *testing.T) {
	queue := &fakeQueue{due: []*EventDocument{newDoc("e1", "a.x", 0), newDoc("e2", "a.y", 0), newDoc("e3", "a.z", 0)}}
	w := &Worker{Store: queue, Producer: &fakeProducer{}, BatchSize: 2}
	sent, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Len(t, queue.due, 1)
}

func TestWorker_DeliversLocallyWithoutProducer(t *testing.T) {
	queue := &fakeQueue{due: []*EventDocument{newDoc("e1", "inquiry.submitted", 0)}}
	var got []appoutbox.EventRecord
	w := &Worker{Store: queue, Deliver: appoutbox.HandlerFunc(func(ctx context.Context, rec appoutbox.EventRecord) error {
		got = append(got, rec)
		return nil
	})}
	sent, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, got, 1)
	assert.Equal(t, "inquiry.submitted", got[0].Name)
	assert.JSONEq(t, `{"propertyId":"p1"}`, string(got[0].Payload))
}

func TestWorker_RunRequiresDependencies(t *testing.T) {
	assert.ErrorIs(t, (&Worker{}).Run(context.Background()), ErrWorkerNotConfigured)
}

func TestTopicFor(t *testing.T) {
	assert.Equal(t, "property.events.v1", TopicFor("", "property.pricing_updated"))
	assert.Equal(t, "dev.inquiry.events.v1", TopicFor("dev.", "inquiry.submitted"))
	assert.Equal(t, "orphan.events.v1", TopicFor("", "orphan"))
}
