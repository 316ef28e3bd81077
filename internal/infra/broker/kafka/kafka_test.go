package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "coastalstay/internal/app/outbox"
)

type memInbox struct {
	seen      map[string]bool
	forgotten []string
}

func (i *memInbox) Seen(ctx context.Context, id string) (bool, error) {
	if i.seen == nil {
		i.seen = map[string]bool{}
	}
	was := i.seen[id]
	i.seen[id] = true
	return was, nil
}

func (i *memInbox) Forget(ctx context.Context, id string) error {
	delete(i.seen, id)
	i.forgotten = append(i.forgotten, id)
	return nil
}

const envelope = `{"specversion":"1.0","id":"e1","type":"inquiry.submitted.v1","source":"app://coastalstay","subject":"inq-1","time":"2030-06-01T12:00:00Z","data":{"inquiryId":"inq-1"}}`

func message(value string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{
		Topic:   "inquiry.events.v1",
		Key:     []byte("inq-1"),
		Value:   []byte(value),
		Headers: []*sarama.RecordHeader{{Key: []byte("content-type"), Value: []byte("application/cloudevents+json")}},
	}
}

func TestDecodeRecord(t *testing.T) {
	rec, err := DecodeRecord(message(envelope))
	require.NoError(t, err)
	assert.Equal(t, "e1", rec.ID)
	assert.Equal(t, "inquiry.submitted", rec.Name)
	assert.Equal(t, "inq-1", rec.Aggregate)
	assert.JSONEq(t, `{"inquiryId":"inq-1"}`, string(rec.Payload))
	assert.Equal(t, "application/cloudevents+json", rec.Headers["content-type"])

	for _, bad := range []string{"", "nope", `{"type":"x"}`} {
		_, err := DecodeRecord(message(bad))
		assert.ErrorIs(t, err, ErrMalformedEvent, bad)
	}
}

func TestEventHandler_DeduplicatesAndReleasesOnFailure(t *testing.T) {
	ctx := context.Background()
	inbox := &memInbox{}
	var calls int
	failNext := false
	h := &EventHandler{Inbox: inbox, Target: appoutbox.HandlerFunc(func(ctx context.Context, rec appoutbox.EventRecord) error {
		calls++
		if failNext {
			return errors.New("smtp down")
		}
		return nil
	})}

	failNext = true
	assert.Error(t, h.Handle(ctx, message(envelope)))
	assert.Equal(t, []string{"e1"}, inbox.forgotten)

	failNext = false
	require.NoError(t, h.Handle(ctx, message(envelope)))
	require.NoError(t, h.Handle(ctx, message(envelope)))
	assert.Equal(t, 2, calls)

	assert.NoError(t, h.Handle(ctx, message("garbage")))
	assert.Equal(t, 2, calls)
}

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }
func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

type offsetHandler struct{ failAt int64 }

func (h offsetHandler) Handle(_ context.Context, msg *sarama.ConsumerMessage) error {
	if msg.Offset == h.failAt {
		return errors.New("smtp down")
	}
	return nil
}

func TestClaimHandler_MarksHandledMessages(t *testing.T) {
	sess := &fakeSession{ctx: context.Background()}
	claim := fakeClaim{messages: make(chan *sarama.ConsumerMessage, 3)}
	for offset := int64(1); offset <= 3; offset++ {
		claim.messages <- &sarama.ConsumerMessage{Topic: "inquiry.events.v1", Offset: offset}
	}
	close(claim.messages)

	require.NoError(t, claimHandler{handler: offsetHandler{failAt: 2}}.ConsumeClaim(sess, claim))
	assert.Equal(t, []int64{1, 3}, sess.marked)
}

func TestClaimHandler_StopsWithSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sess := &fakeSession{ctx: ctx}
	claim := fakeClaim{messages: make(chan *sarama.ConsumerMessage)}

	require.NoError(t, claimHandler{handler: offsetHandler{}}.ConsumeClaim(sess, claim))
	assert.Empty(t, sess.marked)
}

func TestRecordHeaders_Sorted(t *testing.T) {
	hs := recordHeaders(map[string]string{"ce-type": "inquiry.submitted.v1", "ce-id": "e1", "content-type": "application/json"})
	keys := make([]string, 0, len(hs))
	for _, h := range hs {
		keys = append(keys, string(h.Key))
	}
	assert.Equal(t, []string{"ce-id", "ce-type", "content-type"}, keys)
}

func TestProducerConfig(t *testing.T) {
	cfg := producerConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ClientID, cfg.ClientID)
	assert.True(t, cfg.Producer.Idempotent)
	assert.NoError(t, consumerConfig().Validate())
}

func TestProducer_Publish(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	mock := mocks.NewSyncProducer(t, cfg)
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != envelope {
			return errors.New("unexpected payload")
		}
		return nil
	})
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewProducerWith(mock)
	require.NoError(t, p.Publish(context.Background(), "inquiry.events.v1", "inq-1", []byte(envelope), map[string]string{"ce-id": "e1"}))
	assert.ErrorIs(t, p.Publish(context.Background(), "inquiry.events.v1", "inq-1", []byte(envelope), nil), sarama.ErrOutOfBrokers)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, "t", "k", nil, nil), context.Canceled)
	require.NoError(t, p.Close())
}
