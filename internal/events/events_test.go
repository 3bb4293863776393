package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"procurement-console/internal/core"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestStatusPublisher_FlushesOnShutdown(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 16, discard)
	pub := NewStatusPublisher(p, "po-api")

	actor := 8
	require.NoError(t, pub.PublishStatusChange(context.Background(), core.StatusChange{
		POID: 12, PONumber: "PO-2026-00012", From: core.StatusPending, To: core.StatusApproved,
		ActorID: &actor, ActorRole: core.RoleApprover,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Run(ctx))
	require.True(t, w.closed)
	require.Len(t, w.msgs, 1)
	require.Equal(t, "12", string(w.msgs[0].Key))

	var env Envelope
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &env))
	require.Equal(t, EventStatusChanged, env.EventType)
	require.Equal(t, "12", env.CorrelationID)
	require.NotEmpty(t, env.EventID)

	payload, err := UnwrapPayload[StatusChangedPayload](env)
	require.NoError(t, err)
	require.Equal(t, "pending", payload.From)
	require.Equal(t, "approved", payload.To)
	require.Equal(t, 8, *payload.Actor.ID)

	require.ErrorIs(t, p.Publish(context.Background(), nil, nil), ErrProducerClosed)
}

type recordingPub struct {
	changes []core.StatusChange
	err     error
}

func (r *recordingPub) PublishStatusChange(_ context.Context, c core.StatusChange) error {
	r.changes = append(r.changes, c)
	return r.err
}

func TestFanout(t *testing.T) {
	a := &recordingPub{}
	b := &recordingPub{err: errors.New("broker down")}
	pub := Fanout(a, nil, b)

	err := pub.PublishStatusChange(context.Background(), core.StatusChange{POID: 1, To: core.StatusPending})
	require.ErrorContains(t, err, "broker down")
	require.Len(t, a.changes, 1)
	require.Len(t, b.changes, 1)
}

type fakeRecorder struct {
	purchases []int
	receipts  map[int]bool
	err       error
}

func (f *fakeRecorder) RecordPurchase(_ context.Context, poID int) error {
	f.purchases = append(f.purchases, poID)
	return f.err
}

func (f *fakeRecorder) RecordReceipt(_ context.Context, poID int, complete bool) error {
	if f.receipts == nil {
		f.receipts = map[int]bool{}
	}
	f.receipts[poID] = complete
	return f.err
}

type memDedup map[string]bool

func (d memDedup) Seen(_ context.Context, id string) (bool, error) { return d[id], nil }

func (d memDedup) Mark(_ context.Context, id string) error {
	d[id] = true
	return nil
}

type countingObserver map[string]int

func (o countingObserver) ObserveEvent(topic, result string) { o[topic+"/"+result]++ }

func message(t *testing.T, topic, eventType string, payload any) kafka.Message {
	t.Helper()
	env, err := NewEnvelope(eventType, "purchasing", "", payload)
	require.NoError(t, err)
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return kafka.Message{Topic: topic, Value: b}
}

func TestWorkflowHandler_Dispatch(t *testing.T) {
	rec := &fakeRecorder{}
	obs := countingObserver{}
	h := NewWorkflowHandler(rec, memDedup{}, obs, discard)
	ctx := context.Background()

	purchase := message(t, TopicPurchaseRecorded, EventPurchaseRecorded, PurchaseRecordedPayload{POID: 7})
	require.NoError(t, h(ctx, purchase))
	require.NoError(t, h(ctx, purchase))
	require.Equal(t, []int{7}, rec.purchases)

	require.NoError(t, h(ctx, message(t, TopicGoodsReceived, EventGoodsReceived, GoodsReceivedPayload{POID: 7, Complete: true})))
	require.True(t, rec.receipts[7])

	require.Equal(t, 1, obs[TopicPurchaseRecorded+"/ok"])
	require.Equal(t, 1, obs[TopicPurchaseRecorded+"/duplicate"])
	require.Equal(t, 1, obs[TopicGoodsReceived+"/ok"])
}

func TestWorkflowHandler_PermanentAndTransientErrors(t *testing.T) {
	ctx := context.Background()
	msg := message(t, TopicPurchaseRecorded, EventPurchaseRecorded, PurchaseRecordedPayload{POID: 7})

	dedup := memDedup{}
	rec := &fakeRecorder{err: core.ErrInvalidTransition}
	require.NoError(t, NewWorkflowHandler(rec, dedup, nil, discard)(ctx, msg))
	require.Empty(t, dedup)

	require.NoError(t, NewWorkflowHandler(rec, nil, nil, discard)(ctx, kafka.Message{Topic: TopicGoodsReceived, Value: []byte("{")}))

	rec.err = errors.New("connection reset")
	require.Error(t, NewWorkflowHandler(rec, nil, nil, discard)(ctx, msg))
}

type fakeReader struct {
	mu      sync.Mutex
	queue   []kafka.Message
	commits []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.commits = append(r.commits, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumer_CommitsOnlyHandledMessages(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{{Offset: 1}, {Offset: 2}, {Offset: 3}}}
	c := newConsumer(r, 2, discard)

	var handled sync.WaitGroup
	handled.Add(3)
	h := func(_ context.Context, m kafka.Message) error {
		defer handled.Done()
		if m.Offset == 2 {
			return errors.New("transient")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, h) }()

	handled.Wait()
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
	require.ElementsMatch(t, []int64{1, 3}, r.commits)
}
