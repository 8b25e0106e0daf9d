package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves a fixed backlog, then blocks like an idle partition.
type fakeReader struct {
	mu        sync.Mutex
	backlog   []kafka.Message
	committed []kafka.Message
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.backlog) > 0 {
		m := f.backlog[0]
		f.backlog = f.backlog[1:]
		f.mu.Unlock()

		return m, nil
	}
	f.mu.Unlock()

	<-ctx.Done()

	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.committed = append(f.committed, msgs...)

	return nil
}

func (f *fakeReader) Close() error { return nil }

func (f *fakeReader) commits() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]int64, 0, len(f.committed))
	for _, m := range f.committed {
		out = append(out, m.Offset)
	}

	return out
}

func message(t *testing.T, partition int, offset int64, id string) kafka.Message {
	t.Helper()

	value, err := json.Marshal(Envelope{EventID: id, EventType: "order.delivered"})
	require.NoError(t, err)

	return kafka.Message{Partition: partition, Offset: offset, Value: value}
}

func fastConsumer(r reader, workers int) *Consumer {
	c := newConsumer(r, workers)
	c.minBackoff = time.Millisecond
	c.maxBackoff = 4 * time.Millisecond

	return c
}

func TestConsumer_RetriesFailedEventBeforeLaterOffsets(t *testing.T) {
	r := &fakeReader{backlog: []kafka.Message{
		message(t, 0, 10, "a"),
		message(t, 0, 11, "b"),
		message(t, 0, 12, "c"),
	}}

	var (
		mu       sync.Mutex
		seen     []string
		failures = 3
	)

	handler := func(_ context.Context, env Envelope) error {
		mu.Lock()
		defer mu.Unlock()

		seen = append(seen, env.EventID)
		if env.EventID == "a" && failures > 0 {
			failures--
			return errors.New("database unavailable")
		}

		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- fastConsumer(r, 4).Start(ctx, handler) }()

	require.Eventually(t, func() bool { return len(r.commits()) == 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []int64{10, 11, 12}, r.commits())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "a", "a", "a", "b", "c"}, seen)
}

func TestConsumer_PartitionsProgressIndependently(t *testing.T) {
	r := &fakeReader{backlog: []kafka.Message{
		message(t, 0, 1, "stuck"),
		message(t, 1, 1, "other"),
	}}

	handler := func(_ context.Context, env Envelope) error {
		if env.EventID == "stuck" {
			return errors.New("still failing")
		}

		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- fastConsumer(r, 2).Start(ctx, handler) }()

	require.Eventually(t, func() bool { return len(r.commits()) == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	// The failing event is left for redelivery.
	assert.Equal(t, []int64{1}, r.commits())
	assert.Equal(t, 1, r.committed[0].Partition)
}

func TestConsumer_CommitsMalformedEvent(t *testing.T) {
	r := &fakeReader{backlog: []kafka.Message{{Partition: 0, Offset: 7, Value: []byte("{")}}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- fastConsumer(r, 1).Start(ctx, func(context.Context, Envelope) error {
			t.Error("handler called for malformed event")
			return nil
		})
	}()

	require.Eventually(t, func() bool { return len(r.commits()) == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
