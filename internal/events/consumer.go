package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler must return nil only when the event is fully processed and its
// offset may be committed.
type Handler func(ctx context.Context, env Envelope) error

type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	minBackoff = 200 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// Consumer feeds a worker pool from a consumer group. Each partition is
// pinned to one worker, and a failing event is retried in place, so an
// offset is only committed after everything before it on the partition.
type Consumer struct {
	r       reader
	workers int

	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})

	return newConsumer(r, workers)
}

func newConsumer(r reader, workers int) *Consumer {
	if workers <= 0 {
		workers = 1
	}

	return &Consumer{r: r, workers: workers, minBackoff: minBackoff, maxBackoff: maxBackoff}
}

// Start dispatches messages to the workers until ctx is cancelled. Events
// still failing at that point stay uncommitted and are redelivered.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	queues := make([]chan kafka.Message, c.workers)

	var wg sync.WaitGroup

	for i := range queues {
		queues[i] = make(chan kafka.Message, 4)
		wg.Add(1)

		go func(q <-chan kafka.Message) {
			defer wg.Done()

			for m := range q {
				c.handle(ctx, h, m)
			}
		}(queues[i])
	}

	defer wg.Wait()
	defer func() {
		for _, q := range queues {
			close(q)
		}
	}()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}

			return err
		}

		select {
		case queues[m.Partition%c.workers] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Consumer) handle(ctx context.Context, h Handler, m kafka.Message) {
	var env Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		slog.Error("dropping malformed event", "partition", m.Partition, "offset", m.Offset, "error", err)
		c.commit(ctx, m)

		return
	}

	wait := c.minBackoff

	for attempt := 1; ; attempt++ {
		err := h(ctx, env)
		if err == nil {
			c.commit(ctx, m)
			return
		}

		if ctx.Err() != nil {
			return
		}

		slog.Error("event handler failed, retrying",
			"event_id", env.EventID,
			"event_type", env.EventType,
			"partition", m.Partition,
			"offset", m.Offset,
			"attempt", attempt,
			"backoff", wait,
			"error", err,
		)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return
		}

		wait = min(wait*2, c.maxBackoff)
	}
}

// commit outlives ctx so work finished during shutdown is not replayed.
func (c *Consumer) commit(ctx context.Context, m kafka.Message) {
	if err := c.r.CommitMessages(context.WithoutCancel(ctx), m); err != nil {
		slog.Error("failed to commit offset", "partition", m.Partition, "offset", m.Offset, "error", err)
	}
}
