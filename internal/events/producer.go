package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrProducerClosed = errors.New("event producer is closed")

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes envelopes to one topic from a single goroutine fed by a
// buffered inbox. Its lifetime is independent of any request or signal
// context: it runs until Close.
type Producer struct {
	w     writer
	topic string
	inbox chan kafka.Message

	mu      sync.RWMutex
	closed  bool
	stop    chan struct{}
	closeCh chan struct{}
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}

	return newProducer(w, topic, buf)
}

func newProducer(w writer, topic string, buf int) *Producer {
	return &Producer{
		w:       w,
		topic:   topic,
		inbox:   make(chan kafka.Message, buf),
		stop:    make(chan struct{}),
		closeCh: make(chan struct{}),
	}
}

// Start runs the writer loop until Close.
func (p *Producer) Start() {
	go func() {
		defer close(p.closeCh)

		for {
			select {
			case <-p.stop:
				p.drain()
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

// Close stops accepting events, writes everything already queued and
// closes the writer. Call it once the publishers are done, e.g. after the
// HTTP server has shut down.
func (p *Producer) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.stop)
	}
	p.mu.Unlock()

	<-p.closeCh
}

func (p *Producer) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			if err := p.w.Close(); err != nil {
				slog.Error("failed to close kafka writer", "error", err)
			}

			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.w.WriteMessages(ctx, m); err != nil {
		slog.Error("failed to write event", "topic", p.topic, "key", string(m.Key), "error", err)
	}
}

// Publish queues the envelope. Messages sharing a key keep their order.
func (p *Producer) Publish(ctx context.Context, key []byte, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding envelope: %w", err)
	}

	m := kafka.Message{
		Key:   key,
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}

	// The read lock keeps Close from draining while a send is in flight.
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrProducerClosed
	}

	select {
	case p.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Discard drops events. Used when no broker is configured.
type Discard struct{}

func (Discard) Publish(_ context.Context, key []byte, env Envelope) error {
	slog.Debug("event discarded", "key", string(key), "event_type", env.EventType)
	return nil
}
