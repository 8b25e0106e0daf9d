// Package settlement releases held payments once delivery is confirmed.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dermanow/dermanow/internal/events"
	"github.com/dermanow/dermanow/internal/metrics"
	"github.com/dermanow/dermanow/internal/order"
)

const deliveredEvent = "order." + string(order.StatusDelivered)

//go:generate mockgen -source=settlement.go -destination=settlement_mock.go -package=settlement
type Releaser interface {
	ReleasePayment(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

// Deduper remembers which events were already handled. Claim returns
// false when another delivery of the same event got there first.
type Deduper interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type Settler struct {
	orders Releaser
	dedup  Deduper
}

func New(orders Releaser, dedup Deduper) *Settler {
	return &Settler{orders: orders, dedup: dedup}
}

// Handle is an events.Handler. Only delivered events are acted on; the
// rest are acknowledged and skipped.
func (s *Settler) Handle(ctx context.Context, env events.Envelope) error {
	if env.EventType != deliveredEvent {
		return nil
	}

	payload, err := events.Decode[order.TransitionPayload](env)
	if err != nil {
		slog.Error("skipping undecodable delivery event", "event_id", env.EventID, "error", err)
		metrics.Settlements.WithLabelValues("malformed").Inc()

		return nil
	}

	id, err := uuid.Parse(payload.OrderID)
	if err != nil {
		slog.Error("skipping delivery event with bad order id", "event_id", env.EventID, "order_id", payload.OrderID)
		metrics.Settlements.WithLabelValues("malformed").Inc()

		return nil
	}

	claimed, err := s.dedup.Claim(ctx, env.EventID)
	if err != nil {
		return fmt.Errorf("claim event %s: %w", env.EventID, err)
	}

	if !claimed {
		slog.Info("delivery event already handled", "event_id", env.EventID, "order_id", id)
		metrics.Settlements.WithLabelValues("duplicate").Inc()

		return nil
	}

	if _, err := s.orders.ReleasePayment(ctx, id); err != nil {
		if errors.Is(err, order.ErrInvalidTransition) || errors.Is(err, order.ErrConflict) {
			slog.Info("order already settled", "order_id", id, "error", err)
			metrics.Settlements.WithLabelValues("already_settled").Inc()

			return nil
		}

		if ferr := s.dedup.Forget(ctx, env.EventID); ferr != nil {
			slog.Warn("failed to forget event claim", "event_id", env.EventID, "error", ferr)
		}

		metrics.Settlements.WithLabelValues("failed").Inc()

		return fmt.Errorf("release payment for %s: %w", id, err)
	}

	slog.Info("payment released", "order_id", id, "fund_source", payload.FundSource, "total_price", payload.TotalPrice)
	metrics.Settlements.WithLabelValues("released").Inc()

	return nil
}
