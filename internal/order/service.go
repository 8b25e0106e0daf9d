package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dermanow/dermanow/internal/events"
	"github.com/dermanow/dermanow/internal/identity"
	"github.com/dermanow/dermanow/internal/metrics"
)

const producerName = "dermanow-api"

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=order
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error)

	// ReplaceItems swaps the line items of a pending order. Returns
	// ErrConflict when the order is no longer pending.
	ReplaceItems(ctx context.Context, id uuid.UUID, items []LineItem, total int64) error

	// ApplyTransitions moves the order from steps[0].From to the last
	// step's To in one transaction and records every step. Returns
	// ErrConflict when the stored status is not steps[0].From.
	ApplyTransitions(ctx context.Context, id uuid.UUID, steps []Transition) error
	ListHistory(ctx context.Context, id uuid.UUID) ([]Transition, error)
}

// Publisher ships lifecycle events to the outside world.
type Publisher interface {
	Publish(ctx context.Context, key []byte, env events.Envelope) error
}

// Roles resolves the registered role of a wallet. It returns
// identity.ErrNoRole for unknown wallets.
type Roles interface {
	LookupRole(ctx context.Context, address string) (identity.Role, error)
}

type Service struct {
	repo      Repository
	publisher Publisher
	roles     Roles
	now       func() time.Time
}

// NewService wires the order service. roles may be nil only for callers
// that never create orders.
func NewService(repo Repository, publisher Publisher, roles Roles) *Service {
	if publisher == nil {
		publisher = events.Discard{}
	}

	return &Service{repo: repo, publisher: publisher, roles: roles, now: time.Now}
}

type CreateParams struct {
	Items          []LineItem
	CharityAddress string
	VendorAddress  string
	FundSource     string
}

type ListFilter struct {
	Party     string
	Status    *Status
	CreatedBy *identity.Role
}

func (s *Service) Create(ctx context.Context, actor Actor, params CreateParams) (*Order, error) {
	if err := ValidateItems(params.Items); err != nil {
		return nil, err
	}

	charity, err := identity.NormalizeAddress(params.CharityAddress)
	if err != nil {
		return nil, errors.Join(ErrInvalidOrder, fmt.Errorf("charity address: %w", err))
	}

	vendor, err := identity.NormalizeAddress(params.VendorAddress)
	if err != nil {
		return nil, errors.Join(ErrInvalidOrder, fmt.Errorf("vendor address: %w", err))
	}

	if charity == vendor {
		return nil, errors.Join(ErrInvalidOrder, errors.New("charity and vendor must differ"))
	}

	fund := strings.TrimSpace(params.FundSource)
	if fund == "" {
		return nil, errors.Join(ErrInvalidOrder, errors.New("fund source is required"))
	}

	o := &Order{
		Items:          cleanItems(params.Items),
		TotalPrice:     Total(params.Items),
		CharityAddress: charity,
		VendorAddress:  vendor,
		FundSource:     fund,
		Status:         StatusPending,
	}

	if actor.System {
		return nil, fmt.Errorf("%w: orders are created by a participant", ErrForbidden)
	}

	party, ok := o.PartyRole(actor.Address)
	if !ok || party != actor.Role {
		return nil, fmt.Errorf("%w: creator must be the order's charity or vendor", ErrForbidden)
	}

	o.CreatedBy = party

	counterparty, side := o.VendorAddress, identity.RoleVendor
	if party == identity.RoleVendor {
		counterparty, side = o.CharityAddress, identity.RoleCharity
	}

	if err := s.checkCounterparty(ctx, counterparty, side); err != nil {
		return nil, err
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	metrics.OrdersCreated.WithLabelValues(string(o.CreatedBy)).Inc()
	s.publish(ctx, o, "order.created", Transition{OrderID: o.ID, To: StatusPending, Actor: actor.Address, At: s.now()})

	return o, nil
}

// checkCounterparty requires the other side of a new order to be a
// registered wallet holding the role of that side.
func (s *Service) checkCounterparty(ctx context.Context, address string, side identity.Role) error {
	if s.roles == nil {
		return errors.New("order service has no role lookup")
	}

	role, err := s.roles.LookupRole(ctx, address)
	switch {
	case errors.Is(err, identity.ErrNoRole):
		return errors.Join(ErrInvalidOrder, fmt.Errorf("%s %s is not registered", side, address))
	case err != nil:
		return fmt.Errorf("checking %s: %w", side, err)
	case role != side:
		return errors.Join(ErrInvalidOrder, fmt.Errorf("%s is registered as %s, not %s", address, role, side))
	}

	return nil
}

// Get returns the order when the actor may see it.
func (s *Service) Get(ctx context.Context, id uuid.UUID, actor Actor) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.System && !o.IsParty(actor.Address) {
		return nil, fmt.Errorf("%w: not a party to this order", ErrForbidden)
	}

	return o, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	return s.repo.ListOrders(ctx, filter)
}

func (s *Service) History(ctx context.Context, id uuid.UUID, actor Actor) ([]Transition, error) {
	if _, err := s.Get(ctx, id, actor); err != nil {
		return nil, err
	}

	return s.repo.ListHistory(ctx, id)
}

// UpdateItems replaces the items while the order is pending. Only the
// creating side may edit.
func (s *Service) UpdateItems(ctx context.Context, id uuid.UUID, actor Actor, items []LineItem) (*Order, error) {
	o, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if party, _ := o.PartyRole(actor.Address); party != o.CreatedBy || party != actor.Role {
		return nil, fmt.Errorf("%w: only the creator can edit items", ErrForbidden)
	}

	if o.Status != StatusPending {
		return nil, ErrNotEditable
	}

	if err := ValidateItems(items); err != nil {
		return nil, err
	}

	items = cleanItems(items)
	total := Total(items)

	if err := s.repo.ReplaceItems(ctx, id, items, total); err != nil {
		return nil, err
	}

	o.Items = items
	o.TotalPrice = total

	return o, nil
}

// Approve accepts a pending order; payment is held right away, so the
// order ends up in payment_held.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, actor Actor) (*Order, error) {
	return s.perform(ctx, id, actor, ActionApprove)
}

func (s *Service) Reject(ctx context.Context, id uuid.UUID, actor Actor) (*Order, error) {
	return s.perform(ctx, id, actor, ActionReject)
}

func (s *Service) MarkShipped(ctx context.Context, id uuid.UUID, actor Actor) (*Order, error) {
	return s.perform(ctx, id, actor, ActionMarkShipped)
}

func (s *Service) ConfirmDelivery(ctx context.Context, id uuid.UUID, actor Actor) (*Order, error) {
	return s.perform(ctx, id, actor, ActionConfirmDelivery)
}

// ReleasePayment completes a delivered order. Called by settlement.
func (s *Service) ReleasePayment(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.perform(ctx, id, SystemActor, ActionReleasePayment)
}

// Perform applies any action by name. Used by the HTTP layer.
func (s *Service) Perform(ctx context.Context, id uuid.UUID, actor Actor, a Action) (*Order, error) {
	return s.perform(ctx, id, actor, a)
}

func (s *Service) perform(ctx context.Context, id uuid.UUID, actor Actor, a Action) (*Order, error) {
	o, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	steps, err := plan(o, actor, a)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range steps {
		steps[i].At = now
	}

	if err := s.repo.ApplyTransitions(ctx, id, steps); err != nil {
		return nil, err
	}

	o.Status = steps[len(steps)-1].To
	o.UpdatedAt = &now

	for _, st := range steps {
		metrics.OrderTransitions.WithLabelValues(string(st.Action), string(st.To)).Inc()
		s.publish(ctx, o, "order."+string(st.To), st)
	}

	return o, nil
}

// TransitionPayload is the body of every order lifecycle event.
type TransitionPayload struct {
	OrderID        string `json:"order_id"`
	From           Status `json:"from,omitempty"`
	To             Status `json:"to"`
	Action         Action `json:"action,omitempty"`
	Actor          string `json:"actor,omitempty"`
	TotalPrice     int64  `json:"total_price"`
	FundSource     string `json:"fund_source"`
	CharityAddress string `json:"charity_address"`
	VendorAddress  string `json:"vendor_address"`
}

func (s *Service) publish(ctx context.Context, o *Order, eventType string, t Transition) {
	env, err := events.New(eventType, producerName, o.ID.String(), TransitionPayload{
		OrderID:        o.ID.String(),
		From:           t.From,
		To:             t.To,
		Action:         t.Action,
		Actor:          t.Actor,
		TotalPrice:     o.TotalPrice,
		FundSource:     o.FundSource,
		CharityAddress: o.CharityAddress,
		VendorAddress:  o.VendorAddress,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, []byte(o.ID.String()), env)
	}

	if err != nil {
		metrics.EventsPublishFailed.Inc()
		slog.Error("failed to publish order event", "order_id", o.ID, "event_type", eventType, "error", err)
	}
}

func cleanItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		out[i] = it
	}

	return out
}
