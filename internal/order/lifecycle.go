package order

import (
	"fmt"

	"github.com/dermanow/dermanow/internal/identity"
)

// Action is something an actor does to a purchase order.
type Action string

const (
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionHoldPayment     Action = "hold_payment"
	ActionMarkShipped     Action = "mark_shipped"
	ActionConfirmDelivery Action = "confirm_delivery"
	ActionReleasePayment  Action = "release_payment"
)

type actorKind int

const (
	actorReceiver actorKind = iota
	actorVendor
	actorCharity
	actorSystem
)

type rule struct {
	next  Status
	actor actorKind
}

var transitions = map[Status]map[Action]rule{
	StatusPending: {
		ActionApprove: {next: StatusApproved, actor: actorReceiver},
		ActionReject:  {next: StatusRejected, actor: actorReceiver},
	},
	StatusApproved: {
		ActionHoldPayment: {next: StatusPaymentHeld, actor: actorSystem},
	},
	StatusPaymentHeld: {
		ActionMarkShipped: {next: StatusShipped, actor: actorVendor},
	},
	StatusShipped: {
		ActionConfirmDelivery: {next: StatusDelivered, actor: actorCharity},
	},
	StatusDelivered: {
		ActionReleasePayment: {next: StatusCompleted, actor: actorSystem},
	},
}

// userActions lists the actions a person can trigger, in display order.
var userActions = []Action{
	ActionApprove,
	ActionReject,
	ActionMarkShipped,
	ActionConfirmDelivery,
}

// autoAdvance maps a status reached by a user action to the system action
// that immediately follows it.
var autoAdvance = map[Status]Action{
	StatusApproved: ActionHoldPayment,
}

// Actor performs actions. System actors drive the implicit payment steps.
type Actor struct {
	Address string
	Role    identity.Role
	System  bool
}

// SystemActor is used by settlement and the approve auto-advance.
var SystemActor = Actor{System: true}

// Next returns the status reached by applying the action to from.
func Next(from Status, a Action) (Status, error) {
	r, ok := transitions[from][a]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s a %s order", ErrInvalidTransition, a, from)
	}

	return r.next, nil
}

// CanTransition reports whether some action moves from to to directly.
func CanTransition(from, to Status) bool {
	for _, r := range transitions[from] {
		if r.next == to {
			return true
		}
	}

	return false
}

// Authorize checks that the actor may apply the action to the order in
// its current status.
func Authorize(o *Order, actor Actor, a Action) error {
	r, ok := transitions[o.Status][a]
	if !ok {
		return fmt.Errorf("%w: cannot %s a %s order", ErrInvalidTransition, a, o.Status)
	}

	if r.actor == actorSystem {
		if !actor.System {
			return fmt.Errorf("%w: %s is performed by the system", ErrForbidden, a)
		}

		return nil
	}

	if actor.System {
		return fmt.Errorf("%w: %s needs a participant", ErrForbidden, a)
	}

	party, ok := o.PartyRole(actor.Address)
	if !ok || party != actor.Role {
		return fmt.Errorf("%w: not a party to this order", ErrForbidden)
	}

	var need identity.Role

	switch r.actor {
	case actorReceiver:
		need = o.Receiver()
	case actorVendor:
		need = identity.RoleVendor
	case actorCharity:
		need = identity.RoleCharity
	}

	if party != need {
		return fmt.Errorf("%w: only the %s can %s", ErrForbidden, need, a)
	}

	return nil
}

// AvailableActions returns the actions the actor can take right now.
func AvailableActions(o *Order, actor Actor) []Action {
	var out []Action

	for _, a := range userActions {
		if Authorize(o, actor, a) == nil {
			out = append(out, a)
		}
	}

	return out
}

// plan expands a user action into the transitions it causes, including
// any automatic follow-up.
func plan(o *Order, actor Actor, a Action) ([]Transition, error) {
	if err := Authorize(o, actor, a); err != nil {
		return nil, err
	}

	to, err := Next(o.Status, a)
	if err != nil {
		return nil, err
	}

	steps := []Transition{{OrderID: o.ID, From: o.Status, To: to, Action: a, Actor: actor.Address}}

	if follow, ok := autoAdvance[to]; ok {
		next, err := Next(to, follow)
		if err != nil {
			return nil, err
		}

		steps = append(steps, Transition{OrderID: o.ID, From: to, To: next, Action: follow})
	}

	return steps, nil
}
