package order

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dermanow/dermanow/internal/identity"
)

// Status represents the lifecycle state of a purchase order.
type Status string

const (
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusPaymentHeld Status = "payment_held"
	StatusShipped     Status = "shipped"
	StatusDelivered   Status = "delivered"
	StatusCompleted   Status = "completed"
	StatusRejected    Status = "rejected"
)

// sequence is the forward path; rejected branches off pending.
var sequence = []Status{
	StatusPending,
	StatusApproved,
	StatusPaymentHeld,
	StatusShipped,
	StatusDelivered,
	StatusCompleted,
}

// Rank orders statuses along the lifecycle. Rejected ranks right after
// pending so that every legal transition strictly increases rank.
func (s Status) Rank() int {
	if s == StatusRejected {
		return 1
	}

	for i, st := range sequence {
		if st == s {
			return i
		}
	}

	return -1
}

func (s Status) Valid() bool { return s.Rank() >= 0 }

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

var (
	ErrNotFound          = errors.New("purchase order not found")
	ErrInvalidOrder      = errors.New("invalid purchase order")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("action not allowed for this actor")
	ErrConflict          = errors.New("purchase order changed concurrently")
	ErrNotEditable       = errors.New("purchase order can no longer be edited")
)

// LineItem is one ordered good. UnitPrice is in cents.
type LineItem struct {
	Name      string
	Quantity  int64
	UnitPrice int64
}

func (i LineItem) Subtotal() int64 { return i.Quantity * i.UnitPrice }

// Order is a purchase order placed between a charity and a vendor.
type Order struct {
	ID             uuid.UUID
	Items          []LineItem
	TotalPrice     int64 // cents, always Total(Items)
	CharityAddress string
	VendorAddress  string
	FundSource     string
	CreatedBy      identity.Role
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// Transition is one recorded status change.
type Transition struct {
	OrderID uuid.UUID
	From    Status
	To      Status
	Action  Action
	Actor   string
	At      time.Time
}

// Total sums quantity × unit price over the items.
func Total(items []LineItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Subtotal()
	}

	return total
}

const maxItems = 200

// ValidateItems checks names, quantities and prices, and that the total
// cannot overflow.
func ValidateItems(items []LineItem) error {
	if len(items) == 0 {
		return errors.Join(ErrInvalidOrder, errors.New("at least one line item is required"))
	}

	if len(items) > maxItems {
		return errors.Join(ErrInvalidOrder, errors.New("too many line items"))
	}

	var total int64

	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			return errors.Join(ErrInvalidOrder, errors.New("line item name is required"))
		}

		if it.Quantity <= 0 {
			return errors.Join(ErrInvalidOrder, errors.New("line item quantity must be positive"))
		}

		if it.UnitPrice < 0 {
			return errors.Join(ErrInvalidOrder, errors.New("line item price cannot be negative"))
		}

		if it.UnitPrice != 0 && it.Quantity > math.MaxInt64/it.UnitPrice {
			return errors.Join(ErrInvalidOrder, errors.New("line item subtotal overflows"))
		}

		sub := it.Subtotal()
		if total > math.MaxInt64-sub {
			return errors.Join(ErrInvalidOrder, errors.New("order total overflows"))
		}

		total += sub
	}

	return nil
}

// PartyRole reports which side of the order the address is on.
func (o *Order) PartyRole(address string) (identity.Role, bool) {
	switch address {
	case o.CharityAddress:
		return identity.RoleCharity, true
	case o.VendorAddress:
		return identity.RoleVendor, true
	}

	return identity.RoleNone, false
}

// Receiver is the side that approves or rejects: the party that did not
// create the order.
func (o *Order) Receiver() identity.Role {
	if o.CreatedBy == identity.RoleVendor {
		return identity.RoleCharity
	}

	return identity.RoleVendor
}

func (o *Order) IsParty(address string) bool {
	_, ok := o.PartyRole(address)
	return ok
}
