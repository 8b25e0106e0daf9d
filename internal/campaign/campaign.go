package campaign

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalid        = errors.New("invalid campaign data")
	ErrForbidden      = errors.New("not allowed")
	ErrCampaignClosed = errors.New("campaign is closed for donations")
)

type Organization struct {
	ID           uuid.UUID
	Name         string
	Description  string
	OwnerAddress string
	CreatedAt    time.Time
}

// Campaign is a fundraising drive run by an organization. Goal and Raised
// are in cents.
type Campaign struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Title          string
	Description    string
	Goal           int64
	Raised         int64
	Deadline       time.Time
	CreatedAt      time.Time
}

// Open reports whether donations are still accepted at t.
func (c *Campaign) Open(t time.Time) bool { return t.Before(c.Deadline) }

// Progress is the raised share of the goal, capped at 1.
func (c *Campaign) Progress() float64 {
	if c.Goal <= 0 {
		return 0
	}

	p := float64(c.Raised) / float64(c.Goal)
	if p > 1 {
		return 1
	}

	return p
}

type Donation struct {
	ID           uuid.UUID
	CampaignID   uuid.UUID
	DonorAddress string
	Amount       int64
	Message      string
	CreatedAt    time.Time
}
