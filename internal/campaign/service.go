package campaign

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dermanow/dermanow/internal/identity"
	"github.com/dermanow/dermanow/internal/metrics"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=campaign
type Repository interface {
	CreateOrganization(ctx context.Context, org *Organization) error
	GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error)
	ListOrganizations(ctx context.Context, owner string) ([]*Organization, error)

	CreateCampaign(ctx context.Context, c *Campaign) error
	GetCampaign(ctx context.Context, id uuid.UUID) (*Campaign, error)
	ListCampaigns(ctx context.Context, filter CampaignFilter) ([]*Campaign, error)

	// AddDonation inserts the donation and bumps the campaign total in one
	// transaction. Returns ErrCampaignClosed when the deadline is not
	// after d.CreatedAt.
	AddDonation(ctx context.Context, d *Donation) error
	ListDonations(ctx context.Context, filter DonationFilter) ([]*Donation, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CampaignFilter struct {
	OrganizationID *uuid.UUID
	Owner          string
	ActiveAt       *time.Time
}

type DonationFilter struct {
	CampaignID *uuid.UUID
	Donor      string
}

type OrganizationParams struct {
	Name        string
	Description string
}

type CampaignParams struct {
	OrganizationID uuid.UUID
	Title          string
	Description    string
	Goal           int64
	Deadline       time.Time
}

func requireRole(caller identity.User, role identity.Role) error {
	if caller.Role != role {
		return fmt.Errorf("%w: requires the %s role", ErrForbidden, role)
	}

	return nil
}

func (s *Service) CreateOrganization(ctx context.Context, caller identity.User, params OrganizationParams) (*Organization, error) {
	if err := requireRole(caller, identity.RoleCharity); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: organization name is required", ErrInvalid)
	}

	org := &Organization{
		Name:         name,
		Description:  strings.TrimSpace(params.Description),
		OwnerAddress: caller.Address,
	}

	if err := s.repo.CreateOrganization(ctx, org); err != nil {
		return nil, err
	}

	return org, nil
}

// ListOrganizations returns all organizations, or only the owner's when
// owner is set.
func (s *Service) ListOrganizations(ctx context.Context, owner string) ([]*Organization, error) {
	return s.repo.ListOrganizations(ctx, owner)
}

func (s *Service) CreateCampaign(ctx context.Context, caller identity.User, params CampaignParams) (*Campaign, error) {
	if err := requireRole(caller, identity.RoleCharity); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: campaign title is required", ErrInvalid)
	}

	if params.Goal <= 0 {
		return nil, fmt.Errorf("%w: goal must be positive", ErrInvalid)
	}

	if !params.Deadline.After(s.now()) {
		return nil, fmt.Errorf("%w: deadline must be in the future", ErrInvalid)
	}

	org, err := s.repo.GetOrganization(ctx, params.OrganizationID)
	if err != nil {
		return nil, err
	}

	if org.OwnerAddress != caller.Address {
		return nil, fmt.Errorf("%w: organization belongs to another charity", ErrForbidden)
	}

	c := &Campaign{
		OrganizationID: org.ID,
		Title:          title,
		Description:    strings.TrimSpace(params.Description),
		Goal:           params.Goal,
		Deadline:       params.Deadline,
	}

	if err := s.repo.CreateCampaign(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) GetCampaign(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	return s.repo.GetCampaign(ctx, id)
}

// ListCampaigns lists campaigns; activeOnly drops those past their deadline.
func (s *Service) ListCampaigns(ctx context.Context, filter CampaignFilter, activeOnly bool) ([]*Campaign, error) {
	if activeOnly {
		now := s.now()
		filter.ActiveAt = &now
	}

	return s.repo.ListCampaigns(ctx, filter)
}

const maxMessage = 500

func (s *Service) Donate(ctx context.Context, caller identity.User, campaignID uuid.UUID, amount int64, message string) (*Donation, error) {
	if err := requireRole(caller, identity.RoleDonor); err != nil {
		return nil, err
	}

	if amount <= 0 {
		return nil, fmt.Errorf("%w: donation amount must be positive", ErrInvalid)
	}

	message = strings.TrimSpace(message)
	if len(message) > maxMessage {
		return nil, fmt.Errorf("%w: message is too long", ErrInvalid)
	}

	c, err := s.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !c.Open(now) {
		return nil, ErrCampaignClosed
	}

	d := &Donation{
		CampaignID:   c.ID,
		DonorAddress: caller.Address,
		Amount:       amount,
		Message:      message,
		CreatedAt:    now,
	}

	if err := s.repo.AddDonation(ctx, d); err != nil {
		return nil, err
	}

	metrics.DonationsTotal.Inc()
	metrics.DonatedCents.Add(float64(amount))

	return d, nil
}

func (s *Service) ListDonations(ctx context.Context, filter DonationFilter) ([]*Donation, error) {
	return s.repo.ListDonations(ctx, filter)
}
