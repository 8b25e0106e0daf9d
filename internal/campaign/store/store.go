package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dermanow/dermanow/internal/campaign"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) CreateOrganization(ctx context.Context, org *campaign.Organization) error {
	query := `
		INSERT INTO organizations (name, description, owner_address, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, org.Name, org.Description, org.OwnerAddress).Scan(&org.ID, &org.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating organization: %w", err)
	}

	return nil
}

func scanOrganization(s scanner) (*campaign.Organization, error) {
	var org campaign.Organization
	if err := s.Scan(&org.ID, &org.Name, &org.Description, &org.OwnerAddress, &org.CreatedAt); err != nil {
		return nil, err
	}

	return &org, nil
}

func (s *Store) GetOrganization(ctx context.Context, id uuid.UUID) (*campaign.Organization, error) {
	query := `
		SELECT id, name, description, owner_address, created_at
		FROM organizations
		WHERE id = $1
	`

	org, err := scanOrganization(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, campaign.ErrNotFound
		}

		return nil, fmt.Errorf("getting organization: %w", err)
	}

	return org, nil
}

func (s *Store) ListOrganizations(ctx context.Context, owner string) ([]*campaign.Organization, error) {
	query := `
		SELECT id, name, description, owner_address, created_at
		FROM organizations
		WHERE ($1 = '' OR owner_address = $1)
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*campaign.Organization

	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning organization: %w", err)
		}

		orgs = append(orgs, org)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating organizations: %w", err)
	}

	return orgs, nil
}

const selectCampaignColumns = `
	c.id, c.organization_id, c.title, c.description, c.goal, c.raised, c.deadline, c.created_at
`

func scanCampaign(s scanner) (*campaign.Campaign, error) {
	var c campaign.Campaign
	if err := s.Scan(
		&c.ID, &c.OrganizationID, &c.Title, &c.Description, &c.Goal, &c.Raised, &c.Deadline, &c.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &c, nil
}

func (s *Store) CreateCampaign(ctx context.Context, c *campaign.Campaign) error {
	query := `
		INSERT INTO campaigns (organization_id, title, description, goal, raised, deadline, created_at)
		VALUES ($1, $2, $3, $4, 0, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.OrganizationID,
		c.Title,
		c.Description,
		c.Goal,
		c.Deadline,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating campaign: %w", err)
	}

	return nil
}

func (s *Store) GetCampaign(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	query := `SELECT ` + selectCampaignColumns + ` FROM campaigns c WHERE c.id = $1`

	c, err := scanCampaign(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, campaign.ErrNotFound
		}

		return nil, fmt.Errorf("getting campaign: %w", err)
	}

	return c, nil
}

func (s *Store) ListCampaigns(ctx context.Context, filter campaign.CampaignFilter) ([]*campaign.Campaign, error) {
	query := `SELECT ` + selectCampaignColumns + `
		FROM campaigns c
		JOIN organizations o ON o.id = c.organization_id
		WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.OrganizationID != nil {
		query += fmt.Sprintf(" AND c.organization_id = $%d", argIdx)

		args = append(args, *filter.OrganizationID)
		argIdx++
	}

	if filter.Owner != "" {
		query += fmt.Sprintf(" AND o.owner_address = $%d", argIdx)

		args = append(args, filter.Owner)
		argIdx++
	}

	if filter.ActiveAt != nil {
		query += fmt.Sprintf(" AND c.deadline > $%d", argIdx)

		args = append(args, *filter.ActiveAt)
		argIdx++
	}

	query += " ORDER BY c.deadline ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*campaign.Campaign

	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning campaign: %w", err)
		}

		campaigns = append(campaigns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating campaigns: %w", err)
	}

	return campaigns, nil
}

// AddDonation bumps raised only while the campaign is open, so a donation
// racing the deadline is rejected.
func (s *Store) AddDonation(ctx context.Context, d *campaign.Donation) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.ExecContext(ctx, `
		UPDATE campaigns
		SET raised = raised + $1
		WHERE id = $2 AND deadline > $3
	`, d.Amount, d.CampaignID, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("updating campaign total: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return campaign.ErrCampaignClosed
	}

	query := `
		INSERT INTO donations (campaign_id, donor_address, amount, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err = dbTx.QueryRowContext(ctx, query, d.CampaignID, d.DonorAddress, d.Amount, d.Message, d.CreatedAt).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("creating donation: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) ListDonations(ctx context.Context, filter campaign.DonationFilter) ([]*campaign.Donation, error) {
	query := `
		SELECT id, campaign_id, donor_address, amount, message, created_at
		FROM donations
		WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.CampaignID != nil {
		query += fmt.Sprintf(" AND campaign_id = $%d", argIdx)

		args = append(args, *filter.CampaignID)
		argIdx++
	}

	if filter.Donor != "" {
		query += fmt.Sprintf(" AND donor_address = $%d", argIdx)

		args = append(args, filter.Donor)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing donations: %w", err)
	}
	defer rows.Close()

	var donations []*campaign.Donation

	for rows.Next() {
		var d campaign.Donation
		if err := rows.Scan(&d.ID, &d.CampaignID, &d.DonorAddress, &d.Amount, &d.Message, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning donation: %w", err)
		}

		donations = append(donations, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating donations: %w", err)
	}

	return donations, nil
}
