package campaign_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dermanow/dermanow/internal/campaign"
	"github.com/dermanow/dermanow/internal/identity"
)

var (
	charity = identity.User{Address: "0xc0000000000000000000000000000000000000c1", Role: identity.RoleCharity}
	donor   = identity.User{Address: "0xa0000000000000000000000000000000000000a1", Role: identity.RoleDonor}
	vendor  = identity.User{Address: "0xd0000000000000000000000000000000000000d1", Role: identity.RoleVendor}
)

func TestService_CreateOrganization(t *testing.T) {
	t.Run("CharityCreates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := campaign.NewMockRepository(ctrl)
		repo.EXPECT().CreateOrganization(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, org *campaign.Organization) error {
				assert.Equal(t, "Yayasan Kasih", org.Name)
				assert.Equal(t, charity.Address, org.OwnerAddress)
				org.ID = uuid.New()
				return nil
			})

		org, err := campaign.NewService(repo).CreateOrganization(context.Background(), charity,
			campaign.OrganizationParams{Name: " Yayasan Kasih "})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, org.ID)
	})

	t.Run("VendorForbidden", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		_, err := campaign.NewService(campaign.NewMockRepository(ctrl)).
			CreateOrganization(context.Background(), vendor, campaign.OrganizationParams{Name: "Shop"})
		assert.ErrorIs(t, err, campaign.ErrForbidden)
	})
}

func TestService_CreateCampaign(t *testing.T) {
	orgID := uuid.New()
	future := time.Now().Add(30 * 24 * time.Hour)

	type testCase struct {
		name      string
		caller    identity.User
		params    campaign.CampaignParams
		setupMock func(m *campaign.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			caller: charity,
			params: campaign.CampaignParams{OrganizationID: orgID, Title: "Flood relief", Goal: 500000, Deadline: future},
			setupMock: func(m *campaign.MockRepository) {
				m.EXPECT().GetOrganization(gomock.Any(), orgID).
					Return(&campaign.Organization{ID: orgID, OwnerAddress: charity.Address}, nil)
				m.EXPECT().CreateCampaign(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:   "NotOwner",
			caller: identity.User{Address: "0xother", Role: identity.RoleCharity},
			params: campaign.CampaignParams{OrganizationID: orgID, Title: "Flood relief", Goal: 500000, Deadline: future},
			setupMock: func(m *campaign.MockRepository) {
				m.EXPECT().GetOrganization(gomock.Any(), orgID).
					Return(&campaign.Organization{ID: orgID, OwnerAddress: charity.Address}, nil)
			},
			wantErr: campaign.ErrForbidden,
		},
		{
			name:    "PastDeadline",
			caller:  charity,
			params:  campaign.CampaignParams{OrganizationID: orgID, Title: "Late", Goal: 100, Deadline: time.Now().Add(-time.Hour)},
			wantErr: campaign.ErrInvalid,
		},
		{
			name:    "ZeroGoal",
			caller:  charity,
			params:  campaign.CampaignParams{OrganizationID: orgID, Title: "Nothing", Deadline: future},
			wantErr: campaign.ErrInvalid,
		},
		{
			name:    "DonorForbidden",
			caller:  donor,
			params:  campaign.CampaignParams{OrganizationID: orgID, Title: "x", Goal: 1, Deadline: future},
			wantErr: campaign.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := campaign.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			_, err := campaign.NewService(repo).CreateCampaign(context.Background(), tt.caller, tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Donate(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name      string
		caller    identity.User
		amount    int64
		setupMock func(m *campaign.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			caller: donor,
			amount: 2500,
			setupMock: func(m *campaign.MockRepository) {
				m.EXPECT().GetCampaign(gomock.Any(), id).
					Return(&campaign.Campaign{ID: id, Deadline: time.Now().Add(time.Hour)}, nil)
				m.EXPECT().AddDonation(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, d *campaign.Donation) error {
						assert.Equal(t, int64(2500), d.Amount)
						assert.Equal(t, donor.Address, d.DonorAddress)
						d.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name:   "Closed",
			caller: donor,
			amount: 2500,
			setupMock: func(m *campaign.MockRepository) {
				m.EXPECT().GetCampaign(gomock.Any(), id).
					Return(&campaign.Campaign{ID: id, Deadline: time.Now().Add(-time.Hour)}, nil)
			},
			wantErr: campaign.ErrCampaignClosed,
		},
		{
			name:   "ClosedWhileDonating",
			caller: donor,
			amount: 100,
			setupMock: func(m *campaign.MockRepository) {
				m.EXPECT().GetCampaign(gomock.Any(), id).
					Return(&campaign.Campaign{ID: id, Deadline: time.Now().Add(time.Millisecond)}, nil)
				m.EXPECT().AddDonation(gomock.Any(), gomock.Any()).Return(campaign.ErrCampaignClosed)
			},
			wantErr: campaign.ErrCampaignClosed,
		},
		{
			name:    "NonPositive",
			caller:  donor,
			amount:  0,
			wantErr: campaign.ErrInvalid,
		},
		{
			name:    "CharityCannotDonate",
			caller:  charity,
			amount:  100,
			wantErr: campaign.ErrForbidden,
		},
		{
			name:   "UnknownCampaign",
			caller: donor,
			amount: 100,
			setupMock: func(m *campaign.MockRepository) {
				m.EXPECT().GetCampaign(gomock.Any(), id).Return(nil, campaign.ErrNotFound)
			},
			wantErr: campaign.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := campaign.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			d, err := campaign.NewService(repo).Donate(context.Background(), tt.caller, id, tt.amount, "semoga bermanfaat")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, d.ID)
		})
	}
}

func TestService_ListCampaigns_ActiveOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := campaign.NewMockRepository(ctrl)
	repo.EXPECT().ListCampaigns(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f campaign.CampaignFilter) ([]*campaign.Campaign, error) {
			require.NotNil(t, f.ActiveAt)
			return nil, nil
		})

	_, err := campaign.NewService(repo).ListCampaigns(context.Background(), campaign.CampaignFilter{}, true)
	assert.NoError(t, err)
}

func TestCampaign_Progress(t *testing.T) {
	assert.InDelta(t, 0.25, (&campaign.Campaign{Goal: 400, Raised: 100}).Progress(), 1e-9)
	assert.InDelta(t, 1.0, (&campaign.Campaign{Goal: 100, Raised: 250}).Progress(), 1e-9)
}
