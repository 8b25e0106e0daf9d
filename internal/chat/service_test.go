package chat_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dermanow/dermanow/internal/chat"
	"github.com/dermanow/dermanow/internal/identity"
	"github.com/dermanow/dermanow/internal/order"
)

var vendor = order.Actor{Address: "0xd0000000000000000000000000000000000000d1", Role: identity.RoleVendor}

func TestService_Post(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name      string
		body      string
		setupMock func(repo *chat.MockRepository, orders *chat.MockOrders)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			body: "  Shipment leaves Monday  ",
			setupMock: func(repo *chat.MockRepository, orders *chat.MockOrders) {
				orders.EXPECT().Get(gomock.Any(), id, vendor).Return(&order.Order{ID: id}, nil)
				repo.EXPECT().CreateMessage(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, m *chat.Message) error {
						assert.Equal(t, "Shipment leaves Monday", m.Body)
						return nil
					})
			},
		},
		{
			name:    "Blank",
			body:    "   ",
			wantErr: chat.ErrInvalidMessage,
		},
		{
			name:    "TooLong",
			body:    strings.Repeat("a", 2001),
			wantErr: chat.ErrInvalidMessage,
		},
		{
			name: "NotAParty",
			body: "hello",
			setupMock: func(_ *chat.MockRepository, orders *chat.MockOrders) {
				orders.EXPECT().Get(gomock.Any(), id, vendor).Return(nil, order.ErrForbidden)
			},
			wantErr: order.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := chat.NewMockRepository(ctrl)
			orders := chat.NewMockOrders(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, orders)
			}

			m, err := chat.NewService(repo, orders).Post(context.Background(), id, vendor, tt.body)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, vendor.Address, m.AuthorAddress)
		})
	}
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	repo := chat.NewMockRepository(ctrl)
	orders := chat.NewMockOrders(ctrl)

	want := []*chat.Message{{OrderID: id, Body: "ok"}}

	orders.EXPECT().Get(gomock.Any(), id, vendor).Return(&order.Order{ID: id}, nil)
	repo.EXPECT().ListMessages(gomock.Any(), id).Return(want, nil)

	got, err := chat.NewService(repo, orders).List(context.Background(), id, vendor)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
