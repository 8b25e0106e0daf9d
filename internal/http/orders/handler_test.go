package orders_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dermanow/dermanow/internal/auth"
	mw "github.com/dermanow/dermanow/internal/http/middleware"
	"github.com/dermanow/dermanow/internal/http/orders"
	"github.com/dermanow/dermanow/internal/identity"
	"github.com/dermanow/dermanow/internal/order"
)

const (
	charityAddr = "0xc0000000000000000000000000000000000000c1"
	vendorAddr  = "0xd0000000000000000000000000000000000000d1"
)

func pendingOrder(id uuid.UUID) *order.Order {
	return &order.Order{
		ID:             id,
		Items:          []order.LineItem{{Name: "Rice 10kg", Quantity: 3, UnitPrice: 2550}},
		TotalPrice:     7650,
		CharityAddress: charityAddr,
		VendorAddress:  vendorAddr,
		FundSource:     "Flood relief 2025",
		CreatedBy:      identity.RoleVendor,
		Status:         order.StatusPending,
		CreatedAt:      time.Now(),
	}
}

func serve(h http.Handler, method, target, address string, role identity.Role, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(mw.WithClaims(req.Context(), &auth.Claims{Address: address, Role: role}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

// registered stands in for the wallet directory.
type registered map[string]identity.Role

func (d registered) LookupRole(_ context.Context, address string) (identity.Role, error) {
	if role, ok := d[address]; ok {
		return role, nil
	}

	return identity.RoleNone, identity.ErrNoRole
}

func newRouter(repo order.Repository) http.Handler {
	roles := registered{charityAddr: identity.RoleCharity, vendorAddr: identity.RoleVendor}

	r := chi.NewRouter()
	orders.NewHandler(order.NewService(repo, nil, roles)).Routes(r)

	return r
}

func TestHandler_Perform(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name       string
		path       string
		address    string
		role       identity.Role
		setupMock  func(repo *order.MockRepository)
		wantStatus int
		wantOrder  order.Status
	}

	tests := []testCase{
		{
			name:    "CharityApprovesVendorOrder",
			path:    "/" + id.String() + "/approve",
			address: charityAddr,
			role:    identity.RoleCharity,
			setupMock: func(repo *order.MockRepository) {
				repo.EXPECT().GetOrder(gomock.Any(), id).Return(pendingOrder(id), nil)
				repo.EXPECT().ApplyTransitions(gomock.Any(), id, gomock.Len(2)).Return(nil)
			},
			wantStatus: http.StatusOK,
			wantOrder:  order.StatusPaymentHeld,
		},
		{
			name:    "CreatorCannotApprove",
			path:    "/" + id.String() + "/approve",
			address: vendorAddr,
			role:    identity.RoleVendor,
			setupMock: func(repo *order.MockRepository) {
				repo.EXPECT().GetOrder(gomock.Any(), id).Return(pendingOrder(id), nil)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:    "ShipBeforeApproval",
			path:    "/" + id.String() + "/ship",
			address: vendorAddr,
			role:    identity.RoleVendor,
			setupMock: func(repo *order.MockRepository) {
				repo.EXPECT().GetOrder(gomock.Any(), id).Return(pendingOrder(id), nil)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:    "ConcurrentChange",
			path:    "/" + id.String() + "/reject",
			address: charityAddr,
			role:    identity.RoleCharity,
			setupMock: func(repo *order.MockRepository) {
				repo.EXPECT().GetOrder(gomock.Any(), id).Return(pendingOrder(id), nil)
				repo.EXPECT().ApplyTransitions(gomock.Any(), id, gomock.Len(1)).Return(order.ErrConflict)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:    "UnknownOrder",
			path:    "/" + id.String() + "/approve",
			address: charityAddr,
			role:    identity.RoleCharity,
			setupMock: func(repo *order.MockRepository) {
				repo.EXPECT().GetOrder(gomock.Any(), id).Return(nil, order.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "UnknownAction",
			path:       "/" + id.String() + "/refund",
			address:    charityAddr,
			role:       identity.RoleCharity,
			setupMock:  func(_ *order.MockRepository) {},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "BadID",
			path:       "/not-a-uuid/approve",
			address:    charityAddr,
			role:       identity.RoleCharity,
			setupMock:  func(_ *order.MockRepository) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := order.NewMockRepository(ctrl)
			tt.setupMock(repo)

			rec := serve(newRouter(repo), http.MethodPost, tt.path, tt.address, tt.role, "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantOrder == "" {
				return
			}

			var got struct {
				Status           order.Status   `json:"status"`
				AvailableActions []order.Action `json:"available_actions"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantOrder, got.Status)
			assert.Empty(t, got.AvailableActions)
		})
	}
}

func TestHandler_Create_DefaultsOwnAddress(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := order.NewMockRepository(ctrl)
	repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o *order.Order) error {
			assert.Equal(t, vendorAddr, o.VendorAddress)
			assert.Equal(t, int64(7650), o.TotalPrice)
			o.ID = uuid.New()
			return nil
		})

	body := `{"charity_address":"` + charityAddr + `","fund_source":"Flood relief 2025",
		"items":[{"name":"Rice 10kg","quantity":3,"unit_price":"25.50"}]}`

	rec := serve(newRouter(repo), http.MethodPost, "/", vendorAddr, identity.RoleVendor, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got struct {
		TotalPrice string `json:"total_price"`
		Status     string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "76.5", got.TotalPrice)
	assert.Equal(t, "pending", got.Status)
}

func TestHandler_Create_UnregisteredCounterparty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	body := `{"vendor_address":"0xe0000000000000000000000000000000000000e1","fund_source":"Flood relief 2025",
		"items":[{"name":"Rice 10kg","quantity":3,"unit_price":"25.50"}]}`

	rec := serve(newRouter(order.NewMockRepository(ctrl)), http.MethodPost, "/", charityAddr, identity.RoleCharity, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestHandler_List_RejectsUnknownStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rec := serve(newRouter(order.NewMockRepository(ctrl)), http.MethodGet, "/?status=lost", charityAddr, identity.RoleCharity, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Create_RejectsOutOfRangePrice(t *testing.T) {
	prices := map[string]string{
		"WrapsToOneCent": "184467440737095516.17",
		"JustPastInt64":  "92233720368547758.08",
		"Negative":       "-0.01",
	}

	for name, price := range prices {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// No repository calls are expected.
			repo := order.NewMockRepository(ctrl)

			body := `{"charity_address":"` + charityAddr + `","fund_source":"Flood relief 2025",
				"items":[{"name":"Rice 10kg","quantity":1,"unit_price":"` + price + `"}]}`

			rec := serve(newRouter(repo), http.MethodPost, "/", vendorAddr, identity.RoleVendor, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}
