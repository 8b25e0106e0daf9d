package campaigns_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/dermanow/dermanow/internal/auth"
	"github.com/dermanow/dermanow/internal/campaign"
	"github.com/dermanow/dermanow/internal/http/campaigns"
	mw "github.com/dermanow/dermanow/internal/http/middleware"
	"github.com/dermanow/dermanow/internal/identity"
)

const (
	charityAddr = "0xc0000000000000000000000000000000000000c1"
	donorAddr   = "0xa0000000000000000000000000000000000000a1"
)

func serve(h http.Handler, method, target, address string, role identity.Role, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(mw.WithClaims(req.Context(), &auth.Claims{Address: address, Role: role}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func newRouter(repo campaign.Repository) http.Handler {
	r := chi.NewRouter()
	campaigns.NewHandler(campaign.NewService(repo)).Routes(r)

	return r
}

func TestHandler_RejectsOutOfRangeAmounts(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		path    string
		address string
		role    identity.Role
		body    string
	}{
		{
			name:    "DonationWrapsToOneCent",
			path:    "/campaigns/" + id.String() + "/donations",
			address: donorAddr,
			role:    identity.RoleDonor,
			body:    `{"amount":"184467440737095516.17"}`,
		},
		{
			name:    "DonationJustPastInt64",
			path:    "/campaigns/" + id.String() + "/donations",
			address: donorAddr,
			role:    identity.RoleDonor,
			body:    `{"amount":"92233720368547758.08"}`,
		},
		{
			name:    "GoalWrapsNegative",
			path:    "/campaigns",
			address: charityAddr,
			role:    identity.RoleCharity,
			body: `{"organization_id":"` + uuid.NewString() + `","title":"Winter coats",
				"goal":"92233720368547758.08","deadline":"2099-01-01T00:00:00Z"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// The repository must never be reached.
			repo := campaign.NewMockRepository(ctrl)

			rec := serve(newRouter(repo), http.MethodPost, tt.path, tt.address, tt.role, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}
