package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermanow/dermanow/internal/auth"
	mw "github.com/dermanow/dermanow/internal/http/middleware"
	"github.com/dermanow/dermanow/internal/identity"
)

const wallet = "0xc0000000000000000000000000000000000000c1"

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequireRole(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", "dermanow", time.Hour)

	charityToken, _, err := tokens.Issue(wallet, identity.RoleCharity)
	require.NoError(t, err)

	donorToken, _, err := tokens.Issue(wallet, identity.RoleDonor)
	require.NoError(t, err)

	handler := mw.Authenticate(tokens)(mw.RequireRole(identity.RoleCharity, identity.RoleVendor)(http.HandlerFunc(okHandler)))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "Anonymous", want: http.StatusUnauthorized},
		{name: "MalformedHeader", header: "Token abc", want: http.StatusUnauthorized},
		{name: "BadToken", header: "Bearer not-a-jwt", want: http.StatusUnauthorized},
		{name: "WrongRole", header: "Bearer " + donorToken, want: http.StatusForbidden},
		{name: "Allowed", header: "Bearer " + charityToken, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAuthenticate_PassesClaimsThrough(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", "dermanow", time.Hour)

	token, _, err := tokens.Issue(wallet, identity.RoleVendor)
	require.NoError(t, err)

	var got *auth.Claims

	handler := mw.Authenticate(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = mw.ClaimsFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, wallet, got.Address)
	assert.Equal(t, identity.RoleVendor, got.Role)
}

func TestRequireSession(t *testing.T) {
	handler := mw.RequireSession(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(mw.WithClaims(req.Context(), &auth.Claims{Address: wallet}))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
