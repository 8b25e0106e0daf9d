package httpx_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dermanow/dermanow/internal/campaign"
	"github.com/dermanow/dermanow/internal/http/httpx"
	"github.com/dermanow/dermanow/internal/identity"
	"github.com/dermanow/dermanow/internal/importer"
	"github.com/dermanow/dermanow/internal/money"
	"github.com/dermanow/dermanow/internal/order"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "WrappedForbidden", err: fmt.Errorf("%w: only the charity can approve", order.ErrForbidden), want: http.StatusForbidden},
		{name: "JoinedInvalid", err: errors.Join(order.ErrInvalidOrder, errors.New("fund source is required")), want: http.StatusBadRequest},
		{name: "ClosedCampaign", err: campaign.ErrCampaignClosed, want: http.StatusConflict},
		{name: "AmountOutOfRange", err: errors.Join(order.ErrInvalidOrder, money.ErrOutOfRange), want: http.StatusBadRequest},
		{name: "UploadTooLarge", err: importer.ErrTooLarge, want: http.StatusRequestEntityTooLarge},
		{name: "DirectoryDown", err: fmt.Errorf("%w: %w", identity.ErrUnavailable, errors.New("dial tcp")), want: http.StatusServiceUnavailable},
		{name: "Unknown", err: errors.New("connection reset"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httpx.StatusFor(tt.err))
		})
	}
}

func TestError_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestError_UnavailableAsksForRetry(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("%w: %w", identity.ErrUnavailable, errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	httpx.Error(rec, httptest.NewRequest(http.MethodPost, "/api/v1/session", nil), err)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestAmount(t *testing.T) {
	assert.Equal(t, "76.5", httpx.Amount(7650).String())
}
