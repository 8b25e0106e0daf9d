// Package httpx holds response helpers shared by the API handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/dermanow/dermanow/internal/auth"
	"github.com/dermanow/dermanow/internal/campaign"
	"github.com/dermanow/dermanow/internal/catalog"
	"github.com/dermanow/dermanow/internal/chat"
	"github.com/dermanow/dermanow/internal/identity"
	"github.com/dermanow/dermanow/internal/importer"
	"github.com/dermanow/dermanow/internal/money"
	"github.com/dermanow/dermanow/internal/order"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Decode reads a JSON request body. It writes the 400 itself and reports
// whether the handler should continue.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}

	return true
}

var statusByErr = []struct {
	err    error
	status int
}{
	{order.ErrNotFound, http.StatusNotFound},
	{campaign.ErrNotFound, http.StatusNotFound},
	{identity.ErrNotFound, http.StatusNotFound},
	{order.ErrForbidden, http.StatusForbidden},
	{campaign.ErrForbidden, http.StatusForbidden},
	{auth.ErrInvalidToken, http.StatusUnauthorized},
	{order.ErrInvalidTransition, http.StatusConflict},
	{order.ErrConflict, http.StatusConflict},
	{order.ErrNotEditable, http.StatusConflict},
	{identity.ErrAlreadyRegistered, http.StatusConflict},
	{campaign.ErrCampaignClosed, http.StatusConflict},
	{order.ErrInvalidOrder, http.StatusBadRequest},
	{campaign.ErrInvalid, http.StatusBadRequest},
	{identity.ErrInvalidUser, http.StatusBadRequest},
	{chat.ErrInvalidMessage, http.StatusBadRequest},
	{catalog.ErrInvalidMapping, http.StatusBadRequest},
	{importer.ErrNoProfile, http.StatusBadRequest},
	{importer.ErrTooLarge, http.StatusRequestEntityTooLarge},
	{money.ErrOutOfRange, http.StatusBadRequest},
	{identity.ErrUnavailable, http.StatusServiceUnavailable},
}

// StatusFor maps a domain error to an HTTP status.
func StatusFor(err error) int {
	for _, e := range statusByErr {
		if errors.Is(err, e.err) {
			return e.status
		}
	}

	return http.StatusInternalServerError
}

// Error writes err with the matching status. Server side errors are
// logged and hidden from the client; a 503 asks it to retry.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)

		msg := "internal error"
		if status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "5")
			msg = "temporarily unavailable, retry shortly"
		}

		http.Error(w, msg, status)

		return
	}

	http.Error(w, err.Error(), status)
}

// Amount converts cents to a decimal amount for responses.
func Amount(cents int64) decimal.Decimal {
	return money.Amount(cents)
}
