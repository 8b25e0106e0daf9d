package reports

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dermanow/dermanow/internal/http/httpx"
	mw "github.com/dermanow/dermanow/internal/http/middleware"
	"github.com/dermanow/dermanow/internal/report"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/fund-usage", h.fundUsage)
}

func (h *Handler) fundUsage(w http.ResponseWriter, r *http.Request) {
	format := report.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = report.FormatText
	}

	claims, _ := mw.ClaimsFrom(r.Context())

	usage, err := h.svc.FundUsage(r.Context(), claims.Address)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	// Render into a buffer so an unknown format still gets a clean 400.
	var buf bytes.Buffer
	if err := report.Write(&buf, usage, format); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())

	if format == report.FormatCSV {
		w.Header().Set("Content-Disposition", `attachment; filename="fund-usage.csv"`)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write report", "error", err)
	}
}
