package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dermanow/dermanow/internal/catalog"
	"github.com/dermanow/dermanow/internal/http/httpx"
)

type Handler struct {
	svc *catalog.Service
}

func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/mappings", h.learn)
}

type suggestResponse struct {
	RawName       string `json:"raw_name"`
	CanonicalName string `json:"canonical_name"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("name")
	if raw == "" {
		http.Error(w, "name query parameter is required", http.StatusBadRequest)
		return
	}

	name, err := h.svc.Suggest(r.Context(), raw)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, suggestResponse{RawName: raw, CanonicalName: name})
}

type learnRequest struct {
	RawPattern    string `json:"raw_pattern"`
	CanonicalName string `json:"canonical_name"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if !httpx.Decode(w, r, &req) {
		return
	}

	if err := h.svc.Learn(r.Context(), req.RawPattern, req.CanonicalName); err != nil {
		httpx.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
