package chat

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dermanow/dermanow/internal/chat"
	"github.com/dermanow/dermanow/internal/http/httpx"
	"github.com/dermanow/dermanow/internal/http/orders"
)

type Handler struct {
	svc *chat.Service
}

func NewHandler(svc *chat.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts under /orders so messages hang off the order they belong to.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}/messages", h.list)
	r.With(middleware.AllowContentType("application/json")).Post("/{id}/messages", h.post)
}

type messageResponse struct {
	ID            uuid.UUID `json:"id"`
	OrderID       uuid.UUID `json:"order_id"`
	AuthorAddress string    `json:"author_address"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"created_at"`
}

type postRequest struct {
	Body string `json:"body"`
}

func toResponse(m *chat.Message) messageResponse {
	return messageResponse{
		ID:            m.ID,
		OrderID:       m.OrderID,
		AuthorAddress: m.AuthorAddress,
		Body:          m.Body,
		CreatedAt:     m.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, ok := orders.ParseID(w, r)
	if !ok {
		return
	}

	msgs, err := h.svc.List(r.Context(), id, orders.Actor(r))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, toResponse(m))
	}

	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	id, ok := orders.ParseID(w, r)
	if !ok {
		return
	}

	var req postRequest
	if !httpx.Decode(w, r, &req) {
		return
	}

	m, err := h.svc.Post(r.Context(), id, orders.Actor(r), req.Body)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(m))
}
