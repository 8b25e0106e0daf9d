package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dermanow/dermanow/internal/http/httpx"
	mw "github.com/dermanow/dermanow/internal/http/middleware"
	"github.com/dermanow/dermanow/internal/identity"
	"github.com/dermanow/dermanow/internal/order"
)

// pathActions maps the URL verb to the lifecycle action.
var pathActions = map[string]order.Action{
	"approve": order.ActionApprove,
	"reject":  order.ActionReject,
	"ship":    order.ActionMarkShipped,
	"deliver": order.ActionConfirmDelivery,
}

type Handler struct {
	svc *order.Service
}

func NewHandler(svc *order.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/", h.create)
		r.Put("/{id}/items", h.updateItems)
		r.Post("/{id}/{action}", h.perform)
	})
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/history", h.history)
}

// Actor builds the order actor for the request's session.
func Actor(r *http.Request) order.Actor {
	claims, _ := mw.ClaimsFrom(r.Context())
	return order.Actor{Address: claims.Address, Role: claims.Role}
}

// ParseID reads the {id} URL parameter, writing a 400 when it is bad.
func ParseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

type createOrderRequest struct {
	CharityAddress string    `json:"charity_address"`
	VendorAddress  string    `json:"vendor_address"`
	FundSource     string    `json:"fund_source"`
	Items          []itemDTO `json:"items"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !httpx.Decode(w, r, &req) {
		return
	}

	actor := Actor(r)

	// The creator's own side defaults to the session wallet.
	switch actor.Role {
	case identity.RoleCharity:
		if req.CharityAddress == "" {
			req.CharityAddress = actor.Address
		}
	case identity.RoleVendor:
		if req.VendorAddress == "" {
			req.VendorAddress = actor.Address
		}
	}

	items, err := toItems(req.Items)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	o, err := h.svc.Create(r.Context(), actor, order.CreateParams{
		Items:          items,
		CharityAddress: req.CharityAddress,
		VendorAddress:  req.VendorAddress,
		FundSource:     req.FundSource,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(o, actor))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := Actor(r)
	filter := order.ListFilter{Party: actor.Address}

	if s := r.URL.Query().Get("status"); s != "" {
		st := order.Status(s)
		if !st.Valid() {
			http.Error(w, "unknown status", http.StatusBadRequest)
			return
		}

		filter.Status = new(st)
	}

	if s := r.URL.Query().Get("created_by"); s != "" {
		filter.CreatedBy = new(identity.Role(s))
	}

	orders, err := h.svc.List(r.Context(), filter)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponseList(orders, actor))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r)
	if !ok {
		return
	}

	actor := Actor(r)

	o, err := h.svc.Get(r.Context(), id, actor)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(o, actor))
}

type updateItemsRequest struct {
	Items []itemDTO `json:"items"`
}

func (h *Handler) updateItems(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r)
	if !ok {
		return
	}

	var req updateItemsRequest
	if !httpx.Decode(w, r, &req) {
		return
	}

	actor := Actor(r)

	items, err := toItems(req.Items)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	o, err := h.svc.UpdateItems(r.Context(), id, actor, items)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(o, actor))
}

func (h *Handler) perform(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r)
	if !ok {
		return
	}

	action, ok := pathActions[chi.URLParam(r, "action")]
	if !ok {
		http.Error(w, "unknown action", http.StatusNotFound)
		return
	}

	actor := Actor(r)

	o, err := h.svc.Perform(r.Context(), id, actor, action)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(o, actor))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r)
	if !ok {
		return
	}

	ts, err := h.svc.History(r.Context(), id, Actor(r))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toHistory(ts))
}
