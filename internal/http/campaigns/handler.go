package campaigns

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dermanow/dermanow/internal/campaign"
	"github.com/dermanow/dermanow/internal/http/httpx"
	mw "github.com/dermanow/dermanow/internal/http/middleware"
	"github.com/dermanow/dermanow/internal/identity"
	"github.com/dermanow/dermanow/internal/money"
)

type Handler struct {
	svc *campaign.Service
}

func NewHandler(svc *campaign.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts organizations, campaigns and donations. Writes are role
// gated here; reads are open to any signed-in wallet.
func (h *Handler) Routes(r chi.Router) {
	json := middleware.AllowContentType("application/json")

	r.Route("/organizations", func(r chi.Router) {
		r.Get("/", h.listOrganizations)
		r.With(json, mw.RequireRole(identity.RoleCharity)).Post("/", h.createOrganization)
	})

	r.Route("/campaigns", func(r chi.Router) {
		r.Get("/", h.listCampaigns)
		r.Get("/{id}", h.getCampaign)
		r.Get("/{id}/donations", h.listCampaignDonations)
		r.With(json, mw.RequireRole(identity.RoleCharity)).Post("/", h.createCampaign)
		r.With(json, mw.RequireRole(identity.RoleDonor)).Post("/{id}/donations", h.donate)
	})

	r.With(mw.RequireRole(identity.RoleDonor)).Get("/donations/me", h.myDonations)
}

func caller(r *http.Request) identity.User {
	claims, _ := mw.ClaimsFrom(r.Context())
	return identity.User{Address: claims.Address, Role: claims.Role}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

type organizationResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	OwnerAddress string    `json:"owner_address"`
	CreatedAt    time.Time `json:"created_at"`
}

type campaignResponse struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Goal           decimal.Decimal `json:"goal"`
	Raised         decimal.Decimal `json:"raised"`
	Progress       float64         `json:"progress"`
	Open           bool            `json:"open"`
	Deadline       time.Time       `json:"deadline"`
	CreatedAt      time.Time       `json:"created_at"`
}

type donationResponse struct {
	ID           uuid.UUID       `json:"id"`
	CampaignID   uuid.UUID       `json:"campaign_id"`
	DonorAddress string          `json:"donor_address"`
	Amount       decimal.Decimal `json:"amount"`
	Message      string          `json:"message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func toOrganization(o *campaign.Organization) organizationResponse {
	return organizationResponse{
		ID:           o.ID,
		Name:         o.Name,
		Description:  o.Description,
		OwnerAddress: o.OwnerAddress,
		CreatedAt:    o.CreatedAt,
	}
}

func toCampaign(c *campaign.Campaign, now time.Time) campaignResponse {
	return campaignResponse{
		ID:             c.ID,
		OrganizationID: c.OrganizationID,
		Title:          c.Title,
		Description:    c.Description,
		Goal:           httpx.Amount(c.Goal),
		Raised:         httpx.Amount(c.Raised),
		Progress:       c.Progress(),
		Open:           c.Open(now),
		Deadline:       c.Deadline,
		CreatedAt:      c.CreatedAt,
	}
}

func toDonations(ds []*campaign.Donation) []donationResponse {
	out := make([]donationResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, donationResponse{
			ID:           d.ID,
			CampaignID:   d.CampaignID,
			DonorAddress: d.DonorAddress,
			Amount:       httpx.Amount(d.Amount),
			Message:      d.Message,
			CreatedAt:    d.CreatedAt,
		})
	}

	return out
}

type createOrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) createOrganization(w http.ResponseWriter, r *http.Request) {
	var req createOrganizationRequest
	if !httpx.Decode(w, r, &req) {
		return
	}

	o, err := h.svc.CreateOrganization(r.Context(), caller(r), campaign.OrganizationParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toOrganization(o))
}

func (h *Handler) listOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.svc.ListOrganizations(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	resp := make([]organizationResponse, 0, len(orgs))
	for _, o := range orgs {
		resp = append(resp, toOrganization(o))
	}

	httpx.JSON(w, http.StatusOK, resp)
}

type createCampaignRequest struct {
	OrganizationID uuid.UUID       `json:"organization_id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Goal           decimal.Decimal `json:"goal"`
	Deadline       time.Time       `json:"deadline"`
}

func (h *Handler) createCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if !httpx.Decode(w, r, &req) {
		return
	}

	goal, err := money.Cents(req.Goal)
	if err != nil {
		httpx.Error(w, r, errors.Join(campaign.ErrInvalid, err))
		return
	}

	c, err := h.svc.CreateCampaign(r.Context(), caller(r), campaign.CampaignParams{
		OrganizationID: req.OrganizationID,
		Title:          req.Title,
		Description:    req.Description,
		Goal:           goal,
		Deadline:       req.Deadline,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toCampaign(c, time.Now()))
}

func (h *Handler) listCampaigns(w http.ResponseWriter, r *http.Request) {
	var filter campaign.CampaignFilter

	q := r.URL.Query()
	if s := q.Get("organization_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid organization_id", http.StatusBadRequest)
			return
		}

		filter.OrganizationID = &id
	}

	filter.Owner = q.Get("owner")

	var activeOnly bool
	if s := q.Get("active"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			http.Error(w, "invalid active flag", http.StatusBadRequest)
			return
		}

		activeOnly = v
	}

	cs, err := h.svc.ListCampaigns(r.Context(), filter, activeOnly)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	now := time.Now()

	resp := make([]campaignResponse, 0, len(cs))
	for _, c := range cs {
		resp = append(resp, toCampaign(c, now))
	}

	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	c, err := h.svc.GetCampaign(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toCampaign(c, time.Now()))
}

type donateRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Message string          `json:"message"`
}

func (h *Handler) donate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req donateRequest
	if !httpx.Decode(w, r, &req) {
		return
	}

	amount, err := money.Cents(req.Amount)
	if err != nil {
		httpx.Error(w, r, errors.Join(campaign.ErrInvalid, err))
		return
	}

	d, err := h.svc.Donate(r.Context(), caller(r), id, amount, req.Message)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toDonations([]*campaign.Donation{d})[0])
}

func (h *Handler) listCampaignDonations(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	ds, err := h.svc.ListDonations(r.Context(), campaign.DonationFilter{CampaignID: &id})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toDonations(ds))
}

func (h *Handler) myDonations(w http.ResponseWriter, r *http.Request) {
	ds, err := h.svc.ListDonations(r.Context(), campaign.DonationFilter{Donor: caller(r).Address})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toDonations(ds))
}
