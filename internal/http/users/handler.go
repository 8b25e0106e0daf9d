package users

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dermanow/dermanow/internal/auth"
	"github.com/dermanow/dermanow/internal/http/httpx"
	mw "github.com/dermanow/dermanow/internal/http/middleware"
	"github.com/dermanow/dermanow/internal/http/session"
	"github.com/dermanow/dermanow/internal/identity"
)

type Handler struct {
	svc    *identity.Service
	tokens *auth.TokenManager
}

func NewHandler(svc *identity.Service, tokens *auth.TokenManager) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

func (h *Handler) Routes(r chi.Router) {
	r.With(middleware.AllowContentType("application/json")).Post("/", h.register)
	r.Get("/me", h.me)
}

type registerRequest struct {
	Role        identity.Role `json:"role"`
	DisplayName string        `json:"display_name"`
}

type userResponse struct {
	Address     string        `json:"address"`
	Role        identity.Role `json:"role"`
	DisplayName string        `json:"display_name"`
	CreatedAt   time.Time     `json:"created_at"`
}

type registerResponse struct {
	User    userResponse     `json:"user"`
	Session session.Response `json:"session"`
}

func toResponse(u *identity.User) userResponse {
	return userResponse{
		Address:     u.Address,
		Role:        u.Role,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// register gives the session's wallet a role and returns a fresh token
// carrying it.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	claims, _ := mw.ClaimsFrom(r.Context())

	var req registerRequest
	if !httpx.Decode(w, r, &req) {
		return
	}

	u, err := h.svc.Register(r.Context(), claims.Address, req.Role, req.DisplayName)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	sess, err := session.Issue(h.tokens, u.Address, u.Role)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, registerResponse{User: toResponse(u), Session: sess})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, _ := mw.ClaimsFrom(r.Context())

	u, err := h.svc.Get(r.Context(), claims.Address)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(u))
}
