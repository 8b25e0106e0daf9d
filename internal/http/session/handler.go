package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dermanow/dermanow/internal/access"
	"github.com/dermanow/dermanow/internal/auth"
	"github.com/dermanow/dermanow/internal/http/httpx"
	mw "github.com/dermanow/dermanow/internal/http/middleware"
	"github.com/dermanow/dermanow/internal/identity"
)

type Handler struct {
	users  *identity.Service
	tokens *auth.TokenManager
}

func NewHandler(users *identity.Service, tokens *auth.TokenManager) *Handler {
	return &Handler{users: users, tokens: tokens}
}

func (h *Handler) Routes(r chi.Router) {
	r.With(middleware.AllowContentType("application/json")).Post("/session", h.create)
	r.Get("/access", h.access)
}

type createSessionRequest struct {
	Address string `json:"address"`
}

// Response is returned whenever a session token is issued.
type Response struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Address   string        `json:"address"`
	Role      identity.Role `json:"role"`
	Redirect  string        `json:"redirect"`
}

// create exchanges a connected wallet address for a session token. A
// wallet without a role still gets a session so it can register. The
// address is taken as given: only a front end that has done the wallet
// connection may reach this route.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !httpx.Decode(w, r, &req) {
		return
	}

	addr, err := identity.NormalizeAddress(req.Address)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	role, err := h.users.LookupRole(r.Context(), addr)
	if err != nil && !errors.Is(err, identity.ErrNoRole) {
		httpx.Error(w, r, err)
		return
	}

	resp, err := Issue(h.tokens, addr, role)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, resp)
}

// Issue signs a token and computes where the client should land.
func Issue(tokens *auth.TokenManager, addr string, role identity.Role) (Response, error) {
	token, exp, err := tokens.Issue(addr, role)
	if err != nil {
		return Response{}, err
	}

	return Response{
		Token:     token,
		ExpiresAt: exp,
		Address:   addr,
		Role:      role,
		Redirect:  access.Decide(access.LoginPath, access.Session{Address: addr, Role: role}).Redirect,
	}, nil
}

func (h *Handler) access(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "path query parameter is required", http.StatusBadRequest)
		return
	}

	var s access.Session
	if claims, ok := mw.ClaimsFrom(r.Context()); ok {
		s = access.Session{Address: claims.Address, Role: claims.Role}
	}

	httpx.JSON(w, http.StatusOK, access.Decide(path, s))
}
