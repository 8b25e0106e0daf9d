package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dermanow/dermanow/internal/auth"
	"github.com/dermanow/dermanow/internal/http/campaigns"
	"github.com/dermanow/dermanow/internal/http/catalog"
	"github.com/dermanow/dermanow/internal/http/chat"
	"github.com/dermanow/dermanow/internal/http/importcsv"
	mw "github.com/dermanow/dermanow/internal/http/middleware"
	"github.com/dermanow/dermanow/internal/http/orders"
	"github.com/dermanow/dermanow/internal/http/reports"
	"github.com/dermanow/dermanow/internal/http/session"
	"github.com/dermanow/dermanow/internal/http/users"
	"github.com/dermanow/dermanow/internal/identity"
	"github.com/dermanow/dermanow/internal/metrics"
)

type Handlers struct {
	Session   *session.Handler
	Users     *users.Handler
	Orders    *orders.Handler
	Chat      *chat.Handler
	Import    *importcsv.Handler
	Campaigns *campaigns.Handler
	Catalog   *catalog.Handler
	Reports   *reports.Handler
}

type Options struct {
	AllowedOrigins []string
	Tokens         *auth.TokenManager
}

func New(opts Options, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(mw.HTTPMetrics)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Authenticate(opts.Tokens))

		h.Session.Routes(r)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireSession)

			r.Route("/users", h.Users.Routes)

			r.Route("/orders", func(r chi.Router) {
				r.Use(mw.RequireRole(identity.RoleCharity, identity.RoleVendor))
				r.Route("/import", h.Import.Routes)
				h.Orders.Routes(r)
				h.Chat.Routes(r)
			})

			h.Campaigns.Routes(r)

			r.Route("/catalog", func(r chi.Router) {
				r.Use(mw.RequireRole(identity.RoleCharity, identity.RoleVendor))
				h.Catalog.Routes(r)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(mw.RequireRole(identity.RoleCharity))
				h.Reports.Routes(r)
			})
		})
	})

	return router
}
