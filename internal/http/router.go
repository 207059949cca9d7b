package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/cardcycle/internal/auth"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/budget"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/card"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/category"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/export"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/importcsv"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/rule"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/summary"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/transaction"
)

type Handlers struct {
	Cards        *card.Handler
	Categories   *category.Handler
	Transactions *transaction.Handler
	Budget       *budget.Handler
	Summary      *summary.Handler
	Import       *importcsv.Handler
	Rules        *rule.Handler
	Export       *export.Handler
}

type Options struct {
	Authenticator  *auth.Authenticator
	AllowedOrigins []string
	Timeout        time.Duration
	// Health is called by /healthz; nil always reports healthy.
	Health func(ctx context.Context) error
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Health != nil {
			if err := opts.Health(r.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}

		w.Write([]byte("ok"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(opts.Authenticator.Middleware)

		r.Route("/cards", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Cards.Routes(r)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Categories.Routes(r)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/budget", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Budget.Routes(r)
		})

		r.Route("/summary", h.Summary.Routes)
		r.Route("/import", h.Import.Routes)

		r.Route("/rules", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Rules.Routes(r)
		})

		r.Route("/export", h.Export.Routes)
	})

	return router
}
