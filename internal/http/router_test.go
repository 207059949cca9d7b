package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/cardcycle/internal/auth"
	apihttp "github.com/MrJamesThe3rd/cardcycle/internal/http"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/budget"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/card"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/category"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/export"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/importcsv"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/rule"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/summary"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/transaction"
)

func newRouter(health func(context.Context) error) http.Handler {
	return apihttp.New(apihttp.Handlers{
		Cards:        card.NewHandler(nil, nil),
		Categories:   category.NewHandler(nil),
		Transactions: transaction.NewHandler(nil, nil),
		Budget:       budget.NewHandler(nil, nil),
		Summary:      summary.NewHandler(nil, nil),
		Import:       importcsv.NewHandler(nil, nil, nil, nil),
		Rules:        rule.NewHandler(nil),
		Export:       export.NewHandler(nil, nil),
	}, apihttp.Options{
		Authenticator:  auth.New("secret", "cardcycle"),
		AllowedOrigins: []string{"http://localhost:3000"},
		Health:         health,
	})
}

func TestRouter_Healthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(func(context.Context) error { return errors.New("db down") }).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_APIRequiresToken(t *testing.T) {
	router := newRouter(nil)

	for _, path := range []string{
		"/api/v1/cards/",
		"/api/v1/budget/status",
		"/api/v1/summary/net-worth",
		"/api/v1/export/",
	} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cards/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	newRouter(nil).ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
