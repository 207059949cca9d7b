package summary

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/http/httpx"
	"github.com/MrJamesThe3rd/cardcycle/internal/summary"
)

const (
	defaultTrendMonths = 6
	maxTrendMonths     = 36
)

type Handler struct {
	svc *summary.Service
	now func() time.Time
}

// NewHandler evaluates periods and query dates in loc; nil means the process zone.
func NewHandler(svc *summary.Service, loc *time.Location) *Handler {
	return &Handler{svc: svc, now: httpx.Clock(loc)}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/cards", h.cards)
	r.Get("/categories", h.categories)
	r.Get("/trend", h.trend)
	r.Get("/net-worth", h.netWorth)
}

type cardBalanceResponse struct {
	CardID      uuid.UUID `json:"card_id"`
	Name        string    `json:"name"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Spending    int64     `json:"spending"`
	CreditLimit int64     `json:"credit_limit"`
	Utilization float64   `json:"utilization"`
	DueDate     time.Time `json:"due_date"`
}

type categoryTotalResponse struct {
	CategoryID *uuid.UUID `json:"category_id"`
	Name       string     `json:"name"`
	Amount     int64      `json:"amount"`
	Share      float64    `json:"share"`
}

type monthResponse struct {
	Month   string `json:"month"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
	Net     int64  `json:"net"`
}

type netWorthResponse struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Net     int64 `json:"net"`
}

func (h *Handler) cards(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	balances, err := h.svc.CardBalances(r.Context(), userID, h.now())
	if err != nil {
		httpx.Internal(w, r, "failed to compute card balances", err)
		return
	}

	resp := make([]cardBalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = cardBalanceResponse{
			CardID:      b.Card.ID,
			Name:        b.Card.Name,
			PeriodStart: b.Period.Start,
			PeriodEnd:   b.Period.End,
			Spending:    b.Spending,
			CreditLimit: b.Card.CreditLimit,
			Utilization: b.Utilization,
			DueDate:     b.DueDate,
		}
	}

	httpx.JSON(w, http.StatusOK, resp)
}

// categories defaults to the current calendar month; end_date is inclusive.
func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	start, end, err := httpx.MonthOrRange(r, h.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	totals, err := h.svc.ByCategory(r.Context(), userID, start, end)
	if err != nil {
		if errors.Is(err, summary.ErrInvalidRange) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		httpx.Internal(w, r, "failed to group spending by category", err)

		return
	}

	resp := make([]categoryTotalResponse, len(totals))
	for i, t := range totals {
		resp[i] = categoryTotalResponse{CategoryID: t.CategoryID, Name: t.Name, Amount: t.Amount, Share: t.Share}
	}

	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) trend(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	months := defaultTrendMonths

	if s := r.URL.Query().Get("months"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxTrendMonths {
			http.Error(w, "months must be between 1 and 36", http.StatusBadRequest)
			return
		}

		months = n
	}

	trend, err := h.svc.MonthlyTrend(r.Context(), userID, h.now(), months)
	if err != nil {
		httpx.Internal(w, r, "failed to compute monthly trend", err)
		return
	}

	resp := make([]monthResponse, len(trend))
	for i, m := range trend {
		resp[i] = monthResponse{
			Month:   time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
			Income:  m.Income,
			Expense: m.Expense,
			Net:     m.Net,
		}
	}

	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) netWorth(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	nw, err := h.svc.NetWorth(r.Context(), userID)
	if err != nil {
		httpx.Internal(w, r, "failed to compute net worth", err)
		return
	}

	httpx.JSON(w, http.StatusOK, netWorthResponse{Income: nw.Income, Expense: nw.Expense, Net: nw.Net})
}
