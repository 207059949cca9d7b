package budget

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/budget"
	"github.com/MrJamesThe3rd/cardcycle/internal/card"
	"github.com/MrJamesThe3rd/cardcycle/internal/cycle"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/httpx"
)

type Handler struct {
	svc *budget.Service
	now func() time.Time
}

// NewHandler evaluates budget periods in loc; nil means the process zone.
func NewHandler(svc *budget.Service, loc *time.Location) *Handler {
	return &Handler{svc: svc, now: httpx.Clock(loc)}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.save)
	r.Get("/status", h.status)
}

type budgetRequest struct {
	Enabled         bool       `json:"enabled"`
	MonthlyAmount   int64      `json:"monthly_amount" validate:"min=0"`
	StatementCardID *uuid.UUID `json:"statement_card_id"`
}

type budgetResponse struct {
	Enabled         bool       `json:"enabled"`
	MonthlyAmount   int64      `json:"monthly_amount"`
	StatementCardID *uuid.UUID `json:"statement_card_id"`
	LastUpdated     *time.Time `json:"last_updated,omitempty"`
}

type periodResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type statusResponse struct {
	CurrentSpending int64          `json:"current_spending"`
	RemainingAmount int64          `json:"remaining_amount"`
	PercentageUsed  float64        `json:"percentage_used"`
	StatementPeriod periodResponse `json:"statement_period"`
	Status          cycle.Status   `json:"status"`
}

type viewResponse struct {
	Budget budgetResponse  `json:"budget"`
	Status *statusResponse `json:"status"`
}

func toBudgetResponse(b *budget.Budget) budgetResponse {
	resp := budgetResponse{
		Enabled:         b.Enabled,
		MonthlyAmount:   b.MonthlyAmount,
		StatementCardID: b.StatementCardID,
	}

	if !b.LastUpdated.IsZero() {
		resp.LastUpdated = new(b.LastUpdated)
	}

	return resp
}

func toStatusResponse(res *cycle.Result) *statusResponse {
	if res == nil {
		return nil
	}

	return &statusResponse{
		CurrentSpending: res.Spending,
		RemainingAmount: res.Remaining,
		PercentageUsed:  res.PercentageUsed,
		StatementPeriod: periodResponse{Start: res.Period.Start, End: res.Period.End},
		Status:          res.Status,
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	b, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		httpx.Internal(w, r, "failed to get budget", err)
		return
	}

	httpx.JSON(w, http.StatusOK, toBudgetResponse(b))
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	var req budgetRequest
	if err := httpx.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b := &budget.Budget{
		UserID:          userID,
		Enabled:         req.Enabled,
		MonthlyAmount:   req.MonthlyAmount,
		StatementCardID: req.StatementCardID,
	}

	if err := h.svc.Save(r.Context(), b); err != nil {
		switch {
		case errors.Is(err, budget.ErrInvalidAmount):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, card.ErrNotFound):
			http.Error(w, "statement card not found", http.StatusUnprocessableEntity)
		default:
			httpx.Internal(w, r, "failed to save budget", err)
		}

		return
	}

	httpx.JSON(w, http.StatusOK, toBudgetResponse(b))
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	view, err := h.svc.Status(r.Context(), userID, h.now())
	if err != nil {
		httpx.Internal(w, r, "failed to compute budget status", err)
		return
	}

	httpx.JSON(w, http.StatusOK, viewResponse{
		Budget: toBudgetResponse(view.Budget),
		Status: toStatusResponse(view.Status),
	})
}
