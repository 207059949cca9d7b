package transaction

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cardcycle/internal/currency"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/httpx"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
	loc *time.Location
}

// NewHandler reads query dates in loc; nil means the process zone.
func NewHandler(svc *transaction.Service, loc *time.Location) *Handler {
	return &Handler{svc: svc, loc: loc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}", h.update)
}

type createTransactionRequest struct {
	CardID      *uuid.UUID       `json:"card_id,omitempty"`
	CategoryID  *uuid.UUID       `json:"category_id,omitempty"`
	Type        transaction.Type `json:"type" validate:"required,oneof=income expense"`
	Amount      decimal.Decimal  `json:"amount"`
	Currency    string           `json:"currency" validate:"omitempty,len=3,alpha"`
	Description string           `json:"description" validate:"required,max=255"`
	Date        time.Time        `json:"date" validate:"required"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, transaction.ErrNotFound):
		http.Error(w, "transaction not found", http.StatusNotFound)
	case errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, transaction.ErrInvalidType),
		errors.Is(err, transaction.ErrInvalidDate),
		errors.Is(err, currency.ErrInvalidCode),
		errors.Is(err, currency.ErrUnsupportedCurrency):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		httpx.Internal(w, r, "transaction request failed", err)
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	var req createTransactionRequest
	if err := httpx.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Currency == "" {
		req.Currency = currency.VND
	}

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		UserID:      userID,
		CardID:      req.CardID,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, ToResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	var (
		filter transaction.ListFilter
		err    error
	)

	if filter.CardID, err = httpx.QueryUUID(r, "card_id"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if filter.CategoryID, err = httpx.QueryUUID(r, "category_id"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if s := r.URL.Query().Get("type"); s != "" {
		typ := transaction.Type(s)
		if !typ.Valid() {
			http.Error(w, transaction.ErrInvalidType.Error(), http.StatusBadRequest)
			return
		}

		filter.Type = &typ
	}

	if filter.StartDate, filter.EndDate, err = httpx.QueryRange(r, h.loc); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	txs, err := h.svc.List(r.Context(), userID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, ToResponseList(txs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, ToResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updateTransactionRequest struct {
	CardID      *uuid.UUID        `json:"card_id,omitempty"`
	CategoryID  *uuid.UUID        `json:"category_id,omitempty"`
	Description *string           `json:"description,omitempty" validate:"omitempty,min=1,max=255"`
	Amount      *decimal.Decimal  `json:"amount,omitempty"`
	Currency    *string           `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Type        *transaction.Type `json:"type,omitempty" validate:"omitempty,oneof=income expense"`
	Date        *time.Time        `json:"date,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}

	var req updateTransactionRequest
	if err := httpx.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.CardID != nil {
		tx.CardID = req.CardID
	}

	if req.CategoryID != nil {
		tx.CategoryID = req.CategoryID
	}

	if req.Description != nil {
		tx.Description = *req.Description
	}

	if req.Amount != nil {
		tx.Amount = *req.Amount
	}

	if req.Currency != nil {
		tx.Currency = *req.Currency
	}

	if req.Type != nil {
		tx.Type = *req.Type
	}

	if req.Date != nil {
		tx.Date = *req.Date
	}

	if err := h.svc.Update(r.Context(), tx); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, ToResponse(tx))
}
