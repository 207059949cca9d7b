package card

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/card"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/httpx"
)

type Handler struct {
	svc *card.Service
	now func() time.Time
}

// NewHandler evaluates statement periods in loc; nil means the process zone.
func NewHandler(svc *card.Service, loc *time.Location) *Handler {
	return &Handler{svc: svc, now: httpx.Clock(loc)}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createCardRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	LastFour     string `json:"last_four" validate:"omitempty,len=4,numeric"`
	StatementDay int    `json:"statement_day" validate:"min=1,max=31"`
	DueDay       int    `json:"due_day" validate:"min=1,max=31"`
	CreditLimit  int64  `json:"credit_limit" validate:"min=0"`
}

type updateCardRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	LastFour     *string `json:"last_four,omitempty" validate:"omitempty,len=4,numeric"`
	StatementDay *int    `json:"statement_day,omitempty" validate:"omitempty,min=1,max=31"`
	DueDay       *int    `json:"due_day,omitempty" validate:"omitempty,min=1,max=31"`
	CreditLimit  *int64  `json:"credit_limit,omitempty" validate:"omitempty,min=0"`
}

type periodResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type cardResponse struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	LastFour      string         `json:"last_four,omitempty"`
	StatementDay  int            `json:"statement_day"`
	DueDay        int            `json:"due_day"`
	CreditLimit   int64          `json:"credit_limit"`
	CurrentPeriod periodResponse `json:"current_period"`
	NextDueDate   time.Time      `json:"next_due_date"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
}

func (h *Handler) toResponse(c *card.Card) cardResponse {
	p := c.Period(h.now())

	return cardResponse{
		ID:            c.ID,
		Name:          c.Name,
		LastFour:      c.LastFour,
		StatementDay:  c.StatementDay,
		DueDay:        c.DueDay,
		CreditLimit:   c.CreditLimit,
		CurrentPeriod: periodResponse{Start: p.Start, End: p.End},
		NextDueDate:   c.DueDate(p),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, card.ErrNotFound):
		http.Error(w, "card not found", http.StatusNotFound)
	case errors.Is(err, card.ErrInvalidDay), errors.Is(err, card.ErrInvalidName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		httpx.Internal(w, r, "card request failed", err)
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	var req createCardRequest
	if err := httpx.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Create(r.Context(), userID, card.CreateParams{
		Name:         req.Name,
		LastFour:     req.LastFour,
		StatementDay: req.StatementDay,
		DueDay:       req.DueDay,
		CreditLimit:  req.CreditLimit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, h.toResponse(c))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	cards, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]cardResponse, len(cards))
	for i, c := range cards {
		resp[i] = h.toResponse(c)
	}

	httpx.JSON(w, http.StatusOK, resp)
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

	c, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, h.toResponse(c))
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

	var req updateCardRequest
	if err := httpx.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.Name != nil {
		c.Name = *req.Name
	}

	if req.LastFour != nil {
		c.LastFour = *req.LastFour
	}

	if req.StatementDay != nil {
		c.StatementDay = *req.StatementDay
	}

	if req.DueDay != nil {
		c.DueDay = *req.DueDay
	}

	if req.CreditLimit != nil {
		c.CreditLimit = *req.CreditLimit
	}

	if err := h.svc.Update(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, h.toResponse(c))
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
