package rule

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/category"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/httpx"
	"github.com/MrJamesThe3rd/cardcycle/internal/rule"
)

type Handler struct {
	svc *rule.Service
}

func NewHandler(svc *rule.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
	r.Delete("/{id}", h.delete)
}

type ruleResponse struct {
	ID         uuid.UUID `json:"id"`
	Pattern    string    `json:"pattern"`
	CategoryID uuid.UUID `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func toResponse(r *rule.Rule) ruleResponse {
	return ruleResponse{ID: r.ID, Pattern: r.Pattern, CategoryID: r.CategoryID, CreatedAt: r.CreatedAt}
}

type suggestResponse struct {
	RawDescription string     `json:"raw_description"`
	CategoryID     *uuid.UUID `json:"category_id"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	rawDesc := r.URL.Query().Get("raw_description")
	if rawDesc == "" {
		http.Error(w, "raw_description query parameter is required", http.StatusBadRequest)
		return
	}

	categoryID, err := h.svc.Suggest(r.Context(), userID, rawDesc)
	if err != nil {
		httpx.Internal(w, r, "failed to suggest category", err)
		return
	}

	httpx.JSON(w, http.StatusOK, suggestResponse{RawDescription: rawDesc, CategoryID: categoryID})
}

type learnRequest struct {
	Pattern    string    `json:"pattern" validate:"required,max=120"`
	CategoryID uuid.UUID `json:"category_id" validate:"required"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	var req learnRequest
	if err := httpx.Decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.svc.Learn(r.Context(), userID, req.Pattern, req.CategoryID)
	if err != nil {
		switch {
		case errors.Is(err, rule.ErrInvalidPattern):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, category.ErrNotFound):
			http.Error(w, "category not found", http.StatusUnprocessableEntity)
		default:
			httpx.Internal(w, r, "failed to create rule", err)
		}

		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	rules, err := h.svc.List(r.Context(), userID)
	if err != nil {
		httpx.Internal(w, r, "failed to list rules", err)
		return
	}

	resp := make([]ruleResponse, len(rules))
	for i, rl := range rules {
		resp[i] = toResponse(rl)
	}

	httpx.JSON(w, http.StatusOK, resp)
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
		if errors.Is(err, rule.ErrNotFound) {
			http.Error(w, "rule not found", http.StatusNotFound)
			return
		}

		httpx.Internal(w, r, "failed to delete rule", err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
