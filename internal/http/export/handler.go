package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/cardcycle/internal/export"
	"github.com/MrJamesThe3rd/cardcycle/internal/http/httpx"
)

type Handler struct {
	svc *export.Service
	now func() time.Time
}

// NewHandler reads query dates in loc; nil means the process zone.
func NewHandler(svc *export.Service, loc *time.Location) *Handler {
	return &Handler{svc: svc, now: httpx.Clock(loc)}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.csv)
	r.Get("/summary", h.summary)
}

func (h *Handler) csv(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	start, end, err := httpx.MonthOrRange(r, h.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items, err := h.svc.Export(r.Context(), userID, start, end)
	if err != nil {
		httpx.Internal(w, r, "failed to export transactions", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"transactions_%s_%s.csv\"", start.Format("20060102"), end.AddDate(0, 0, -1).Format("20060102")))

	if err := h.svc.WriteCSV(w, items); err != nil {
		slog.Error("failed to write csv", "error", err)
	}
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserID(w, r)
	if !ok {
		return
	}

	start, end, err := httpx.MonthOrRange(r, h.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items, err := h.svc.Export(r.Context(), userID, start, end)
	if err != nil {
		httpx.Internal(w, r, "failed to export transactions", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := w.Write([]byte(h.svc.GenerateSummary(items))); err != nil {
		slog.Error("failed to write summary", "error", err)
	}
}
