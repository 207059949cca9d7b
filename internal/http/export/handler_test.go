package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cardcycle/internal/auth"
	"github.com/MrJamesThe3rd/cardcycle/internal/card"
	"github.com/MrJamesThe3rd/cardcycle/internal/export"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

type noCards struct{}

func (noCards) List(context.Context, uuid.UUID) ([]*card.Card, error) { return nil, nil }

type noNames struct{}

func (noNames) Names(context.Context, uuid.UUID) (map[uuid.UUID]string, error) {
	return map[uuid.UUID]string{}, nil
}

type recordingTxs struct {
	calls  int
	filter transaction.ListFilter
}

func (r *recordingTxs) List(_ context.Context, _ uuid.UUID, f transaction.ListFilter) ([]*transaction.Transaction, error) {
	r.calls++
	r.filter = f

	return nil, nil
}

func TestHandler_CSVRange(t *testing.T) {
	type testCase struct {
		name         string
		query        string
		wantStatus   int
		wantStart    time.Time
		wantEnd      time.Time
		wantFilename string
	}

	loc := time.FixedZone("ICT", 7*60*60)
	now := time.Date(2025, 2, 14, 8, 0, 0, 0, loc)
	day := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 0, 0, 0, 0, loc) }

	tests := []testCase{
		{
			name:         "DefaultsToCurrentMonth",
			wantStatus:   http.StatusOK,
			wantStart:    day(2, 1),
			wantEnd:      day(3, 1),
			wantFilename: "transactions_20250201_20250228.csv",
		},
		{
			name:         "InclusiveEnd",
			query:        "start_date=2025-01-15&end_date=2025-02-14",
			wantStatus:   http.StatusOK,
			wantStart:    day(1, 15),
			wantEnd:      day(2, 15),
			wantFilename: "transactions_20250115_20250214.csv",
		},
		{name: "StartAfterEnd", query: "start_date=2025-02-10&end_date=2025-02-09", wantStatus: http.StatusBadRequest},
		{name: "MalformedStart", query: "start_date=2025-13-01", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := &recordingTxs{}
			userID := uuid.New()

			h := NewHandler(export.NewService(txs, noNames{}, noCards{}), loc)
			h.now = func() time.Time { return now }

			r := chi.NewRouter()
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), userID)))
				})
			})
			r.Route("/export", h.Routes)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export?"+tt.query, nil))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus != http.StatusOK {
				assert.Zero(t, txs.calls)
				return
			}

			require.NotNil(t, txs.filter.StartDate)
			require.NotNil(t, txs.filter.EndDate)
			assert.Equal(t, tt.wantStart, *txs.filter.StartDate)
			assert.Equal(t, tt.wantEnd, *txs.filter.EndDate)
			assert.Contains(t, rec.Header().Get("Content-Disposition"), tt.wantFilename)
		})
	}
}
