package budget

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cardcycle/internal/auth"
	"github.com/MrJamesThe3rd/cardcycle/internal/budget"
	"github.com/MrJamesThe3rd/cardcycle/internal/card"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

type fixture struct {
	repo   *budget.MockRepository
	cards  *budget.MockCardReader
	txs    *budget.MockTransactionLister
	router chi.Router
	userID uuid.UUID
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		repo:   budget.NewMockRepository(ctrl),
		cards:  budget.NewMockCardReader(ctrl),
		txs:    budget.NewMockTransactionLister(ctrl),
		userID: uuid.New(),
	}

	h := NewHandler(budget.NewService(f.repo, f.cards, f.txs), time.UTC)
	h.now = func() time.Time { return now }

	userID := f.userID
	f.router = chi.NewRouter()
	f.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	})
	f.router.Route("/budget", h.Routes)

	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Status(t *testing.T) {
	now := time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, now)
	cardID := uuid.New()

	f.repo.EXPECT().GetBudget(gomock.Any(), f.userID).Return(&budget.Budget{
		UserID: f.userID, Enabled: true, MonthlyAmount: 10_000_000, StatementCardID: &cardID,
	}, nil)
	f.cards.EXPECT().Get(gomock.Any(), f.userID, cardID).Return(&card.Card{ID: cardID, StatementDay: 15}, nil)
	f.txs.EXPECT().List(gomock.Any(), f.userID, gomock.Any()).Return([]*transaction.Transaction{
		{Type: transaction.TypeExpense, Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), VNDAmount: 10_500_000},
	}, nil)

	rec := f.do(http.MethodGet, "/budget/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp viewResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Status)

	assert.Equal(t, int64(10_500_000), resp.Status.CurrentSpending)
	assert.Zero(t, resp.Status.RemainingAmount)
	assert.InDelta(t, 105.0, resp.Status.PercentageUsed, 0.001)
	assert.Equal(t, "exceeded", string(resp.Status.Status))
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), resp.Status.StatementPeriod.Start)
	assert.Equal(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), resp.Status.StatementPeriod.End)
}

func TestHandler_Status_Disabled(t *testing.T) {
	f := newFixture(t, time.Now())

	f.repo.EXPECT().GetBudget(gomock.Any(), f.userID).Return(nil, budget.ErrNotFound)

	rec := f.do(http.MethodGet, "/budget/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":null`)
}

func TestHandler_Save(t *testing.T) {
	type testCase struct {
		name      string
		body      string
		setupMock func(f *fixture)
		wantCode  int
	}

	cardID := uuid.New()

	tests := []testCase{
		{
			name: "Success",
			body: `{"enabled":true,"monthly_amount":5000000,"statement_card_id":"` + cardID.String() + `"}`,
			setupMock: func(f *fixture) {
				f.cards.EXPECT().Get(gomock.Any(), f.userID, cardID).Return(&card.Card{ID: cardID}, nil)
				f.repo.EXPECT().SaveBudget(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "NegativeAmount",
			body:     `{"enabled":true,"monthly_amount":-1}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "UnknownCard",
			body: `{"enabled":true,"monthly_amount":1,"statement_card_id":"` + cardID.String() + `"}`,
			setupMock: func(f *fixture) {
				f.cards.EXPECT().Get(gomock.Any(), f.userID, cardID).Return(nil, card.ErrNotFound)
			},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "Malformed",
			body:     `{"enabled":`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, time.Now())
			if tt.setupMock != nil {
				tt.setupMock(f)
			}

			rec := f.do(http.MethodPut, "/budget/", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
