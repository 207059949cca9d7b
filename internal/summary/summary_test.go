package summary_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cardcycle/internal/card"
	"github.com/MrJamesThe3rd/cardcycle/internal/summary"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

type fakeCards []*card.Card

func (f fakeCards) List(context.Context, uuid.UUID) ([]*card.Card, error) { return f, nil }

// fakeTxs applies ListFilter the way the store does.
type fakeTxs []*transaction.Transaction

func (f fakeTxs) List(_ context.Context, _ uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	var out []*transaction.Transaction

	for _, tx := range f {
		if filter.CardID != nil && (tx.CardID == nil || *tx.CardID != *filter.CardID) {
			continue
		}

		if filter.Type != nil && tx.Type != *filter.Type {
			continue
		}

		if filter.StartDate != nil && tx.Date.Before(*filter.StartDate) {
			continue
		}

		if filter.EndDate != nil && !tx.Date.Before(*filter.EndDate) {
			continue
		}

		out = append(out, tx)
	}

	return out, nil
}

type fakeNames map[uuid.UUID]string

func (f fakeNames) Names(context.Context, uuid.UUID) (map[uuid.UUID]string, error) { return f, nil }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tx(typ transaction.Type, date time.Time, vnd int64, cardID, categoryID *uuid.UUID) *transaction.Transaction {
	return &transaction.Transaction{Type: typ, Date: date, VNDAmount: vnd, CardID: cardID, CategoryID: categoryID}
}

var (
	visa   = uuid.New()
	master = uuid.New()
	food   = uuid.New()
	travel = uuid.New()
	userID = uuid.New()
)

func fixture() fakeTxs {
	return fakeTxs{
		tx(transaction.TypeExpense, day(2025, 3, 20), 2_000_000, &visa, &food),
		tx(transaction.TypeExpense, day(2025, 4, 5), 3_000_000, &visa, &travel),
		tx(transaction.TypeExpense, day(2025, 3, 10), 9_000_000, &visa, &travel),
		tx(transaction.TypeExpense, day(2025, 4, 2), 500_000, &master, nil),
		tx(transaction.TypeIncome, day(2025, 4, 1), 20_000_000, nil, nil),
		tx(transaction.TypeIncome, day(2025, 2, 1), 20_000_000, nil, nil),
		tx(transaction.TypeExpense, day(2025, 2, 14), 1_000_000, &master, &food),
	}
}

func TestService_CardBalances(t *testing.T) {
	cards := fakeCards{
		{ID: visa, Name: "Visa", StatementDay: 15, DueDay: 5, CreditLimit: 10_000_000},
		{ID: master, Name: "Master", StatementDay: 1, DueDay: 20},
	}

	svc := summary.NewService(cards, fixture(), fakeNames{})

	got, err := svc.CardBalances(context.Background(), userID, day(2025, 4, 10))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, day(2025, 3, 15), got[0].Period.Start)
	assert.Equal(t, day(2025, 4, 15), got[0].Period.End)
	assert.Equal(t, int64(5_000_000), got[0].Spending)
	assert.Equal(t, day(2025, 5, 5), got[0].DueDate)
	assert.InDelta(t, 50.0, got[0].Utilization, 0.001)

	assert.Equal(t, day(2025, 4, 1), got[1].Period.Start)
	assert.Equal(t, int64(500_000), got[1].Spending)
	assert.Equal(t, day(2025, 5, 20), got[1].DueDate)
	assert.Zero(t, got[1].Utilization)
}

func TestService_ByCategory(t *testing.T) {
	svc := summary.NewService(nil, fixture(), fakeNames{food: "Food", travel: "Travel"})

	got, err := svc.ByCategory(context.Background(), userID, day(2025, 3, 1), day(2025, 5, 1))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Travel", got[0].Name)
	assert.Equal(t, int64(12_000_000), got[0].Amount)
	assert.InDelta(t, 82.758, got[0].Share, 0.01)

	assert.Equal(t, "Food", got[1].Name)
	assert.Equal(t, int64(2_000_000), got[1].Amount)

	assert.Equal(t, "Uncategorized", got[2].Name)
	assert.Nil(t, got[2].CategoryID)
	assert.Equal(t, int64(500_000), got[2].Amount)

	_, err = svc.ByCategory(context.Background(), userID, day(2025, 5, 1), day(2025, 5, 1))
	assert.ErrorIs(t, err, summary.ErrInvalidRange)
}

func TestService_MonthlyTrend(t *testing.T) {
	svc := summary.NewService(nil, fixture(), fakeNames{})

	got, err := svc.MonthlyTrend(context.Background(), userID, day(2025, 4, 10), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, summary.MonthTotals{Year: 2025, Month: time.February, Income: 20_000_000, Expense: 1_000_000, Net: 19_000_000}, got[0])
	assert.Equal(t, summary.MonthTotals{Year: 2025, Month: time.March, Expense: 11_000_000, Net: -11_000_000}, got[1])
	assert.Equal(t, summary.MonthTotals{Year: 2025, Month: time.April, Income: 20_000_000, Expense: 3_500_000, Net: 16_500_000}, got[2])

	_, err = svc.MonthlyTrend(context.Background(), userID, day(2025, 4, 10), 0)
	assert.ErrorIs(t, err, summary.ErrInvalidRange)
}

func TestService_MonthlyTrend_YearBoundary(t *testing.T) {
	txs := fakeTxs{tx(transaction.TypeExpense, day(2024, 12, 31), 100, nil, nil)}
	svc := summary.NewService(nil, txs, fakeNames{})

	got, err := svc.MonthlyTrend(context.Background(), userID, day(2025, 1, 15), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2024, got[0].Year)
	assert.Equal(t, time.December, got[0].Month)
	assert.Equal(t, int64(100), got[0].Expense)
}

func TestService_NetWorth(t *testing.T) {
	svc := summary.NewService(nil, fixture(), fakeNames{})

	got, err := svc.NetWorth(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(40_000_000), got.Income)
	assert.Equal(t, int64(15_500_000), got.Expense)
	assert.Equal(t, int64(24_500_000), got.Net)
}
