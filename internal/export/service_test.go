package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cardcycle/internal/card"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

type stubTxs struct {
	txs    []*transaction.Transaction
	filter transaction.ListFilter
}

func (s *stubTxs) List(_ context.Context, _ uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	s.filter = filter
	return s.txs, nil
}

type stubNames map[uuid.UUID]string

func (s stubNames) Names(context.Context, uuid.UUID) (map[uuid.UUID]string, error) { return s, nil }

type stubCards []*card.Card

func (s stubCards) List(context.Context, uuid.UUID) ([]*card.Card, error) { return s, nil }

func fixture() (*stubTxs, stubNames, stubCards) {
	food := uuid.New()
	visa := uuid.New()
	date := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)

	txs := &stubTxs{txs: []*transaction.Transaction{
		{
			Type: transaction.TypeExpense, Description: "Pho, Hoa", Date: date,
			Amount: decimal.NewFromInt(85000), Currency: "VND", VNDAmount: 85000,
			CategoryID: &food, CardID: &visa,
		},
		{
			Type: transaction.TypeExpense, Description: "Hosting", Date: date,
			Amount: decimal.RequireFromString("12.5"), Currency: "USD", VNDAmount: 317500,
		},
		{
			Type: transaction.TypeIncome, Description: "Salary", Date: date,
			Amount: decimal.NewFromInt(20_000_000), Currency: "VND", VNDAmount: 20_000_000,
		},
	}}

	return txs, stubNames{food: "Food"}, stubCards{{ID: visa, Name: "Visa"}}
}

func TestService_Export(t *testing.T) {
	txs, names, cards := fixture()
	svc := NewService(txs, names, cards)

	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	items, err := svc.Export(context.Background(), uuid.New(), start, end)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, start, *txs.filter.StartDate)
	assert.Equal(t, end, *txs.filter.EndDate)

	assert.Equal(t, "Food", items[0].Category)
	assert.Equal(t, "Visa", items[0].Card)
	assert.Empty(t, items[1].Category)
	assert.Empty(t, items[1].Card)
}

func TestService_ExportOpenRange(t *testing.T) {
	txs, names, cards := fixture()
	svc := NewService(txs, names, cards)

	_, err := svc.Export(context.Background(), uuid.New(), time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Nil(t, txs.filter.StartDate)
	assert.Nil(t, txs.filter.EndDate)
}

func TestService_WriteCSV(t *testing.T) {
	txs, names, cards := fixture()
	svc := NewService(txs, names, cards)

	items, err := svc.Export(context.Background(), uuid.New(), time.Time{}, time.Now())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(&buf, items))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"2025-04-02", "expense", "Pho, Hoa", "Food", "Visa", "85000", "VND", "85000"}, records[1])
	assert.Equal(t, []string{"2025-04-02", "expense", "Hosting", "", "", "12.5", "USD", "317500"}, records[2])
}

func TestService_GenerateSummary(t *testing.T) {
	txs, names, cards := fixture()
	svc := NewService(txs, names, cards)

	items, err := svc.Export(context.Background(), uuid.New(), time.Time{}, time.Now())
	require.NoError(t, err)

	body := svc.GenerateSummary(items)

	expectedSubstrings := []string{
		"* 2025-04-02 | Pho, Hoa | -85,000 ₫ | Food",
		"* 2025-04-02 | Hosting | -12.50 USD (317,500 ₫) | Uncategorized",
		"* 2025-04-02 | Salary | +20,000,000 ₫ | Uncategorized",
		"Income: 20,000,000 ₫",
		"Expense: 402,500 ₫",
		"Net: 19,597,500 ₫",
	}

	for _, s := range expectedSubstrings {
		assert.True(t, strings.Contains(body, s), "missing %q in:\n%s", s, body)
	}
}
