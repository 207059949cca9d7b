package statement_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/cardcycle/internal/importer/statement"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParser_Standard(t *testing.T) {
	csv := `Statement for VISA **** 1234
Period,2025-03-15 to 2025-04-14

Date,Description,Amount
2025-03-20,GRAB*FOOD HCMC,-85000
2025-04-02,"HIGHLANDS COFFEE, Q1","-1,250,000.50"
2025-04-05,PAYMENT THANK YOU,5000000
Total,,-1335000.50
`

	cardID := uuid.New()
	userID := uuid.New()

	txs, err := statement.NewParser().Parse(strings.NewReader(csv), statement.Options{
		UserID: userID, CardID: &cardID, Currency: "VND",
	})
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, date(2025, 3, 20), txs[0].Date)
	assert.Equal(t, "GRAB*FOOD HCMC", txs[0].Description)
	assert.True(t, dec("85000").Equal(txs[0].Amount))
	assert.Equal(t, transaction.TypeExpense, txs[0].Type)
	assert.Equal(t, userID, txs[0].UserID)
	assert.Equal(t, &cardID, txs[0].CardID)
	assert.Equal(t, "VND", txs[0].Currency)

	assert.Equal(t, "HIGHLANDS COFFEE, Q1", txs[1].Description)
	assert.Equal(t, transaction.TypeIncome, txs[2].Type)
	assert.True(t, dec("5000000").Equal(txs[2].Amount))
}

func TestParser_European(t *testing.T) {
	csv := "Date;Description;Amount\n" +
		"20/03/2025;Hotel Lisboa;-1.234,56\n" +
		"02.04.2025;Refund;12,50\n"

	txs, err := statement.NewParser().Parse(strings.NewReader(csv), statement.Options{Currency: "EUR"})
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, date(2025, 3, 20), txs[0].Date)
	assert.True(t, dec("1234.56").Equal(txs[0].Amount))
	assert.Equal(t, transaction.TypeExpense, txs[0].Type)

	assert.Equal(t, date(2025, 4, 2), txs[1].Date)
	assert.True(t, dec("12.5").Equal(txs[1].Amount))
	assert.Equal(t, transaction.TypeIncome, txs[1].Type)
}

func TestParser_DebitCredit(t *testing.T) {
	csv := `Date,Description,Debit,Credit
2025-04-01,NETFLIX.COM,"260,000",
15/04/2025,CASHBACK,,"12,000"
2025-04-20,ZERO ROW,0,
`

	txs, err := statement.NewParser().Parse(strings.NewReader(csv), statement.Options{Currency: "VND"})
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.True(t, dec("260000").Equal(txs[0].Amount))
	assert.Equal(t, transaction.TypeExpense, txs[0].Type)

	assert.Equal(t, date(2025, 4, 15), txs[1].Date)
	assert.True(t, dec("12000").Equal(txs[1].Amount))
	assert.Equal(t, transaction.TypeIncome, txs[1].Type)
}

func TestParser_Latin1(t *testing.T) {
	utf8 := "Date;Description;Amount\n01/04/2025;Café Príncipe;-3,20\n"

	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8))
	require.NoError(t, err)

	txs, err := statement.NewParser().Parse(bytes.NewReader(latin1), statement.Options{Currency: "EUR"})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Café Príncipe", txs[0].Description)
}

func TestParser_Errors(t *testing.T) {
	type testCase struct {
		name    string
		profile string
		csv     string
		wantErr error
		anyErr  bool
	}

	tests := []testCase{
		{
			name:    "UnknownHeader",
			csv:     "When,What,How much\n2025-01-01,x,1\n",
			wantErr: statement.ErrUnknownFormat,
		},
		{
			name:    "ForcedProfileMismatch",
			profile: statement.ProfileEuropean,
			csv:     "Date,Description,Amount\n2025-01-01,x,1\n",
			wantErr: statement.ErrUnknownFormat,
		},
		{
			name:   "BadAmount",
			csv:    "Date,Description,Amount\n2025-01-01,x,abc\n",
			anyErr: true,
		},
		{
			name:   "MissingDescription",
			csv:    "Date,Description,Amount\n2025-01-01,,10\n",
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := statement.NewParser()

			if tt.profile != "" {
				var err error
				p, err = statement.NewProfileParser(tt.profile)
				require.NoError(t, err)
			}

			_, err := p.Parse(strings.NewReader(tt.csv), statement.Options{})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.Error(t, err)
		})
	}
}

func TestNewProfileParser_Unknown(t *testing.T) {
	_, err := statement.NewProfileParser("cgd")
	assert.ErrorIs(t, err, statement.ErrUnknownFormat)
}
