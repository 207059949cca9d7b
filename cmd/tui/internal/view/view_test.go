package view

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cardcycle/internal/budget"
	"github.com/MrJamesThe3rd/cardcycle/internal/cycle"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTimeframePeriod(t *testing.T) {
	type testCase struct {
		name      string
		tf        Timeframe
		now       time.Time
		anchor    int
		wantStart time.Time
		wantEnd   time.Time
	}

	tests := []testCase{
		{
			name:      "Current cycle before anchor",
			tf:        TimeframeCurrentCycle,
			now:       time.Date(2025, 4, 10, 18, 30, 0, 0, time.UTC),
			anchor:    15,
			wantStart: day(2025, 3, 15),
			wantEnd:   day(2025, 4, 15),
		},
		{
			name:      "Previous cycle",
			tf:        TimeframePreviousCycle,
			now:       day(2025, 4, 10),
			anchor:    15,
			wantStart: day(2025, 2, 15),
			wantEnd:   day(2025, 3, 15),
		},
		{
			name:      "Previous cycle clamps anchor 31",
			tf:        TimeframePreviousCycle,
			now:       day(2025, 3, 31),
			anchor:    31,
			wantStart: day(2025, 2, 28),
			wantEnd:   day(2025, 3, 31),
		},
		{
			name:      "This month ignores anchor",
			tf:        TimeframeThisMonth,
			now:       day(2025, 4, 10),
			anchor:    15,
			wantStart: day(2025, 4, 1),
			wantEnd:   day(2025, 5, 1),
		},
		{
			name:      "Last month across year boundary",
			tf:        TimeframeLastMonth,
			now:       day(2025, 1, 5),
			anchor:    1,
			wantStart: day(2024, 12, 1),
			wantEnd:   day(2025, 1, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := timeframePeriod(tt.tf, tt.now, tt.anchor)
			assert.Equal(t, tt.wantStart, p.Start)
			assert.Equal(t, tt.wantEnd, p.End)
		})
	}
}

func TestParseVND(t *testing.T) {
	type testCase struct {
		name    string
		in      string
		want    int64
		wantErr bool
	}

	tests := []testCase{
		{name: "Plain", in: "10000000", want: 10_000_000},
		{name: "Commas", in: "10,000,000", want: 10_000_000},
		{name: "Dots and symbol", in: "1.250.000 ₫", want: 1_250_000},
		{name: "Empty", in: "  ", want: 0},
		{name: "Negative", in: "-5", wantErr: true},
		{name: "Garbage", in: "ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVND(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmountInput(t *testing.T) {
	got, err := parseAmountInput(" 1,250.50 ")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1250.50").Equal(got))

	_, err = parseAmountInput("0")
	assert.Error(t, err)

	_, err = parseAmountInput("abc")
	assert.Error(t, err)
}

func TestValidateDay(t *testing.T) {
	assert.NoError(t, validateDay("1"))
	assert.NoError(t, validateDay(" 31 "))
	assert.Error(t, validateDay("0"))
	assert.Error(t, validateDay("32"))
	assert.Error(t, validateDay(""))
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "transactions-all.csv", exportFileName(time.Time{}, time.Time{}))
	assert.Equal(t, "transactions-2025-03-15_2025-04-14.csv", exportFileName(day(2025, 3, 15), day(2025, 4, 15)))
}

func TestBar(t *testing.T) {
	assert.Equal(t, strings.Repeat(" ", barWidth), bar(0, 100))
	assert.Equal(t, strings.Repeat("█", barWidth), bar(100, 100))
	assert.Equal(t, strings.Repeat("█", barWidth), bar(150, 100))

	half := bar(50, 100)
	assert.Equal(t, barWidth/2, strings.Count(half, "█"))

	assert.Equal(t, 1, strings.Count(bar(0.1, 100), "█"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Food", truncate("Food", 16))
	assert.Equal(t, "Entertainm…", truncate("Entertainment", 11))
}

func TestUncategorized(t *testing.T) {
	catID := uuid.New()
	txs := []*transaction.Transaction{
		{Description: "a"},
		{Description: "b", CategoryID: &catID},
		{Description: "c"},
	}

	got := uncategorized(txs)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Description)
	assert.Equal(t, "c", got[1].Description)
}

func TestReviewPattern(t *testing.T) {
	assert.Equal(t, "GRAB*FOOD HCM", reviewPattern(&transaction.Transaction{Description: "Lunch", RawDescription: "GRAB*FOOD HCM"}))
	assert.Equal(t, "Lunch", reviewPattern(&transaction.Transaction{Description: "Lunch"}))
}

func TestFormatPeriod(t *testing.T) {
	p := cycle.Period{Start: day(2025, 3, 15), End: day(2025, 4, 15)}
	assert.Equal(t, "2025-03-15 → 2025-04-14", FormatPeriod(p))
}

func TestRenderBudget(t *testing.T) {
	assert.Contains(t, renderBudget(nil), "Budgeting is off")
	assert.Contains(t, renderBudget(&budget.View{Budget: &budget.Budget{}}), "Budgeting is off")

	out := renderBudget(&budget.View{
		Budget: &budget.Budget{Enabled: true, MonthlyAmount: 10_000_000},
		Status: &cycle.Result{
			Period:         cycle.Period{Start: day(2025, 3, 15), End: day(2025, 4, 15)},
			Spending:       7_500_000,
			Remaining:      2_500_000,
			PercentageUsed: 75,
			Status:         cycle.StatusWarning,
		},
	})

	assert.Contains(t, out, "Warning")
	assert.Contains(t, out, "7,500,000 ₫")
	assert.Contains(t, out, "2,500,000 ₫")
	assert.Contains(t, out, "2025-03-15 → 2025-04-14")
}

type closeFailer struct {
	bytes.Buffer
	closeErr error
}

func (c *closeFailer) Close() error { return c.closeErr }

func TestWriteFile(t *testing.T) {
	type testCase struct {
		name     string
		closeErr error
		writeErr error
		wantErr  error
	}

	errDisk := errors.New("no space left on device")
	errWrite := errors.New("write failed")

	tests := []testCase{
		{name: "Success"},
		{name: "CloseFails", closeErr: errDisk, wantErr: errDisk},
		{name: "WriteFailsFirst", writeErr: errWrite, closeErr: errDisk, wantErr: errWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &closeFailer{closeErr: tt.closeErr}
			create := func(string) (io.WriteCloser, error) { return out, nil }

			err := writeFile(create, "transactions.csv", func(w io.Writer) error {
				_, _ = io.WriteString(w, "date,type\n")
				return tt.writeErr
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "date,type\n", out.String())
		})
	}
}

func TestWriteFile_CreatesOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions-all.csv")

	err := writeFile(createFile, path, func(w io.Writer) error {
		_, err := io.WriteString(w, "ok")
		return err
	})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(got))
}
