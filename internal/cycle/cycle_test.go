package cycle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cardcycle/internal/cycle"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodFor(t *testing.T) {
	type testCase struct {
		name      string
		reference time.Time
		anchor    int
		wantStart time.Time
		wantEnd   time.Time
	}

	tests := []testCase{
		{
			name:      "Before anchor shifts back a month",
			reference: date(2025, 4, 10),
			anchor:    15,
			wantStart: date(2025, 3, 15),
			wantEnd:   date(2025, 4, 15),
		},
		{
			name:      "On anchor day starts new period",
			reference: date(2025, 4, 15),
			anchor:    15,
			wantStart: date(2025, 4, 15),
			wantEnd:   date(2025, 5, 15),
		},
		{
			name:      "Anchor 1 is the calendar month",
			reference: date(2025, 7, 31),
			anchor:    1,
			wantStart: date(2025, 7, 1),
			wantEnd:   date(2025, 8, 1),
		},
		{
			name:      "Crosses year boundary",
			reference: date(2026, 1, 3),
			anchor:    20,
			wantStart: date(2025, 12, 20),
			wantEnd:   date(2026, 1, 20),
		},
		{
			name:      "Anchor 31 in February clamps to last day",
			reference: date(2025, 2, 28),
			anchor:    31,
			wantStart: date(2025, 2, 28),
			wantEnd:   date(2025, 3, 31),
		},
		{
			name:      "Anchor 31 in leap February clamps to 29th",
			reference: date(2024, 2, 29),
			anchor:    31,
			wantStart: date(2024, 2, 29),
			wantEnd:   date(2024, 3, 31),
		},
		{
			name:      "Anchor 31 before clamped day ends on February last day",
			reference: date(2025, 2, 27),
			anchor:    31,
			wantStart: date(2025, 1, 31),
			wantEnd:   date(2025, 2, 28),
		},
		{
			name:      "Anchor 30 in March before anchor starts on clamped February day",
			reference: date(2025, 3, 29),
			anchor:    30,
			wantStart: date(2025, 2, 28),
			wantEnd:   date(2025, 3, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cycle.PeriodFor(tt.reference, tt.anchor)

			assert.Equal(t, tt.wantStart, got.Start)
			assert.Equal(t, tt.wantEnd, got.End)
			assert.True(t, got.Contains(tt.reference))
		})
	}
}

func TestPeriodFor_ContainsReferenceForAllAnchors(t *testing.T) {
	loc := time.FixedZone("ICT", 7*60*60)
	start := time.Date(2023, 12, 1, 13, 45, 0, 0, loc)

	for anchor := 1; anchor <= 31; anchor++ {
		for day := 0; day < 800; day++ {
			ref := start.AddDate(0, 0, day)
			p := cycle.PeriodFor(ref, anchor)

			require.Falsef(t, ref.Before(p.Start), "anchor %d ref %s before start %s", anchor, ref, p.Start)
			require.Truef(t, ref.Before(p.End), "anchor %d ref %s not before end %s", anchor, ref, p.End)
		}
	}
}

func TestPeriodFor_LengthIsOneCalendarMonth(t *testing.T) {
	for anchor := 1; anchor <= 28; anchor++ {
		for day := 0; day < 400; day++ {
			ref := date(2024, 1, 1).AddDate(0, 0, day)
			p := cycle.PeriodFor(ref, anchor)

			require.Equal(t, p.Start.AddDate(0, 1, 0), p.End, "anchor %d ref %s", anchor, ref)
		}
	}

	// Anchors past the shortest month keep their day wherever the month allows it.
	for anchor := 29; anchor <= 31; anchor++ {
		for day := 0; day < 400; day++ {
			ref := date(2024, 1, 1).AddDate(0, 0, day)
			p := cycle.PeriodFor(ref, anchor)

			nextMonth := time.Date(p.Start.Year(), p.Start.Month()+1, 1, 0, 0, 0, 0, time.UTC)
			require.Equal(t, nextMonth.Month(), p.End.Month())
			require.Equal(t, min(anchor, cycle.DaysIn(nextMonth.Year(), nextMonth.Month())), p.End.Day())
		}
	}
}

func TestPeriod_Next(t *testing.T) {
	p := cycle.PeriodFor(date(2025, 1, 31), 31)

	next := p.Next(31)
	assert.Equal(t, date(2025, 2, 28), next.Start)
	assert.Equal(t, date(2025, 3, 31), next.End)

	next = next.Next(31)
	assert.Equal(t, date(2025, 3, 31), next.Start)
	assert.Equal(t, date(2025, 4, 30), next.End)
}

func TestSum(t *testing.T) {
	p := cycle.PeriodFor(date(2025, 4, 10), 15)

	entries := []cycle.Entry{
		{Date: date(2025, 3, 20), Amount: 850_000},
		{Date: date(2025, 4, 16), Amount: 400_000},
		{Date: date(2025, 3, 15), Amount: 100},
		{Date: date(2025, 4, 15), Amount: 7},
		{Date: time.Time{}, Amount: 999_999},
		{Date: date(2025, 4, 14).Add(23*time.Hour + 59*time.Minute), Amount: 50},
	}

	assert.Equal(t, int64(850_150), cycle.Sum(p, entries))
}

func TestEvaluate(t *testing.T) {
	type testCase struct {
		name       string
		spend      int64
		threshold  int64
		wantOK     bool
		wantStatus cycle.Status
		wantPct    float64
		wantRemain int64
	}

	tests := []testCase{
		{name: "Exactly at threshold is exceeded", spend: 1_000_000, threshold: 1_000_000, wantOK: true, wantStatus: cycle.StatusExceeded, wantPct: 100, wantRemain: 0},
		{name: "Over threshold", spend: 1_200_000, threshold: 1_000_000, wantOK: true, wantStatus: cycle.StatusExceeded, wantPct: 120, wantRemain: 0},
		{name: "Warning boundary inclusive", spend: 750_000, threshold: 1_000_000, wantOK: true, wantStatus: cycle.StatusWarning, wantPct: 75, wantRemain: 250_000},
		{name: "Just below warning", spend: 749_999, threshold: 1_000_000, wantOK: true, wantStatus: cycle.StatusOnTrack, wantPct: 74.9999, wantRemain: 250_001},
		{name: "Nothing spent", spend: 0, threshold: 1_000_000, wantOK: true, wantStatus: cycle.StatusOnTrack, wantPct: 0, wantRemain: 1_000_000},
		{name: "Zero threshold disables", spend: 10, threshold: 0, wantOK: false},
		{name: "Negative threshold disables", spend: 10, threshold: -5, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cycle.Evaluate(tt.spend, tt.threshold)

			require.Equal(t, tt.wantOK, ok)

			if !tt.wantOK {
				assert.Equal(t, cycle.Evaluation{}, got)
				return
			}

			assert.Equal(t, tt.wantStatus, got.Status)
			assert.InDelta(t, tt.wantPct, got.PercentageUsed, 1e-9)
			assert.Equal(t, tt.wantRemain, got.Remaining)
		})
	}
}

func TestEvaluate_MonotonicPercentage(t *testing.T) {
	const threshold = 1_000_000

	p := cycle.PeriodFor(date(2025, 4, 10), 15)
	amounts := []int64{0, 125_000, 1, 300_000, 0, 999_999, 42}

	var (
		entries []cycle.Entry
		last    float64
	)

	for i, a := range amounts {
		entries = append(entries, cycle.Entry{Date: date(2025, 3, 16+i), Amount: a})

		eval, ok := cycle.Evaluate(cycle.Sum(p, entries), threshold)
		require.True(t, ok)
		require.GreaterOrEqual(t, eval.PercentageUsed, last)

		last = eval.PercentageUsed
	}
}

func TestCompute(t *testing.T) {
	entries := []cycle.Entry{
		{Date: date(2025, 3, 20), Amount: 850_000},
		{Date: date(2025, 4, 16), Amount: 500_000},
	}

	got := cycle.Compute(date(2025, 4, 10), 15, 1_000_000, entries)

	assert.Equal(t, date(2025, 3, 15), got.Period.Start)
	assert.Equal(t, date(2025, 4, 15), got.Period.End)
	assert.Equal(t, int64(850_000), got.Spending)
	assert.Equal(t, int64(150_000), got.Remaining)
	assert.InDelta(t, 85.0, got.PercentageUsed, 1e-9)
	assert.Equal(t, cycle.StatusWarning, got.Status)
}

func TestCompute_DisabledThreshold(t *testing.T) {
	entries := []cycle.Entry{{Date: date(2025, 3, 20), Amount: 850_000}}

	got := cycle.Compute(date(2025, 4, 10), 15, 0, entries)

	assert.Equal(t, int64(850_000), got.Spending)
	assert.Equal(t, cycle.StatusNone, got.Status)
	assert.Zero(t, got.PercentageUsed)
	assert.Zero(t, got.Remaining)
}
