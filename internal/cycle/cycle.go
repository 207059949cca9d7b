// Package cycle computes statement periods for a billing anchor day and the
// budget figures derived from the spending inside them.
//
// Everything here is a pure function of its inputs. Callers recompute on every
// read instead of persisting results.
package cycle

import "time"

// Status is the budget health label for a statement period.
type Status string

const (
	StatusNone     Status = ""
	StatusOnTrack  Status = "on_track"
	StatusWarning  Status = "warning"
	StatusExceeded Status = "exceeded"
)

const (
	// WarningPercent is the share of the threshold at which spending is flagged.
	WarningPercent = 75
	// ExceededPercent is inclusive: spending equal to the threshold is exceeded.
	ExceededPercent = 100
)

// Period is a half-open statement window [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Entry is a dated amount taking part in an aggregation.
// A zero Date marks a record whose date could not be read; it is skipped.
type Entry struct {
	Date   time.Time
	Amount int64
}

// Evaluation is the threshold comparison for a given spend.
type Evaluation struct {
	PercentageUsed float64
	Remaining      int64
	Status         Status
}

// Result bundles everything derived for one statement period.
type Result struct {
	Period         Period
	Spending       int64
	Remaining      int64
	PercentageUsed float64
	Status         Status
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// anchorDate places the anchor day in the given month, clamped to its last day.
func anchorDate(year int, month time.Month, anchorDay int, loc *time.Location) time.Time {
	// Normalise month overflow (e.g. month 0 or 13) before clamping.
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	year, month = first.Year(), first.Month()

	day := min(max(anchorDay, 1), DaysIn(year, month))

	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// PeriodFor returns the statement period that contains reference.
//
// The period starts on the anchor day of the reference month, or of the month
// before when the reference falls earlier in the month than the anchor. Anchor
// days past the end of a month clamp to its last day, so anchor 31 yields
// Jan 31, Feb 28 (or 29), Mar 31.
func PeriodFor(reference time.Time, anchorDay int) Period {
	loc := reference.Location()

	start := anchorDate(reference.Year(), reference.Month(), anchorDay, loc)
	if reference.Day() < start.Day() {
		start = anchorDate(reference.Year(), reference.Month()-1, anchorDay, loc)
	}

	return Period{
		Start: start,
		End:   anchorDate(start.Year(), start.Month()+1, anchorDay, loc),
	}
}

// Next returns the period immediately following p for the same anchor day.
func (p Period) Next(anchorDay int) Period {
	return Period{
		Start: p.End,
		End:   anchorDate(p.End.Year(), p.End.Month()+1, anchorDay, p.End.Location()),
	}
}

// Sum adds up the amounts of entries dated inside the period.
func Sum(p Period, entries []Entry) int64 {
	var total int64

	for _, e := range entries {
		if e.Date.IsZero() {
			continue
		}

		if p.Contains(e.Date) {
			total += e.Amount
		}
	}

	return total
}

// Evaluate compares spend against threshold. It returns false when the
// threshold is not positive, meaning budgeting is disabled.
func Evaluate(spend, threshold int64) (Evaluation, bool) {
	if threshold <= 0 {
		return Evaluation{}, false
	}

	// Status boundaries are decided on integers so 75% and 100% are exact.
	status := StatusOnTrack

	switch {
	case spend*100 >= threshold*ExceededPercent:
		status = StatusExceeded
	case spend*100 >= threshold*WarningPercent:
		status = StatusWarning
	}

	return Evaluation{
		PercentageUsed: float64(spend) / float64(threshold) * 100,
		Remaining:      max(threshold-spend, 0),
		Status:         status,
	}, true
}

// Compute derives the active period for reference and anchorDay, the spend
// inside it and, when threshold is positive, the budget status.
func Compute(reference time.Time, anchorDay int, threshold int64, entries []Entry) Result {
	period := PeriodFor(reference, anchorDay)
	spend := Sum(period, entries)

	res := Result{
		Period:   period,
		Spending: spend,
	}

	if eval, ok := Evaluate(spend, threshold); ok {
		res.Remaining = eval.Remaining
		res.PercentageUsed = eval.PercentageUsed
		res.Status = eval.Status
	}

	return res
}
