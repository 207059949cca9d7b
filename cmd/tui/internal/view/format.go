package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cardcycle/internal/cycle"
	"github.com/MrJamesThe3rd/cardcycle/internal/money"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

const dbTimeout = 5 * time.Second

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// FormatVND renders a whole-dong amount with thousands separators.
func FormatVND(amount int64) string {
	return money.VND(amount)
}

// FormatSigned prefixes expenses with a minus sign.
func FormatSigned(tx *transaction.Transaction) string {
	if tx.Type == transaction.TypeExpense {
		return "-" + money.VND(tx.VNDAmount)
	}

	return "+" + money.VND(tx.VNDAmount)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// FormatPeriod renders a half-open period as its first and last calendar day.
func FormatPeriod(p cycle.Period) string {
	return FormatDate(p.Start) + " → " + FormatDate(p.End.AddDate(0, 0, -1))
}

// StatusStyle colours a budget status.
func StatusStyle(s cycle.Status) lipgloss.Style {
	switch s {
	case cycle.StatusExceeded:
		return errorStyle
	case cycle.StatusWarning:
		return warningStyle
	}

	return successStyle
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
