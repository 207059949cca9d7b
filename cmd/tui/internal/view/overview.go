package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/cycle"
	"github.com/MrJamesThe3rd/cardcycle/internal/money"
	"github.com/MrJamesThe3rd/cardcycle/internal/summary"
)

const (
	trendMonths = 6
	barWidth    = 30
)

// OverviewModel summarizes spending by category for the open cycle, the
// monthly trend and the running net balance.
type OverviewModel struct {
	CommonModel
	summaryService *summary.Service
	userID         uuid.UUID
	anchorDay      int

	period     cycle.Period
	categories []summary.CategoryTotal
	trend      []summary.MonthTotals
	net        summary.NetWorth

	loading bool
	err     error
}

func NewOverviewModel(svc *summary.Service, userID uuid.UUID, anchorDay int) OverviewModel {
	return OverviewModel{
		summaryService: svc,
		userID:         userID,
		anchorDay:      anchorDay,
		loading:        true,
	}
}

func (m OverviewModel) Title() string     { return "Overview" }
func (m OverviewModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m OverviewModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m OverviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewMsg:
		m.loading = false
		m.err = msg.err
		m.period = msg.period
		m.categories = msg.categories
		m.trend = msg.trend
		m.net = msg.net
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m OverviewModel) View() string {
	style := lipgloss.NewStyle().Padding(1, 2)

	if m.loading {
		return style.Render("Loading overview...")
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	bold := lipgloss.NewStyle().Bold(true)

	var sb strings.Builder

	sb.WriteString(bold.Render("Spending by category ") + faintStyle.Render(FormatPeriod(m.period)) + "\n\n")
	if len(m.categories) == 0 {
		sb.WriteString(faintStyle.Render("No expenses in this cycle.") + "\n")
	}
	for _, c := range m.categories {
		fmt.Fprintf(&sb, "%-16s %s %s  %s\n",
			truncate(c.Name, 16),
			activeStyle(bar(c.Share, 100)),
			FormatVND(c.Amount),
			faintStyle.Render(money.Percent(c.Share)),
		)
	}

	sb.WriteString("\n" + bold.Render("Last months") + "\n\n")
	for _, t := range m.trend {
		net := successStyle.Render(FormatVND(t.Net))
		if t.Net < 0 {
			net = errorStyle.Render(FormatVND(t.Net))
		}

		fmt.Fprintf(&sb, "%d-%02d  in %-16s out %-16s net %s\n", t.Year, t.Month, FormatVND(t.Income), FormatVND(t.Expense), net)
	}

	sb.WriteString("\n" + bold.Render("Net balance ") + FormatVND(m.net.Net))
	sb.WriteString(faintStyle.Render(fmt.Sprintf("  (in %s, out %s)", FormatVND(m.net.Income), FormatVND(m.net.Expense))))

	return style.Render(sb.String())
}

// bar draws value as a share of total across barWidth cells.
func bar(value, total float64) string {
	if total <= 0 || value <= 0 {
		return strings.Repeat(" ", barWidth)
	}

	n := int(value / total * barWidth)
	n = max(1, min(n, barWidth))

	return strings.Repeat("█", n) + strings.Repeat(" ", barWidth-n)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}

type overviewMsg struct {
	period     cycle.Period
	categories []summary.CategoryTotal
	trend      []summary.MonthTotals
	net        summary.NetWorth
	err        error
}

func (m OverviewModel) loadCmd() tea.Cmd {
	svc := m.summaryService
	userID := m.userID
	anchor := m.anchorDay

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		now := time.Now()
		period := timeframePeriod(TimeframeCurrentCycle, now, anchor)

		categories, err := svc.ByCategory(ctx, userID, period.Start, period.End)
		if err != nil {
			return overviewMsg{err: err}
		}

		trend, err := svc.MonthlyTrend(ctx, userID, now, trendMonths)
		if err != nil {
			return overviewMsg{err: err}
		}

		net, err := svc.NetWorth(ctx, userID)
		if err != nil {
			return overviewMsg{err: err}
		}

		return overviewMsg{period: period, categories: categories, trend: trend, net: net}
	}
}
