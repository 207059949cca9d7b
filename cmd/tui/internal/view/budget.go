package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/budget"
	"github.com/MrJamesThe3rd/cardcycle/internal/card"
	"github.com/MrJamesThe3rd/cardcycle/internal/cycle"
	"github.com/MrJamesThe3rd/cardcycle/internal/money"
)

type budgetState int

const (
	budgetStateDashboard budgetState = iota
	budgetStateEdit
)

var statusColors = map[cycle.Status]string{
	cycle.StatusOnTrack:  "#04B575",
	cycle.StatusWarning:  "#FFA500",
	cycle.StatusExceeded: "#FF4672",
}

// BudgetModel shows spending against the budget for the open statement cycle.
type BudgetModel struct {
	CommonModel
	budgetService *budget.Service
	cardService   *card.Service
	userID        uuid.UUID

	state budgetState
	view  *budget.View
	cards []*card.Card
	form  *huh.Form
	draft *budgetDraft

	loading bool
	status  string
	err     error
}

type budgetDraft struct {
	Enabled bool
	Amount  string
	CardID  string
}

func NewBudgetModel(budgetSvc *budget.Service, cardSvc *card.Service, userID uuid.UUID) BudgetModel {
	return BudgetModel{
		budgetService: budgetSvc,
		cardService:   cardSvc,
		userID:        userID,
		loading:       true,
	}
}

func (m BudgetModel) Title() string { return "Budget" }

func (m BudgetModel) ShortHelp() string {
	if m.state == budgetStateEdit {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | e: edit budget | r: refresh"
}

func (m BudgetModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BudgetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBudgetMsg:
		m.loading = false
		m.err = msg.err
		m.view = msg.view
		m.cards = msg.cards
		return m, nil

	case budgetSavedMsg:
		m.state = budgetStateDashboard
		m.form = nil
		m.status = "Budget saved."
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		m.loading = true
		return m, m.loadCmd()
	}

	if m.state == budgetStateEdit {
		return m.updateEdit(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "e":
			if m.view == nil {
				return m, nil
			}
			return m.enterEditMode()
		}
	}

	return m, nil
}

func (m BudgetModel) enterEditMode() (tea.Model, tea.Cmd) {
	b := m.view.Budget

	m.draft = &budgetDraft{Enabled: b.Enabled}
	if b.MonthlyAmount > 0 {
		m.draft.Amount = fmt.Sprint(b.MonthlyAmount)
	}
	if b.StatementCardID != nil {
		m.draft.CardID = b.StatementCardID.String()
	}

	options := []huh.Option[string]{huh.NewOption("Calendar month (1st)", "")}
	for _, c := range m.cards {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (statement day %d)", c.Name, c.StatementDay), c.ID.String()))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Track a monthly budget?").
				Value(&m.draft.Enabled),
			huh.NewInput().
				Title("Monthly amount (VND)").
				Placeholder("10,000,000").
				Value(&m.draft.Amount).
				Validate(validateVND),
			huh.NewSelect[string]().
				Title("Cycle follows").
				Options(options...).
				Value(&m.draft.CardID),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = budgetStateEdit
	return m, m.form.Init()
}

func (m BudgetModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = budgetStateDashboard
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m BudgetModel) View() string {
	style := lipgloss.NewStyle().Padding(1, 2)

	if m.loading {
		return style.Render("Loading budget...")
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(r to retry, Esc to back)")
	}

	if m.state == budgetStateEdit && m.form != nil {
		return style.Render("Edit Budget\n\n" + m.form.View())
	}

	var sb strings.Builder

	if m.status != "" {
		sb.WriteString(faintStyle.Render(m.status) + "\n\n")
	}

	sb.WriteString(renderBudget(m.view))

	return style.Render(sb.String())
}

// renderBudget draws the dashboard for a budget view.
func renderBudget(v *budget.View) string {
	if v == nil || v.Status == nil {
		return faintStyle.Render("Budgeting is off. Press e to set a monthly amount.")
	}

	res := v.Status

	bar := progress.New(
		progress.WithSolidFill(statusColors[res.Status]),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	rows := []string{
		lipgloss.NewStyle().Bold(true).Render("Statement cycle ") + FormatPeriod(res.Period),
		"",
		bar.ViewAs(min(res.PercentageUsed/100, 1)) + "  " + StatusStyle(res.Status).Render(money.Percent(res.PercentageUsed)),
		"",
		fmt.Sprintf("Spent      %s", FormatVND(res.Spending)),
		fmt.Sprintf("Budget     %s", FormatVND(v.Budget.MonthlyAmount)),
		fmt.Sprintf("Remaining  %s", FormatVND(res.Remaining)),
		"",
		"Status     " + StatusStyle(res.Status).Bold(true).Render(statusLabel(res.Status)),
	}

	return strings.Join(rows, "\n")
}

func statusLabel(s cycle.Status) string {
	switch s {
	case cycle.StatusWarning:
		return "Warning"
	case cycle.StatusExceeded:
		return "Exceeded"
	}

	return "On track"
}

// Messages

type loadBudgetMsg struct {
	view  *budget.View
	cards []*card.Card
	err   error
}

type budgetSavedMsg struct {
	err error
}

func (m BudgetModel) loadCmd() tea.Cmd {
	budgetSvc := m.budgetService
	cardSvc := m.cardService
	userID := m.userID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		v, err := budgetSvc.Status(ctx, userID, time.Now())
		if err != nil {
			return loadBudgetMsg{err: err}
		}

		cards, err := cardSvc.List(ctx, userID)
		if err != nil {
			return loadBudgetMsg{err: err}
		}

		return loadBudgetMsg{view: v, cards: cards}
	}
}

func (m BudgetModel) saveCmd() tea.Cmd {
	d := m.draft
	amount, _ := parseVND(d.Amount)

	b := &budget.Budget{
		UserID:        m.userID,
		Enabled:       d.Enabled,
		MonthlyAmount: amount,
	}

	if d.CardID != "" {
		if id, err := uuid.Parse(d.CardID); err == nil {
			b.StatementCardID = &id
		}
	}

	svc := m.budgetService

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return budgetSavedMsg{err: svc.Save(ctx, b)}
	}
}
