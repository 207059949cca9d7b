package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/card"
	"github.com/MrJamesThe3rd/cardcycle/internal/money"
	"github.com/MrJamesThe3rd/cardcycle/internal/summary"
)

type cardsState int

const (
	cardsStateBrowse cardsState = iota
	cardsStateAdd
)

// CardsModel lists each card with the spend of its open statement cycle.
type CardsModel struct {
	CommonModel
	cardService    *card.Service
	summaryService *summary.Service
	userID         uuid.UUID

	state    cardsState
	table    table.Model
	balances []summary.CardBalance
	form     *huh.Form

	loading bool
	status  string

	// The form binds to draft's fields; it is shared across model copies.
	draft *cardDraft
}

type cardDraft struct {
	Name      string
	LastFour  string
	Statement string
	Due       string
	Limit     string
}

func NewCardsModel(cardSvc *card.Service, summarySvc *summary.Service, userID uuid.UUID) CardsModel {
	columns := []table.Column{
		{Title: "Card", Width: 18},
		{Title: "Cycle", Width: 25},
		{Title: "Spending", Width: 16},
		{Title: "Limit", Width: 16},
		{Title: "Used", Width: 8},
		{Title: "Due", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	t.SetStyles(tableStyles())

	return CardsModel{
		cardService:    cardSvc,
		summaryService: summarySvc,
		userID:         userID,
		table:          t,
		loading:        true,
	}
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	return s
}

func (m CardsModel) Title() string { return "Cards" }

func (m CardsModel) ShortHelp() string {
	if m.state == cardsStateAdd {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | a: add card | x: delete | r: refresh"
}

func (m CardsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m CardsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadCardsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.balances = msg.balances
		m.refreshTable()
		return m, nil

	case cardSavedMsg:
		m.state = cardsStateBrowse
		m.form = nil
		m.table.Focus()

		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == cardsStateAdd {
		return m.updateAdd(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			return m.enterAddMode()
		case "x":
			return m, m.deleteCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func validateDay(s string) error {
	d, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || d < 1 || d > 31 {
		return fmt.Errorf("enter a day between 1 and 31")
	}

	return nil
}

func validateVND(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	if _, err := parseVND(s); err != nil {
		return err
	}

	return nil
}

// parseVND reads a whole-dong amount, tolerating thousands separators.
func parseVND(s string) (int64, error) {
	clean := strings.NewReplacer(",", "", ".", "", " ", "", "₫", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, nil
	}

	v, err := strconv.ParseInt(clean, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("enter a non-negative amount in VND")
	}

	return v, nil
}

func (m CardsModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.draft = &cardDraft{}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.draft.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Last four digits").
				CharLimit(4).
				Value(&m.draft.LastFour),
			huh.NewInput().
				Title("Statement day").
				Placeholder("1-31").
				Value(&m.draft.Statement).
				Validate(validateDay),
			huh.NewInput().
				Title("Due day").
				Placeholder("1-31").
				Value(&m.draft.Due).
				Validate(validateDay),
			huh.NewInput().
				Title("Credit limit (VND)").
				Value(&m.draft.Limit).
				Validate(validateVND),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = cardsStateAdd
	m.table.Blur()
	return m, m.form.Init()
}

func (m CardsModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = cardsStateBrowse
		m.form = nil
		m.table.Focus()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.createCmd()
}

func (m CardsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading cards...")
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView
	if len(m.balances) == 0 {
		content = faintStyle.Render("No cards yet. Press a to add one.")
	}

	if m.state == cardsStateAdd && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("New Card\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *CardsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.balances))
	for _, b := range m.balances {
		name := b.Card.Name
		if b.Card.LastFour != "" {
			name += " ••" + b.Card.LastFour
		}

		limit, used := "-", "-"
		if b.Card.CreditLimit > 0 {
			limit = FormatVND(b.Card.CreditLimit)
			used = money.Percent(b.Utilization)
		}

		rows = append(rows, table.Row{
			name,
			FormatPeriod(b.Period),
			FormatVND(b.Spending),
			limit,
			used,
			FormatDate(b.DueDate),
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadCardsMsg struct {
	balances []summary.CardBalance
	err      error
}

type cardSavedMsg struct {
	status string
	err    error
}

func (m CardsModel) loadCmd() tea.Cmd {
	svc := m.summaryService
	userID := m.userID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		balances, err := svc.CardBalances(ctx, userID, time.Now())
		return loadCardsMsg{balances: balances, err: err}
	}
}

func (m CardsModel) createCmd() tea.Cmd {
	d := m.draft
	statement, _ := strconv.Atoi(strings.TrimSpace(d.Statement))
	due, _ := strconv.Atoi(strings.TrimSpace(d.Due))
	limit, _ := parseVND(d.Limit)

	params := card.CreateParams{
		Name:         strings.TrimSpace(d.Name),
		LastFour:     strings.TrimSpace(d.LastFour),
		StatementDay: statement,
		DueDay:       due,
		CreditLimit:  limit,
	}
	svc := m.cardService
	userID := m.userID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		c, err := svc.Create(ctx, userID, params)
		if err != nil {
			return cardSavedMsg{err: err}
		}

		return cardSavedMsg{status: fmt.Sprintf("Added %s.", c.Name)}
	}
}

func (m CardsModel) deleteCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.balances) {
		return nil
	}

	c := m.balances[idx].Card
	svc := m.cardService
	userID := m.userID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := svc.Delete(ctx, userID, c.ID); err != nil {
			return cardSavedMsg{err: err}
		}

		return cardSavedMsg{status: fmt.Sprintf("Deleted %s.", c.Name)}
	}
}
