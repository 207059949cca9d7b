package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/category"
	"github.com/MrJamesThe3rd/cardcycle/internal/money"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
)

var listDateFilters = []Timeframe{
	TimeframeCurrentCycle,
	TimeframePreviousCycle,
	TimeframeThisMonth,
	TimeframeLastMonth,
	TimeframeAll,
}

type ListModel struct {
	CommonModel
	txService       *transaction.Service
	categoryService *category.Service
	userID          uuid.UUID
	anchorDay       int

	state      listState
	table      table.Model
	txs        []*transaction.Transaction
	categories []*category.Category
	names      map[uuid.UUID]string
	form       *huh.Form
	draft      *txDraft

	typeFilterIdx int
	dateFilterIdx int

	filter  transaction.ListFilter
	loading bool
	err     error
	status  string
}

type txDraft struct {
	Description string
	CategoryID  string
}

func NewListModel(txSvc *transaction.Service, categorySvc *category.Service, userID uuid.UUID, anchorDay int) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 18},
		{Title: "Original", Width: 14},
		{Title: "Category", Width: 16},
		{Title: "Description", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())

	m := ListModel{
		txService:       txSvc,
		categoryService: categorySvc,
		userID:          userID,
		anchorDay:       anchorDay,
		table:           t,
		loading:         true,
	}
	m.applyFilter(time.Now())

	return m
}

func (m ListModel) Title() string { return "Transactions List" }
func (m ListModel) ShortHelp() string {
	if m.state == listStateEdit {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | e: edit | x: delete | t: type filter | d: date filter | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.txs = msg.txs
		m.categories = msg.categories
		m.names = make(map[uuid.UUID]string, len(msg.categories))
		for _, c := range msg.categories {
			m.names[c.ID] = c.Name
		}
		m.refreshTable()
		return m, nil

	case listSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "e":
			return m.enterEditMode()
		case "x":
			return m, m.deleteCmd()
		case "t":
			m.typeFilterIdx = (m.typeFilterIdx + 1) % 3
			m.applyFilter(time.Now())
			return m, m.loadTxsCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % len(listDateFilters)
			m.applyFilter(time.Now())
			return m, m.loadTxsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return m, nil
	}

	tx := m.txs[idx]
	m.draft = &txDraft{Description: tx.Description}
	if tx.CategoryID != nil {
		m.draft.CategoryID = tx.CategoryID.String()
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.draft.Description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description cannot be empty")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(categoryOptions(m.categories)...).
				Value(&m.draft.CategoryID),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()
	return m, m.form.Init()
}

func categoryOptions(categories []*category.Category) []huh.Option[string] {
	options := []huh.Option[string]{huh.NewOption("Uncategorized", "")}
	for _, c := range categories {
		options = append(options, huh.NewOption(c.Name, c.ID.String()))
	}

	return options
}

func (m ListModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
			m.form = nil
			m.table.Focus()
			return m, nil
		}
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

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	typeLabels := []string{"All", "Expenses", "Income"}

	header := fmt.Sprintf(
		"Filter: [t] Type: %s | [d] Date: %s",
		activeStyle(typeLabels[m.typeFilterIdx]),
		activeStyle(listDateFilters[m.dateFilterIdx].String()),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		faintStyle.Render(m.totals()),
	)

	if m.state == listStateEdit && m.form != nil {
		idx := m.table.Cursor()
		rawDesc := ""
		if idx >= 0 && idx < len(m.txs) {
			rawDesc = m.txs[idx].RawDescription
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(
				fmt.Sprintf("Edit Transaction\n\nOriginal: %s\n\n%s", rawDesc, m.form.View()),
			)

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m ListModel) totals() string {
	var income, expense int64
	for _, tx := range m.txs {
		if tx.Type == transaction.TypeIncome {
			income += tx.VNDAmount
		} else {
			expense += tx.VNDAmount
		}
	}

	return fmt.Sprintf("%d transactions | in %s | out %s", len(m.txs), FormatVND(income), FormatVND(expense))
}

func (m *ListModel) applyFilter(now time.Time) {
	switch m.typeFilterIdx {
	case 1:
		m.filter.Type = new(transaction.TypeExpense)
	case 2:
		m.filter.Type = new(transaction.TypeIncome)
	default:
		m.filter.Type = nil
	}

	tf := listDateFilters[m.dateFilterIdx]
	if tf == TimeframeAll {
		m.filter.StartDate = nil
		m.filter.EndDate = nil
		return
	}

	p := timeframePeriod(tf, now, m.anchorDay)
	m.filter.StartDate = &p.Start
	m.filter.EndDate = &p.End
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		original := ""
		if tx.Currency != "VND" {
			original = money.Amount(tx.Amount, tx.Currency)
		}

		cat := ""
		if tx.CategoryID != nil {
			cat = m.names[*tx.CategoryID]
		}

		desc := tx.Description
		if desc == "" {
			desc = tx.RawDescription
		}

		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			FormatSigned(tx),
			original,
			cat,
			desc,
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	txs        []*transaction.Transaction
	categories []*category.Category
	err        error
}

func (m ListModel) loadTxsCmd() tea.Cmd {
	txSvc := m.txService
	categorySvc := m.categoryService
	userID := m.userID
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := txSvc.List(ctx, userID, filter)
		if err != nil {
			return loadListMsg{err: err}
		}

		categories, err := categorySvc.List(ctx, userID)
		return loadListMsg{txs: txs, categories: categories, err: err}
	}
}

type listSaveMsg struct {
	status string
	err    error
}

func (m ListModel) saveCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	tx := *m.txs[idx]
	d := m.draft
	svc := m.txService

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tx.Description = strings.TrimSpace(d.Description)
		tx.CategoryID = nil
		if id, err := uuid.Parse(d.CategoryID); err == nil {
			tx.CategoryID = &id
		}

		if err := svc.Update(ctx, &tx); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: "Saved."}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	tx := m.txs[idx]
	svc := m.txService
	userID := m.userID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := svc.Delete(ctx, userID, tx.ID); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: fmt.Sprintf("Deleted %s.", FormatDate(tx.Date))}
	}
}
