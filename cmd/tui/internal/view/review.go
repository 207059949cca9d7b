package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/category"
	"github.com/MrJamesThe3rd/cardcycle/internal/rule"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

type ReviewState int

const (
	StateSelectTimeframe ReviewState = iota
	StateLoading
	StateReviewing
	StateDone
)

// ReviewModel walks through uncategorized transactions one at a time. Picking
// a category can also teach a rule so later imports are categorized on their own.
type ReviewModel struct {
	CommonModel
	txService       *transaction.Service
	categoryService *category.Service
	ruleService     *rule.Service
	userID          uuid.UUID

	state           ReviewState
	timeframePicker TimeframePicker

	queue      []*transaction.Transaction
	currentTx  *transaction.Transaction
	categories []*category.Category
	form       *huh.Form
	draft      *reviewDraft

	status     string
	totalCount int
}

type reviewDraft struct {
	CategoryID string
	Pattern    string
}

func NewReviewModel(
	txSvc *transaction.Service,
	categorySvc *category.Service,
	ruleSvc *rule.Service,
	userID uuid.UUID,
	anchorDay int,
) ReviewModel {
	return ReviewModel{
		txService:       txSvc,
		categoryService: categorySvc,
		ruleService:     ruleSvc,
		userID:          userID,
		timeframePicker: NewTimeframePicker(anchorDay),
		state:           StateSelectTimeframe,
	}
}

func (m ReviewModel) Title() string { return "Categorize Transactions" }

func (m ReviewModel) ShortHelp() string {
	if m.state == StateReviewing {
		return "Enter: save & next | Esc: stop"
	}
	return "Esc: back | Enter: select"
}

func (m ReviewModel) Init() tea.Cmd {
	return nil
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.state = StateLoading
		return m, m.loadQueueCmd(msg.Start, msg.End)

	case loadQueueMsg:
		if msg.err != nil {
			m.state = StateDone
			m.status = fmt.Sprintf("Error loading transactions: %v", msg.err)
			return m, nil
		}

		m.queue = msg.txs
		m.categories = msg.categories
		m.totalCount = len(m.queue)

		if len(m.categories) == 0 {
			m.state = StateDone
			m.status = "Create a category first."
			return m, nil
		}

		return m.nextTx()

	case suggestionMsg:
		if m.currentTx == nil || msg.txID != m.currentTx.ID {
			return m, nil
		}

		m.draft = &reviewDraft{Pattern: reviewPattern(m.currentTx)}
		if msg.categoryID != nil {
			m.draft.CategoryID = msg.categoryID.String()
		} else {
			m.draft.CategoryID = m.categories[0].ID.String()
		}

		m.form = m.buildForm()
		m.state = StateReviewing
		return m, m.form.Init()

	case saveResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		return m.nextTx()

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			if m.state == StateSelectTimeframe && !m.timeframePicker.IsSelecting() {
				break
			}

			return m, Back
		}
	}

	switch m.state {
	case StateSelectTimeframe:
		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)
		return m, cmd

	case StateReviewing:
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		m.state = StateLoading
		return m, m.saveCmd()
	}

	return m, nil
}

// reviewPattern proposes a rule pattern: the raw statement text when present.
func reviewPattern(tx *transaction.Transaction) string {
	if tx.RawDescription != "" {
		return tx.RawDescription
	}

	return tx.Description
}

func (m ReviewModel) buildForm() *huh.Form {
	options := make([]huh.Option[string], 0, len(m.categories))
	for _, c := range m.categories {
		options = append(options, huh.NewOption(c.Name, c.ID.String()))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Category").
				Options(options...).
				Value(&m.draft.CategoryID),
			huh.NewInput().
				Title("Remember for descriptions containing").
				Description("Leave empty to skip learning a rule").
				Value(&m.draft.Pattern),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m ReviewModel) nextTx() (tea.Model, tea.Cmd) {
	if len(m.queue) == 0 {
		m.currentTx = nil
		m.state = StateDone
		if m.totalCount == 0 {
			m.status = "No uncategorized transactions found."
		} else if m.status == "" {
			m.status = "All done!"
		}

		return m, nil
	}

	m.currentTx = m.queue[0]
	m.queue = m.queue[1:]
	m.state = StateLoading

	return m, m.suggestCmd(m.currentTx)
}

func (m ReviewModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	switch m.state {
	case StateSelectTimeframe:
		return style.Render(m.timeframePicker.View())
	case StateLoading:
		return style.Render("Loading...")
	case StateDone:
		return style.Render(m.status + "\n\n(Esc to back)")
	}

	tx := m.currentTx
	progress := fmt.Sprintf("Reviewing %d/%d", m.totalCount-len(m.queue), m.totalCount)

	info := fmt.Sprintf(
		"Date:   %s\nAmount: %s\nDesc:   %s\nRaw:    %s\n",
		FormatDate(tx.Date),
		FormatSigned(tx),
		tx.Description,
		tx.RawDescription,
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		faintStyle.Render(progress),
		"",
		info,
		m.form.View(),
	)

	if m.status != "" {
		content = errorStyle.Render(m.status) + "\n\n" + content
	}

	return style.Render(content)
}

// Messages

type loadQueueMsg struct {
	txs        []*transaction.Transaction
	categories []*category.Category
	err        error
}

type suggestionMsg struct {
	txID       uuid.UUID
	categoryID *uuid.UUID
}

type saveResultMsg struct {
	err error
}

func (m ReviewModel) loadQueueCmd(start, end time.Time) tea.Cmd {
	txSvc := m.txService
	categorySvc := m.categoryService
	userID := m.userID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var filter transaction.ListFilter
		if !start.IsZero() {
			filter.StartDate = &start
		}
		if !end.IsZero() {
			filter.EndDate = &end
		}

		txs, err := txSvc.List(ctx, userID, filter)
		if err != nil {
			return loadQueueMsg{err: err}
		}

		categories, err := categorySvc.List(ctx, userID)
		if err != nil {
			return loadQueueMsg{err: err}
		}

		return loadQueueMsg{txs: uncategorized(txs), categories: categories}
	}
}

func uncategorized(txs []*transaction.Transaction) []*transaction.Transaction {
	var out []*transaction.Transaction
	for _, tx := range txs {
		if tx.CategoryID == nil {
			out = append(out, tx)
		}
	}

	return out
}

func (m ReviewModel) suggestCmd(tx *transaction.Transaction) tea.Cmd {
	svc := m.ruleService
	userID := m.userID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		id, _ := svc.Suggest(ctx, userID, reviewPattern(tx))
		return suggestionMsg{txID: tx.ID, categoryID: id}
	}
}

func (m ReviewModel) saveCmd() tea.Cmd {
	tx := *m.currentTx
	d := *m.draft
	txSvc := m.txService
	ruleSvc := m.ruleService
	userID := m.userID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()

		categoryID, err := uuid.Parse(d.CategoryID)
		if err != nil {
			return saveResultMsg{err: err}
		}

		if pattern := strings.TrimSpace(d.Pattern); pattern != "" {
			if _, err := ruleSvc.Learn(ctx, userID, pattern, categoryID); err != nil {
				return saveResultMsg{err: err}
			}
		}

		tx.CategoryID = &categoryID

		return saveResultMsg{err: txSvc.Update(ctx, &tx)}
	}
}
