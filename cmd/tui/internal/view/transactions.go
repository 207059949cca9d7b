package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cardcycle/internal/card"
	"github.com/MrJamesThe3rd/cardcycle/internal/category"
	"github.com/MrJamesThe3rd/cardcycle/internal/currency"
	"github.com/MrJamesThe3rd/cardcycle/internal/rule"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

type addState int

const (
	addStateLoading addState = iota
	addStateForm
	addStateSaving
	addStateResult
)

// AddTransactionModel records a single transaction by hand.
type AddTransactionModel struct {
	CommonModel
	txService       *transaction.Service
	cardService     *card.Service
	categoryService *category.Service
	ruleService     *rule.Service
	userID          uuid.UUID

	state addState
	form  *huh.Form
	draft *addDraft

	status string
	err    error
}

type addDraft struct {
	Type        string
	Amount      string
	Currency    string
	Date        string
	Description string
	CardID      string
	CategoryID  string
}

func NewAddTransactionModel(
	txSvc *transaction.Service,
	cardSvc *card.Service,
	categorySvc *category.Service,
	ruleSvc *rule.Service,
	userID uuid.UUID,
) AddTransactionModel {
	return AddTransactionModel{
		txService:       txSvc,
		cardService:     cardSvc,
		categoryService: categorySvc,
		ruleService:     ruleSvc,
		userID:          userID,
	}
}

func (m AddTransactionModel) Title() string { return "Add Transaction" }

func (m AddTransactionModel) ShortHelp() string {
	if m.state == addStateResult {
		return "Esc: back | n: add another"
	}
	return "Esc: back | Enter/Tab: navigate form"
}

func (m AddTransactionModel) Init() tea.Cmd {
	return m.loadOptionsCmd()
}

func (m AddTransactionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case addOptionsMsg:
		if msg.err != nil {
			m.state = addStateResult
			m.err = msg.err
			return m, nil
		}

		m.draft = &addDraft{
			Type:     string(transaction.TypeExpense),
			Currency: currency.VND,
			Date:     FormatDate(time.Now()),
		}
		m.form = m.buildForm(msg.cards, msg.categories)
		m.state = addStateForm
		return m, m.form.Init()

	case addSavedMsg:
		m.state = addStateResult
		m.err = msg.err
		m.status = msg.status
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == addStateResult && msg.String() == "n" {
			m.err = nil
			m.status = ""
			m.state = addStateLoading
			return m, m.loadOptionsCmd()
		}
	}

	if m.state != addStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = addStateSaving
	return m, m.saveCmd()
}

func validateAmount(s string) error {
	if _, err := parseAmountInput(s); err != nil {
		return err
	}

	return nil
}

// parseAmountInput reads a positive amount typed with optional thousands commas.
func parseAmountInput(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	d, err := decimal.NewFromString(clean)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("enter a positive amount")
	}

	return d, nil
}

func validateDate(s string) error {
	if _, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), time.Local); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}

	return nil
}

func validateCurrency(s string) error {
	_, err := currency.Normalize(s)
	return err
}

func (m *AddTransactionModel) buildForm(cards []*card.Card, categories []*category.Category) *huh.Form {
	cardOptions := []huh.Option[string]{huh.NewOption("No card", "")}
	for _, c := range cards {
		cardOptions = append(cardOptions, huh.NewOption(c.Name, c.ID.String()))
	}

	categoryOpts := categoryOptions(categories)
	categoryOpts[0] = huh.NewOption("Suggest from rules", "")

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Expense", string(transaction.TypeExpense)),
					huh.NewOption("Income", string(transaction.TypeIncome)),
				).
				Value(&m.draft.Type),
			huh.NewInput().
				Title("Amount").
				Value(&m.draft.Amount).
				Validate(validateAmount),
			huh.NewInput().
				Title("Currency").
				CharLimit(3).
				Value(&m.draft.Currency).
				Validate(validateCurrency),
			huh.NewInput().
				Title("Date").
				Value(&m.draft.Date).
				Validate(validateDate),
			huh.NewInput().
				Title("Description").
				Value(&m.draft.Description),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Card").
				Options(cardOptions...).
				Value(&m.draft.CardID),
			huh.NewSelect[string]().
				Title("Category").
				Options(categoryOpts...).
				Value(&m.draft.CategoryID),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m AddTransactionModel) View() string {
	style := lipgloss.NewStyle().Padding(1, 2)

	switch m.state {
	case addStateLoading:
		return style.Render("Loading...")
	case addStateForm:
		return style.Render("New Transaction\n\n" + m.form.View())
	case addStateSaving:
		return style.Render("Saving...")
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(n to try again, Esc to back)")
	}

	return style.Render(successStyle.Render(m.status) + "\n\n(n to add another, Esc to back)")
}

// Messages

type addOptionsMsg struct {
	cards      []*card.Card
	categories []*category.Category
	err        error
}

type addSavedMsg struct {
	status string
	err    error
}

func (m AddTransactionModel) loadOptionsCmd() tea.Cmd {
	cardSvc := m.cardService
	categorySvc := m.categoryService
	userID := m.userID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cards, err := cardSvc.List(ctx, userID)
		if err != nil {
			return addOptionsMsg{err: err}
		}

		categories, err := categorySvc.List(ctx, userID)
		return addOptionsMsg{cards: cards, categories: categories, err: err}
	}
}

func (m AddTransactionModel) saveCmd() tea.Cmd {
	d := *m.draft
	txSvc := m.txService
	ruleSvc := m.ruleService
	userID := m.userID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		amount, err := parseAmountInput(d.Amount)
		if err != nil {
			return addSavedMsg{err: err}
		}

		date, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(d.Date), time.Local)
		if err != nil {
			return addSavedMsg{err: err}
		}

		params := transaction.CreateParams{
			UserID:      userID,
			Type:        transaction.Type(d.Type),
			Amount:      amount,
			Currency:    d.Currency,
			Description: strings.TrimSpace(d.Description),
			Date:        date,
		}

		if id, err := uuid.Parse(d.CardID); err == nil {
			params.CardID = &id
		}

		if id, err := uuid.Parse(d.CategoryID); err == nil {
			params.CategoryID = &id
		} else if params.Description != "" {
			suggested, err := ruleSvc.Suggest(ctx, userID, params.Description)
			if err == nil {
				params.CategoryID = suggested
			}
		}

		tx, err := txSvc.Create(ctx, params)
		if err != nil {
			return addSavedMsg{err: err}
		}

		return addSavedMsg{status: fmt.Sprintf("Saved %s on %s.", FormatSigned(tx), FormatDate(tx.Date))}
	}
}
