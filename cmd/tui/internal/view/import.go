package view

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/card"
	"github.com/MrJamesThe3rd/cardcycle/internal/currency"
	"github.com/MrJamesThe3rd/cardcycle/internal/importer"
	"github.com/MrJamesThe3rd/cardcycle/internal/importer/statement"
	"github.com/MrJamesThe3rd/cardcycle/internal/money"
	"github.com/MrJamesThe3rd/cardcycle/internal/rule"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateLoading importState = iota
	importStateOptions
	importStateFilePick
	importStateImporting
	importStateConflicts
	importStateResult
)

type ImportModel struct {
	CommonModel
	txService     *transaction.Service
	importService *importer.Service
	ruleService   *rule.Service
	cardService   *card.Service
	userID        uuid.UUID

	state      importState
	filePicker filepicker.Model
	form       *huh.Form
	options    *importOptions

	newParams    []transaction.CreateParams
	conflicts    []transaction.Conflict
	conflictList list.Model
	selected     map[int]bool

	status string
	err    error
}

type importOptions struct {
	Format   string
	CardID   string
	Currency string
}

func NewImportModel(
	txSvc *transaction.Service,
	impSvc *importer.Service,
	ruleSvc *rule.Service,
	cardSvc *card.Service,
	userID uuid.UUID,
) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.SetHeight(15)

	return ImportModel{
		txService:     txSvc,
		importService: impSvc,
		ruleService:   ruleSvc,
		cardService:   cardSvc,
		userID:        userID,
		filePicker:    fp,
		selected:      make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Transactions" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateConflicts:
		return "Space: toggle | a: all | n: none | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.loadCardsCmd()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateConflicts {
			return m.updateConflicts(msg)
		}

	case importCardsMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.options = &importOptions{Currency: currency.VND}
		m.form = buildImportForm(m.options, msg.cards)
		m.state = importStateOptions

		return m, m.form.Init()

	case importResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if len(msg.result.Conflicts) == 0 {
			m.state = importStateResult
			m.status = fmt.Sprintf("Imported %d transactions.", len(msg.result.Imported))

			return m, nil
		}

		m.newParams = msg.result.New
		m.conflicts = msg.result.Conflicts
		m.selected = make(map[int]bool)
		m.state = importStateConflicts

		items := make([]list.Item, len(m.conflicts))
		for i, c := range m.conflicts {
			items[i] = conflictItem{conflict: c, index: i}
		}

		delegate := conflictDelegate{selected: &m.selected}
		m.conflictList = list.New(items, delegate, 80, 20)
		m.conflictList.Title = "Duplicate Conflicts"
		m.conflictList.SetShowStatusBar(false)
		m.conflictList.SetFilteringEnabled(false)
		m.conflictList.SetShowHelp(false)

		return m, nil

	case confirmResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d transactions.", msg.count)

		return m, nil
	}

	if m.state == importStateOptions {
		return m.updateOptions(msg)
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick, importStateResult, importStateConflicts:
		m.err = nil
		m.status = ""
		m.conflicts = nil
		m.newParams = nil
		m.selected = make(map[int]bool)
		m.state = importStateLoading

		return m, m.loadCardsCmd()
	}

	return m, Back
}

func buildImportForm(opts *importOptions, cards []*card.Card) *huh.Form {
	formats := []huh.Option[string]{huh.NewOption("Detect automatically", string(importer.FormatAuto))}
	for _, name := range statement.Names() {
		formats = append(formats, huh.NewOption(name, name))
	}

	cardOptions := []huh.Option[string]{huh.NewOption("No card", "")}
	for _, c := range cards {
		cardOptions = append(cardOptions, huh.NewOption(c.Name, c.ID.String()))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Statement format").
				Options(formats...).
				Value(&opts.Format),
			huh.NewSelect[string]().
				Title("Card").
				Options(cardOptions...).
				Value(&opts.CardID),
			huh.NewInput().
				Title("Currency").
				CharLimit(3).
				Value(&opts.Currency).
				Validate(validateCurrency),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ImportModel) updateOptions(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = importStateFilePick

	return m, m.filePicker.Init()
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.conflictList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.conflicts {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.conflicts {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		return m, m.confirmCmd()
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateLoading:
		return lipgloss.NewStyle().Padding(2).Render("Loading cards...")
	case importStateOptions:
		return lipgloss.NewStyle().Padding(1).Render("Import Statement\n\n" + m.form.View())
	case importStateFilePick:
		return m.viewFilePick()
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateConflicts:
		return lipgloss.NewStyle().Padding(1).Render(m.conflictList.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewFilePick() string {
	format := m.options.Format
	if format == "" {
		format = "auto"
	}

	return lipgloss.NewStyle().Padding(1).Render(
		fmt.Sprintf("Select statement to import (%s, %s):\n\n%s", format, m.options.Currency, m.filePicker.View()),
	)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(
			errorStyle.Render(m.status) +
				"\n\n(Esc to go back)",
		)
	}

	return style.Render(
		successStyle.Render(m.status) +
			"\n\n(Esc to go back)",
	)
}

// Messages

type importResultMsg struct {
	result *transaction.ImportResult
	err    error
}

type confirmResultMsg struct {
	count int
	err   error
}

type importCardsMsg struct {
	cards []*card.Card
	err   error
}

func (m ImportModel) loadCardsCmd() tea.Cmd {
	svc := m.cardService
	userID := m.userID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cards, err := svc.List(ctx, userID)
		return importCardsMsg{cards: cards, err: err}
	}
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	opts := statement.Options{UserID: m.userID}
	if id, err := uuid.Parse(m.options.CardID); err == nil {
		opts.CardID = &id
	}
	opts.Currency, _ = currency.Normalize(m.options.Currency)

	format := importer.Format(m.options.Format)
	userID := m.userID

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		params, err := m.importService.Import(format, f, opts)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		if err := m.ruleService.Apply(ctx, userID, params); err != nil {
			slog.Warn("failed to apply category rules", "error", err)
		}

		result, err := m.txService.ImportBatch(ctx, userID, params)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{result: result}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	newParams := m.newParams
	conflicts := m.conflicts
	selected := m.selected
	userID := m.userID

	return func() tea.Msg {
		var allParams []transaction.CreateParams
		allParams = append(allParams, newParams...)

		for i, c := range conflicts {
			if !selected[i] {
				continue
			}

			allParams = append(allParams, c.Incoming)
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := m.txService.CreateBatch(ctx, userID, allParams)
		if err != nil {
			return confirmResultMsg{err: err}
		}

		return confirmResultMsg{count: len(txs)}
	}
}

// Conflict list item

type conflictItem struct {
	conflict transaction.Conflict
	index    int
}

func (i conflictItem) Title() string       { return "" }
func (i conflictItem) Description() string { return "" }
func (i conflictItem) FilterValue() string { return "" }

// Conflict list delegate

type conflictDelegate struct {
	selected *map[int]bool
}

func (d conflictDelegate) Height() int                             { return 3 }
func (d conflictDelegate) Spacing() int                            { return 0 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if (*d.selected)[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	incoming := item.conflict.Incoming
	existing := item.conflict.Existing

	line1 := fmt.Sprintf("%s%s %s  %s  %s  %s",
		cursor, checkbox,
		FormatDate(incoming.Date),
		incoming.Type,
		money.Amount(incoming.Amount, incoming.Currency),
		incoming.Description,
	)

	line2 := fmt.Sprintf("      Existing: %s  %s  %s",
		FormatDate(existing.Date),
		FormatSigned(existing),
		existing.Description,
	)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
