package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cardcycle/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/cardcycle/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/cardcycle/internal/budget/store"
	"github.com/MrJamesThe3rd/cardcycle/internal/cache"
	"github.com/MrJamesThe3rd/cardcycle/internal/card"
	cardStore "github.com/MrJamesThe3rd/cardcycle/internal/card/store"
	"github.com/MrJamesThe3rd/cardcycle/internal/category"
	categoryStore "github.com/MrJamesThe3rd/cardcycle/internal/category/store"
	"github.com/MrJamesThe3rd/cardcycle/internal/config"
	"github.com/MrJamesThe3rd/cardcycle/internal/currency"
	"github.com/MrJamesThe3rd/cardcycle/internal/database"
	"github.com/MrJamesThe3rd/cardcycle/internal/export"
	"github.com/MrJamesThe3rd/cardcycle/internal/importer"
	"github.com/MrJamesThe3rd/cardcycle/internal/rule"
	ruleStore "github.com/MrJamesThe3rd/cardcycle/internal/rule/store"
	"github.com/MrJamesThe3rd/cardcycle/internal/summary"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
	txStore "github.com/MrJamesThe3rd/cardcycle/internal/transaction/store"
)

type services struct {
	cards        *card.Service
	categories   *category.Service
	transactions *transaction.Service
	budget       *budget.Service
	summary      *summary.Service
	rules        *rule.Service
	imports      *importer.Service
	exports      *export.Service
}

type model struct {
	svc    services
	userID uuid.UUID

	currentView View
	active      view.View
}

type View int

const (
	ViewMenu View = iota
	ViewBudget
	ViewCards
	ViewOverview
	ViewAdd
	ViewList
	ViewImport
	ViewReview
	ViewExport
)

var menu = []struct {
	key   string
	view  View
	label string
}{
	{"1", ViewBudget, "Budget Status"},
	{"2", ViewCards, "Cards & Statement Cycles"},
	{"3", ViewOverview, "Spending Overview"},
	{"4", ViewAdd, "Add Transaction"},
	{"5", ViewList, "List Transactions"},
	{"6", ViewImport, "Import Statement"},
	{"7", ViewReview, "Categorize Transactions"},
	{"8", ViewExport, "Export Transactions"},
}

func initialModel() model {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	userID, err := uuid.Parse(cfg.TUI.UserID)
	if err != nil {
		slog.Error("TUI_USER_ID must be a valid UUID", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load timezone", "error", err)
		os.Exit(1)
	}

	// Views take today and parse typed dates in the local zone.
	time.Local = loc

	db, err := database.Open(context.Background(), database.FromConfig(cfg))
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	converter := currency.NewConverter(
		currency.NewHTTPSource(cfg.Rates.BaseURL, cfg.Rates.Timeout),
		cache.NewTTL[decimal.Decimal](cfg.Rates.CacheTTL, cfg.Rates.CacheCleanup),
	)

	cardSvc := card.NewService(cardStore.New(db))
	categorySvc := category.NewService(categoryStore.New(db))
	txSvc := transaction.NewService(txStore.New(db), converter, transaction.WithLocation(loc))

	return model{
		svc: services{
			cards:        cardSvc,
			categories:   categorySvc,
			transactions: txSvc,
			budget:       budget.NewService(budgetStore.New(db), cardSvc, txSvc),
			summary:      summary.NewService(cardSvc, txSvc, categorySvc),
			rules:        rule.NewService(ruleStore.New(db), categorySvc),
			imports:      importer.NewService(importer.WithLocation(loc)),
			exports:      export.NewService(txSvc, categorySvc, cardSvc),
		},
		userID:      userID,
		currentView: ViewMenu,
	}
}

// anchorDay is the statement day the budget follows, 1 when it cannot be read.
func (m model) anchorDay() int {
	ctx, cancel := view.DbCtx()
	defer cancel()

	day, err := m.svc.budget.AnchorDay(ctx, m.userID)
	if err != nil {
		slog.Warn("failed to read statement day", "error", err)
		return 1
	}

	return day
}

func (m model) open(v View) view.View {
	s := m.svc

	switch v {
	case ViewBudget:
		return view.NewBudgetModel(s.budget, s.cards, m.userID)
	case ViewCards:
		return view.NewCardsModel(s.cards, s.summary, m.userID)
	case ViewOverview:
		return view.NewOverviewModel(s.summary, m.userID, m.anchorDay())
	case ViewAdd:
		return view.NewAddTransactionModel(s.transactions, s.cards, s.categories, s.rules, m.userID)
	case ViewList:
		return view.NewListModel(s.transactions, s.categories, m.userID, m.anchorDay())
	case ViewImport:
		return view.NewImportModel(s.transactions, s.imports, s.rules, s.cards, m.userID)
	case ViewReview:
		return view.NewReviewModel(s.transactions, s.categories, s.rules, m.userID, m.anchorDay())
	case ViewExport:
		return view.NewExportModel(s.exports, m.userID, m.anchorDay())
	}

	return nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			if msg.String() == "q" {
				return m, tea.Quit
			}

			for _, item := range menu {
				if msg.String() == item.key {
					m.currentView = item.view
					m.active = m.open(item.view)

					return m, m.active.Init()
				}
			}

			return m, nil
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		m.active = nil

		return m, nil
	}

	if m.active == nil {
		return m, nil
	}

	next, cmd := m.active.Update(msg)
	if v, ok := next.(view.View); ok {
		m.active = v
	}

	return m, cmd
}

func (m model) View() string {
	if m.currentView == ViewMenu || m.active == nil {
		var sb strings.Builder

		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Cardcycle") + "\n\n")
		for _, item := range menu {
			fmt.Fprintf(&sb, "%s. %s\n", item.key, item.label)
		}
		sb.WriteString("\nq. Quit")

		return lipgloss.NewStyle().Padding(2).Render(sb.String())
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Render(m.active.Title())
	help := lipgloss.NewStyle().Faint(true).Render(m.active.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingLeft(1).Render(title),
		m.active.View(),
		lipgloss.NewStyle().PaddingLeft(1).Render(help),
	)
}

func main() {
	m := initialModel()

	// slog's default handler writes through the log package, which would draw
	// over the alt screen.
	if f, err := tea.LogToFile("cardcycle-tui.log", "tui"); err == nil {
		defer f.Close()
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
