package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/card"
	"github.com/MrJamesThe3rd/cardcycle/internal/money"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

type TransactionLister interface {
	List(ctx context.Context, userID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type CategoryNamer interface {
	Names(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, error)
}

type CardLister interface {
	List(ctx context.Context, userID uuid.UUID) ([]*card.Card, error)
}

// Item is a transaction with its category and card names resolved.
type Item struct {
	Transaction *transaction.Transaction
	Category    string
	Card        string
}

// Service exports transactions to CSV and plain-text summaries.
type Service struct {
	transactions TransactionLister
	categories   CategoryNamer
	cards        CardLister
}

func NewService(txs TransactionLister, categories CategoryNamer, cards CardLister) *Service {
	return &Service{transactions: txs, categories: categories, cards: cards}
}

// Export loads the user's transactions in [start, end) with names resolved.
// A zero bound leaves that side of the range open.
func (s *Service) Export(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]Item, error) {
	var filter transaction.ListFilter
	if !start.IsZero() {
		filter.StartDate = &start
	}

	if !end.IsZero() {
		filter.EndDate = &end
	}

	txs, err := s.transactions.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	categories, err := s.categories.Names(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	cards, err := s.cards.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}

	cardNames := make(map[uuid.UUID]string, len(cards))
	for _, c := range cards {
		cardNames[c.ID] = c.Name
	}

	items := make([]Item, 0, len(txs))

	for _, t := range txs {
		item := Item{Transaction: t}

		if t.CategoryID != nil {
			item.Category = categories[*t.CategoryID]
		}

		if t.CardID != nil {
			item.Card = cardNames[*t.CardID]
		}

		items = append(items, item)
	}

	return items, nil
}

var csvHeader = []string{"date", "type", "description", "category", "card", "amount", "currency", "vnd_amount"}

// WriteCSV writes items as CSV with a header row.
func (s *Service) WriteCSV(w io.Writer, items []Item) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, item := range items {
		t := item.Transaction

		record := []string{
			t.Date.Format(time.DateOnly),
			string(t.Type),
			t.Description,
			item.Category,
			item.Card,
			t.Amount.String(),
			t.Currency,
			strconv.FormatInt(t.VNDAmount, 10),
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// GenerateSummary renders one line per item followed by the totals.
func (s *Service) GenerateSummary(items []Item) string {
	var (
		sb              strings.Builder
		income, expense int64
	)

	for _, item := range items {
		t := item.Transaction

		sign := "-"
		if t.Type == transaction.TypeIncome {
			sign = "+"
			income += t.VNDAmount
		} else {
			expense += t.VNDAmount
		}

		category := item.Category
		if category == "" {
			category = "Uncategorized"
		}

		line := fmt.Sprintf("* %s | %s | %s%s", t.Date.Format(time.DateOnly), t.Description, sign, money.Amount(t.Amount, t.Currency))
		if t.Currency != "VND" {
			line += " (" + money.VND(t.VNDAmount) + ")"
		}

		sb.WriteString(line + " | " + category + "\n")
	}

	fmt.Fprintf(&sb, "\nIncome: %s\nExpense: %s\nNet: %s\n", money.VND(income), money.VND(expense), money.VND(income-expense))

	return sb.String()
}
