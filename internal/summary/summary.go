// Package summary derives read-only spending analytics from cards and
// transactions. Nothing here is persisted.
package summary

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/card"
	"github.com/MrJamesThe3rd/cardcycle/internal/cycle"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

var ErrInvalidRange = errors.New("invalid date range")

const uncategorized = "Uncategorized"

type CardLister interface {
	List(ctx context.Context, userID uuid.UUID) ([]*card.Card, error)
}

type TransactionLister interface {
	List(ctx context.Context, userID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type CategoryNamer interface {
	Names(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, error)
}

type Service struct {
	cards      CardLister
	txs        TransactionLister
	categories CategoryNamer
}

func NewService(cards CardLister, txs TransactionLister, categories CategoryNamer) *Service {
	return &Service{cards: cards, txs: txs, categories: categories}
}

type CardBalance struct {
	Card        *card.Card
	Period      cycle.Period
	Spending    int64
	DueDate     time.Time
	Utilization float64 // percent of CreditLimit, 0 when no limit is set
}

type CategoryTotal struct {
	CategoryID *uuid.UUID
	Name       string
	Amount     int64
	Share      float64 // percent of the range total
}

type MonthTotals struct {
	Year    int
	Month   time.Month
	Income  int64
	Expense int64
	Net     int64
}

type NetWorth struct {
	Income  int64
	Expense int64
	Net     int64
}

// CardBalances reports, per card, the spend inside the statement period active at now.
func (s *Service) CardBalances(ctx context.Context, userID uuid.UUID, now time.Time) ([]CardBalance, error) {
	cards, err := s.cards.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	expense := transaction.TypeExpense
	balances := make([]CardBalance, 0, len(cards))

	for _, c := range cards {
		period := c.Period(now)

		txs, err := s.txs.List(ctx, userID, transaction.ListFilter{
			CardID:    &c.ID,
			Type:      &expense,
			StartDate: &period.Start,
			EndDate:   &period.End,
		})
		if err != nil {
			return nil, fmt.Errorf("list transactions for card %s: %w", c.ID, err)
		}

		spend := cycle.Sum(period, entries(txs, now.Location()))

		b := CardBalance{
			Card:     c,
			Period:   period,
			Spending: spend,
			DueDate:  c.DueDate(period),
		}

		if c.CreditLimit > 0 {
			b.Utilization = float64(spend) / float64(c.CreditLimit) * 100
		}

		balances = append(balances, b)
	}

	return balances, nil
}

// ByCategory groups expenses in [start, end) by category, largest first.
func (s *Service) ByCategory(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]CategoryTotal, error) {
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}

	expense := transaction.TypeExpense

	txs, err := s.txs.List(ctx, userID, transaction.ListFilter{Type: &expense, StartDate: &start, EndDate: &end})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	names, err := s.categories.Names(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("category names: %w", err)
	}

	byID := make(map[uuid.UUID]*CategoryTotal)
	var none *CategoryTotal

	var total int64

	for _, tx := range txs {
		total += tx.VNDAmount

		if tx.CategoryID == nil {
			if none == nil {
				none = &CategoryTotal{Name: uncategorized}
			}

			none.Amount += tx.VNDAmount

			continue
		}

		ct, ok := byID[*tx.CategoryID]
		if !ok {
			id := *tx.CategoryID

			name := names[id]
			if name == "" {
				name = uncategorized
			}

			ct = &CategoryTotal{CategoryID: &id, Name: name}
			byID[id] = ct
		}

		ct.Amount += tx.VNDAmount
	}

	totals := make([]CategoryTotal, 0, len(byID)+1)
	for _, ct := range byID {
		totals = append(totals, *ct)
	}

	if none != nil {
		totals = append(totals, *none)
	}

	for i := range totals {
		if total > 0 {
			totals[i].Share = float64(totals[i].Amount) / float64(total) * 100
		}
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Amount != totals[j].Amount {
			return totals[i].Amount > totals[j].Amount
		}

		return totals[i].Name < totals[j].Name
	})

	return totals, nil
}

// MonthlyTrend returns income and expense for the last months calendar
// months ending with the month of now, oldest first.
func (s *Service) MonthlyTrend(ctx context.Context, userID uuid.UUID, now time.Time, months int) ([]MonthTotals, error) {
	if months < 1 {
		return nil, ErrInvalidRange
	}

	loc := now.Location()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	start := first.AddDate(0, -(months - 1), 0)
	end := first.AddDate(0, 1, 0)

	txs, err := s.txs.List(ctx, userID, transaction.ListFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	trend := make([]MonthTotals, months)
	for i := range trend {
		m := start.AddDate(0, i, 0)
		trend[i] = MonthTotals{Year: m.Year(), Month: m.Month()}
	}

	for _, tx := range txs {
		d := tx.Date.In(loc)
		i := (d.Year()-start.Year())*12 + int(d.Month()) - int(start.Month())

		if i < 0 || i >= months {
			continue
		}

		switch tx.Type {
		case transaction.TypeIncome:
			trend[i].Income += tx.VNDAmount
		case transaction.TypeExpense:
			trend[i].Expense += tx.VNDAmount
		}
	}

	for i := range trend {
		trend[i].Net = trend[i].Income - trend[i].Expense
	}

	return trend, nil
}

// NetWorth is total income minus total expense over every transaction.
func (s *Service) NetWorth(ctx context.Context, userID uuid.UUID) (NetWorth, error) {
	txs, err := s.txs.List(ctx, userID, transaction.ListFilter{})
	if err != nil {
		return NetWorth{}, fmt.Errorf("list transactions: %w", err)
	}

	var nw NetWorth

	for _, tx := range txs {
		switch tx.Type {
		case transaction.TypeIncome:
			nw.Income += tx.VNDAmount
		case transaction.TypeExpense:
			nw.Expense += tx.VNDAmount
		}
	}

	nw.Net = nw.Income - nw.Expense

	return nw, nil
}

func entries(txs []*transaction.Transaction, loc *time.Location) []cycle.Entry {
	out := make([]cycle.Entry, 0, len(txs))
	for _, tx := range txs {
		out = append(out, cycle.Entry{Date: tx.Date.In(loc), Amount: tx.VNDAmount})
	}

	return out
}
