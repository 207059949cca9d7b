package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/card"
	"github.com/MrJamesThe3rd/cardcycle/internal/cycle"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	GetBudget(ctx context.Context, userID uuid.UUID) (*Budget, error)
	SaveBudget(ctx context.Context, b *Budget) error
}

type CardReader interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*card.Card, error)
}

type TransactionLister interface {
	List(ctx context.Context, userID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type Service struct {
	repo  Repository
	cards CardReader
	txs   TransactionLister
	now   func() time.Time
}

func NewService(repo Repository, cards CardReader, txs TransactionLister) *Service {
	return &Service{repo: repo, cards: cards, txs: txs, now: time.Now}
}

// Get returns the user's budget, or a disabled zero budget when none was saved.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*Budget, error) {
	b, err := s.repo.GetBudget(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &Budget{UserID: userID}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}

	return b, nil
}

func (s *Service) Save(ctx context.Context, b *Budget) error {
	if b.MonthlyAmount < 0 {
		return ErrInvalidAmount
	}

	if b.StatementCardID != nil {
		if _, err := s.cards.Get(ctx, b.UserID, *b.StatementCardID); err != nil {
			return fmt.Errorf("statement card: %w", err)
		}
	}

	b.LastUpdated = s.now()

	if err := s.repo.SaveBudget(ctx, b); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}

	return nil
}

// Status recomputes the budget status for the period active at now. Nothing
// derived here is stored.
func (s *Service) Status(ctx context.Context, userID uuid.UUID, now time.Time) (*View, error) {
	b, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &View{Budget: b}

	if !b.Enabled || b.MonthlyAmount <= 0 {
		return view, nil
	}

	anchor, err := s.anchorFor(ctx, b)
	if err != nil {
		return nil, err
	}

	period := cycle.PeriodFor(now, anchor)
	expense := transaction.TypeExpense

	txs, err := s.txs.List(ctx, userID, transaction.ListFilter{
		Type:      &expense,
		StartDate: &period.Start,
		EndDate:   &period.End,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	entries := make([]cycle.Entry, 0, len(txs))
	for _, tx := range txs {
		entries = append(entries, cycle.Entry{Date: tx.Date.In(now.Location()), Amount: tx.VNDAmount})
	}

	res := cycle.Compute(now, anchor, b.MonthlyAmount, entries)
	view.Status = &res

	return view, nil
}

// AnchorDay returns the day of month the user's statement cycle starts on:
// the budget card's statement day, or 1 without one.
func (s *Service) AnchorDay(ctx context.Context, userID uuid.UUID) (int, error) {
	b, err := s.Get(ctx, userID)
	if err != nil {
		return 0, err
	}

	return s.anchorFor(ctx, b)
}

func (s *Service) anchorFor(ctx context.Context, b *Budget) (int, error) {
	if b.StatementCardID == nil {
		return 1, nil
	}

	c, err := s.cards.Get(ctx, b.UserID, *b.StatementCardID)
	switch {
	case errors.Is(err, card.ErrNotFound):
		// The card was removed after the budget was saved; fall back to the calendar month.
		return 1, nil
	case err != nil:
		return 0, fmt.Errorf("statement card: %w", err)
	}

	return c.StatementDay, nil
}
