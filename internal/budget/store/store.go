package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/budget"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetBudget(ctx context.Context, userID uuid.UUID) (*budget.Budget, error) {
	query := `
		SELECT user_id, enabled, monthly_amount, statement_card_id, last_updated
		FROM budgets
		WHERE user_id = $1
	`

	var b budget.Budget

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&b.UserID, &b.Enabled, &b.MonthlyAmount, &b.StatementCardID, &b.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("getting budget: %w", err)
	}

	return &b, nil
}

func (s *Store) SaveBudget(ctx context.Context, b *budget.Budget) error {
	query := `
		INSERT INTO budgets (user_id, enabled, monthly_amount, statement_card_id, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET enabled = EXCLUDED.enabled,
			monthly_amount = EXCLUDED.monthly_amount,
			statement_card_id = EXCLUDED.statement_card_id,
			last_updated = EXCLUDED.last_updated
	`

	_, err := s.db.ExecContext(ctx, query,
		b.UserID,
		b.Enabled,
		b.MonthlyAmount,
		b.StatementCardID,
		b.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("saving budget: %w", err)
	}

	return nil
}
