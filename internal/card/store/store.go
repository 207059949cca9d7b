package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/card"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectCardColumns = `
	id, user_id, name, last_four, statement_day, due_day, credit_limit, created_at, updated_at, deleted_at
`

func scanCard(s scanner) (*card.Card, error) {
	var c card.Card

	var lastFour sql.NullString

	if err := s.Scan(
		&c.ID, &c.UserID, &c.Name, &lastFour, &c.StatementDay, &c.DueDay, &c.CreditLimit,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	); err != nil {
		return nil, err
	}

	c.LastFour = lastFour.String

	return &c, nil
}

func (s *Store) CreateCard(ctx context.Context, c *card.Card) error {
	query := `
		INSERT INTO cards (user_id, name, last_four, statement_day, due_day, credit_limit, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.UserID,
		c.Name,
		c.LastFour,
		c.StatementDay,
		c.DueDay,
		c.CreditLimit,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating card: %w", err)
	}

	return nil
}

func (s *Store) GetCard(ctx context.Context, userID, id uuid.UUID) (*card.Card, error) {
	query := `SELECT ` + selectCardColumns + `
		FROM cards
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	c, err := scanCard(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, card.ErrNotFound
		}

		return nil, fmt.Errorf("getting card: %w", err)
	}

	return c, nil
}

func (s *Store) ListCards(ctx context.Context, userID uuid.UUID) ([]*card.Card, error) {
	query := `SELECT ` + selectCardColumns + `
		FROM cards
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	defer rows.Close()

	var cards []*card.Card

	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning card: %w", err)
		}

		cards = append(cards, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cards: %w", err)
	}

	return cards, nil
}

func (s *Store) UpdateCard(ctx context.Context, c *card.Card) error {
	query := `
		UPDATE cards
		SET name = $1, last_four = NULLIF($2, ''), statement_day = $3, due_day = $4, credit_limit = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query,
		c.Name,
		c.LastFour,
		c.StatementDay,
		c.DueDay,
		c.CreditLimit,
		c.ID,
		c.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating card: %w", err)
	}

	return expectRow(res, card.ErrNotFound)
}

func (s *Store) DeleteCard(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		UPDATE cards
		SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting card: %w", err)
	}

	return expectRow(res, card.ErrNotFound)
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return notFound
	}

	return nil
}
