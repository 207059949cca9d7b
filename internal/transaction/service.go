package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cardcycle/internal/currency"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	ListTransactions(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error

	BeginImport(ctx context.Context, userID uuid.UUID, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Transaction, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

// Converter normalizes an amount in a currency into VND.
type Converter interface {
	ToVND(ctx context.Context, amount decimal.Decimal, currency string) (int64, error)
}

type Service struct {
	repo      Repository
	converter Converter
	loc       *time.Location
}

type Option func(*Service)

// WithLocation sets the zone calendar days are taken in when matching
// imported rows against stored ones. The default is time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func NewService(repo Repository, converter Converter, opts ...Option) *Service {
	s := &Service{repo: repo, converter: converter, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateParams struct {
	UserID         uuid.UUID
	CardID         *uuid.UUID
	CategoryID     *uuid.UUID
	Type           Type
	Amount         decimal.Decimal
	Currency       string
	Description    string
	RawDescription string
	Date           time.Time
}

// ListFilter narrows a listing; nil fields are ignored. EndDate is exclusive.
type ListFilter struct {
	CardID     *uuid.UUID
	CategoryID *uuid.UUID
	Type       *Type
	StartDate  *time.Time
	EndDate    *time.Time
}

func (p CreateParams) validate() error {
	if !p.Type.Valid() {
		return ErrInvalidType
	}

	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if p.Date.IsZero() {
		return ErrInvalidDate
	}

	return nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	tx, err := s.build(ctx, params)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, userID, filter)
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, userID, id)
}

// Update persists an edited transaction, re-normalizing its VND amount.
func (s *Service) Update(ctx context.Context, tx *Transaction) error {
	params := CreateParams{Type: tx.Type, Amount: tx.Amount, Date: tx.Date}
	if err := params.validate(); err != nil {
		return err
	}

	code, err := currency.Normalize(tx.Currency)
	if err != nil {
		return err
	}

	vnd, err := s.converter.ToVND(ctx, tx.Amount, code)
	if err != nil {
		return fmt.Errorf("convert amount: %w", err)
	}

	tx.Currency = code
	tx.VNDAmount = vnd

	return s.repo.UpdateTransaction(ctx, tx)
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, userID, id)
}

type ImportResult struct {
	Imported  []*Transaction
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Transaction
}

type dupKey struct {
	Date           string
	Amount         string
	Type           Type
	RawDescription string
}

func (s *Service) keyOf(date time.Time, amount decimal.Decimal, typ Type, raw string) dupKey {
	return dupKey{
		Date:           date.In(s.loc).Format(time.DateOnly),
		Amount:         amount.String(),
		Type:           typ,
		RawDescription: raw,
	}
}

// ImportBatch stores parsed statement rows unless some of them already exist.
// On conflicts nothing is written and the caller gets both lists back to
// confirm through CreateBatch.
func (s *Service) ImportBatch(ctx context.Context, userID uuid.UUID, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	minDate, maxDate := s.dateRange(params)

	itx, err := s.repo.BeginImport(ctx, userID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Transaction, len(duplicates))
	for _, d := range duplicates {
		lookup[s.keyOf(d.Date, d.Amount, d.Type, d.RawDescription)] = d
	}

	var (
		newParams []CreateParams
		conflicts []Conflict
	)

	for _, p := range params {
		if existing, found := lookup[s.keyOf(p.Date, p.Amount, p.Type, p.RawDescription)]; found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	txs, err := s.buildAll(ctx, newParams)
	if err != nil {
		return nil, err
	}

	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: txs}, nil
}

func (s *Service) CreateBatch(ctx context.Context, userID uuid.UUID, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	txs, err := s.buildAll(ctx, params)
	if err != nil {
		return nil, err
	}

	minDate, maxDate := s.dateRange(params)

	itx, err := s.repo.BeginImport(ctx, userID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return txs, nil
}

func (s *Service) build(ctx context.Context, p CreateParams) (*Transaction, error) {
	code, err := currency.Normalize(p.Currency)
	if err != nil {
		return nil, err
	}

	vnd, err := s.converter.ToVND(ctx, p.Amount, code)
	if err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}

	return &Transaction{
		UserID:         p.UserID,
		CardID:         p.CardID,
		CategoryID:     p.CategoryID,
		Type:           p.Type,
		Amount:         p.Amount,
		Currency:       code,
		VNDAmount:      vnd,
		Description:    p.Description,
		RawDescription: p.RawDescription,
		Date:           p.Date,
	}, nil
}

func (s *Service) buildAll(ctx context.Context, params []CreateParams) ([]*Transaction, error) {
	txs := make([]*Transaction, len(params))

	for i, p := range params {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		tx, err := s.build(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		txs[i] = tx
	}

	return txs, nil
}

// dateRange returns the first and last calendar day of params as midnights in
// the service location.
func (s *Service) dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return s.midnight(minDate), s.midnight(maxDate)
}

func (s *Service) midnight(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}
