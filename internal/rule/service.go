package rule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/category"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

var (
	ErrNotFound       = errors.New("rule not found")
	ErrInvalidPattern = errors.New("pattern is required")
)

// Rule assigns CategoryID to any raw description containing Pattern,
// compared case-insensitively.
type Rule struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Pattern    string
	CategoryID uuid.UUID
	CreatedAt  time.Time
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=rule
type Repository interface {
	FindMatch(ctx context.Context, userID uuid.UUID, rawDescription string) (*uuid.UUID, error)
	CreateRule(ctx context.Context, r *Rule) error
	ListRules(ctx context.Context, userID uuid.UUID) ([]*Rule, error)
	DeleteRule(ctx context.Context, userID, id uuid.UUID) error
}

type CategoryReader interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*category.Category, error)
}

type Service struct {
	repo       Repository
	categories CategoryReader
}

func NewService(repo Repository, categories CategoryReader) *Service {
	return &Service{repo: repo, categories: categories}
}

// Suggest returns the category of the longest matching pattern, or nil.
func (s *Service) Suggest(ctx context.Context, userID uuid.UUID, rawDescription string) (*uuid.UUID, error) {
	if strings.TrimSpace(rawDescription) == "" {
		return nil, nil
	}

	return s.repo.FindMatch(ctx, userID, rawDescription)
}

// Learn remembers that descriptions containing pattern belong to categoryID.
func (s *Service) Learn(ctx context.Context, userID uuid.UUID, pattern string, categoryID uuid.UUID) (*Rule, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, ErrInvalidPattern
	}

	if _, err := s.categories.Get(ctx, userID, categoryID); err != nil {
		return nil, fmt.Errorf("rule category: %w", err)
	}

	r := &Rule{UserID: userID, Pattern: pattern, CategoryID: categoryID}
	if err := s.repo.CreateRule(ctx, r); err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}

	return r, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Rule, error) {
	return s.repo.ListRules(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteRule(ctx, userID, id)
}

// Apply fills in the category of uncategorised rows that match a rule.
func (s *Service) Apply(ctx context.Context, userID uuid.UUID, params []transaction.CreateParams) error {
	for i := range params {
		if params[i].CategoryID != nil {
			continue
		}

		raw := params[i].RawDescription
		if raw == "" {
			raw = params[i].Description
		}

		id, err := s.Suggest(ctx, userID, raw)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}

		params[i].CategoryID = id
	}

	return nil
}
