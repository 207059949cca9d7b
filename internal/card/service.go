package card

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=card
type Repository interface {
	CreateCard(ctx context.Context, c *Card) error
	GetCard(ctx context.Context, userID, id uuid.UUID) (*Card, error)
	ListCards(ctx context.Context, userID uuid.UUID) ([]*Card, error)
	UpdateCard(ctx context.Context, c *Card) error
	DeleteCard(ctx context.Context, userID, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name         string
	LastFour     string
	StatementDay int
	DueDay       int
	CreditLimit  int64
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Card, error) {
	c := &Card{
		UserID:       userID,
		Name:         params.Name,
		LastFour:     params.LastFour,
		StatementDay: params.StatementDay,
		DueDay:       params.DueDay,
		CreditLimit:  params.CreditLimit,
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateCard(ctx, c); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Card, error) {
	return s.repo.GetCard(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Card, error) {
	return s.repo.ListCards(ctx, userID)
}

func (s *Service) Update(ctx context.Context, c *Card) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return s.repo.UpdateCard(ctx, c)
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteCard(ctx, userID, id)
}
