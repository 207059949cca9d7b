package card

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/cycle"
)

var (
	ErrNotFound    = errors.New("card not found")
	ErrInvalidDay  = errors.New("statement and due day must be between 1 and 31")
	ErrInvalidName = errors.New("card name is required")
)

// Card is a credit card whose statement cycle is anchored on StatementDay.
type Card struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string
	LastFour     string
	StatementDay int
	DueDay       int
	CreditLimit  int64 // VND
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
}

func (c *Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidName
	}

	if !validDay(c.StatementDay) || !validDay(c.DueDay) {
		return ErrInvalidDay
	}

	return nil
}

// Period returns the statement period active at now.
func (c *Card) Period(now time.Time) cycle.Period {
	return cycle.PeriodFor(now, c.StatementDay)
}

// DueDate returns the first due day on or after the end of the given period.
func (c *Card) DueDate(p cycle.Period) time.Time {
	end := p.End
	due := time.Date(end.Year(), end.Month(), min(c.DueDay, cycle.DaysIn(end.Year(), end.Month())), 0, 0, 0, 0, end.Location())

	if due.Before(end) {
		next := time.Date(end.Year(), end.Month()+1, 1, 0, 0, 0, 0, end.Location())
		due = time.Date(next.Year(), next.Month(), min(c.DueDay, cycle.DaysIn(next.Year(), next.Month())), 0, 0, 0, 0, end.Location())
	}

	return due
}

func validDay(d int) bool {
	return d >= 1 && d <= 31
}
