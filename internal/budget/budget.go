package budget

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cardcycle/internal/cycle"
)

var (
	ErrNotFound      = errors.New("budget not found")
	ErrInvalidAmount = errors.New("monthly amount must not be negative")
)

// Budget is the per-user spending threshold. There is at most one per user.
type Budget struct {
	UserID          uuid.UUID
	Enabled         bool
	MonthlyAmount   int64 // VND
	StatementCardID *uuid.UUID
	LastUpdated     time.Time
}

// View is a budget together with its status for the active statement period.
// Status is nil when budgeting is disabled or the threshold is zero.
type View struct {
	Budget *Budget
	Status *cycle.Result
}
