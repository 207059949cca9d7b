package category

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("category not found")
	ErrDuplicate   = errors.New("category with this name already exists")
	ErrInvalidName = errors.New("category name is required")
)

// Category groups transactions for spending breakdowns.
type Category struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Color     string
	Icon      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
