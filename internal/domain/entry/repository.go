package entry

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for entry data access
type Repository interface {
	Create(ctx context.Context, e *Entry) (*Entry, error)

	// Update overwrites every mutable column. Returns ErrEntryNotFound when the row is gone.
	Update(ctx context.Context, e *Entry) (*Entry, error)

	Delete(ctx context.Context, id int64) error

	// GetByID returns ErrEntryNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*Entry, error)

	// Search returns entries matching the filter ordered by year, month and id.
	Search(ctx context.Context, f Filter) ([]*Entry, error)

	// SumAmount totals the amount of a user's entries with the given type and status.
	SumAmount(ctx context.Context, userID int64, t Type, s Status) (decimal.Decimal, error)
}

// UserChecker tells whether a user exists.
type UserChecker interface {
	ExistsByID(ctx context.Context, id int64) (bool, error)
}
