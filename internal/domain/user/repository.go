package user

import "context"

// Repository defines the interface for user data access
type Repository interface {
	// Create persists a new user. PasswordHash must already be hashed.
	Create(ctx context.Context, u *User) (*User, error)

	// GetByID returns ErrUserNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail returns ErrUserNotFound when no row matches.
	GetByEmail(ctx context.Context, email string) (*User, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
}
