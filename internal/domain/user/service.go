package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"minhasfinancas/internal/shared/auth"
)

// Service contains the business logic for user registration and authentication
type Service struct {
	repo Repository
}

// NewService creates a new user service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ValidateEmail fails when the email is already registered
func (s *Service) ValidateEmail(ctx context.Context, email string) error {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return ErrEmailAlreadyRegistered
	}
	return nil
}

// Register validates and stores a new user with a bcrypt password hash
func (s *Service) Register(ctx context.Context, params CreateParams) (*User, error) {
	params.Email = strings.TrimSpace(params.Email)
	params.Name = strings.TrimSpace(params.Name)

	if err := params.Validate(); err != nil {
		return nil, err
	}

	if err := s.ValidateEmail(ctx, params.Email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.Create(ctx, &User{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
	})
}

// Authenticate checks the email/password pair and returns the matching user
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrEmailNotFound
		}
		return nil, err
	}

	if err := auth.VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, ErrWrongPassword
	}

	return u, nil
}

// GetByID retrieves a user by ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	if id <= 0 {
		return nil, ErrUserNotFound
	}
	return s.repo.GetByID(ctx, id)
}
