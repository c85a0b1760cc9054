package entry

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Service contains the business logic for entries
type Service struct {
	repo  Repository
	users UserChecker
}

// NewService creates a new entry service
func NewService(repo Repository, users UserChecker) *Service {
	return &Service{repo: repo, users: users}
}

// Validate checks the required fields in a fixed order and returns the first violation.
func (s *Service) Validate(e *Entry) error {
	if strings.TrimSpace(e.Description) == "" || utf8.RuneCountInString(e.Description) > MaxDescriptionLength {
		return ErrInvalidDescription
	}
	if e.Month < 1 || e.Month > 12 {
		return ErrInvalidMonth
	}
	if len(strconv.Itoa(e.Year)) != 4 || e.Year < 0 {
		return ErrInvalidYear
	}
	if e.UserID <= 0 {
		return ErrMissingUser
	}
	if !validAmount(e.Amount) {
		return ErrInvalidAmount
	}
	if e.Type == "" {
		return ErrMissingType
	}
	return nil
}

// Save validates and stores a new entry. New entries always start as PENDENTE.
func (s *Service) Save(ctx context.Context, e *Entry) (*Entry, error) {
	if err := s.Validate(e); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, e.UserID, ErrUserNotFound); err != nil {
		return nil, err
	}

	e.Status = StatusPending
	return s.repo.Create(ctx, e)
}

// Update validates and stores an existing entry.
func (s *Service) Update(ctx context.Context, e *Entry) (*Entry, error) {
	if e.ID <= 0 {
		return nil, ErrIDRequired
	}
	if err := s.Validate(e); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, e)
}

// Delete removes a stored entry.
func (s *Service) Delete(ctx context.Context, e *Entry) error {
	if e == nil || e.ID <= 0 {
		return ErrIDRequired
	}
	return s.repo.Delete(ctx, e.ID)
}

// UpdateStatus sets the status and stores the entry.
func (s *Service) UpdateStatus(ctx context.Context, e *Entry, status Status) (*Entry, error) {
	e.Status = status
	return s.Update(ctx, e)
}

// GetByID retrieves an entry by ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Entry, error) {
	if id <= 0 {
		return nil, ErrEntryNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Search returns the entries matching the filter.
func (s *Service) Search(ctx context.Context, f Filter) ([]*Entry, error) {
	if f.UserID > 0 {
		if err := s.requireUser(ctx, f.UserID, ErrSearchUser); err != nil {
			return nil, err
		}
	}
	f.Description = strings.TrimSpace(f.Description)
	return s.repo.Search(ctx, f)
}

// Balance is settled income minus settled expenses for the user.
func (s *Service) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	income, err := s.repo.SumAmount(ctx, userID, TypeIncome, StatusSettled)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum income: %w", err)
	}
	expense, err := s.repo.SumAmount(ctx, userID, TypeExpense, StatusSettled)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return income.Sub(expense), nil
}

// validAmount accepts positive values that fit NUMERIC(16,2) without rounding.
func validAmount(d decimal.Decimal) bool {
	if !d.IsPositive() || d.GreaterThanOrEqual(MaxAmount) {
		return false
	}
	return d.Equal(d.Round(AmountScale))
}

func (s *Service) requireUser(ctx context.Context, userID int64, notFound error) error {
	exists, err := s.users.ExistsByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check user %d: %w", userID, err)
	}
	if !exists {
		return notFound
	}
	return nil
}
