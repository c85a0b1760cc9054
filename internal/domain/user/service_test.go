package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minhasfinancas/internal/domain"
	"minhasfinancas/internal/shared/auth"
)

// MockRepository is a mock implementation of Repository interface
type MockRepository struct {
	CreateFunc        func(ctx context.Context, u *User) (*User, error)
	GetByIDFunc       func(ctx context.Context, id int64) (*User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*User, error)
	ExistsByEmailFunc func(ctx context.Context, email string) (bool, error)
	ExistsByIDFunc    func(ctx context.Context, id int64) (bool, error)

	createCalls        int
	existsByEmailCalls int
}

func (m *MockRepository) Create(ctx context.Context, u *User) (*User, error) {
	m.createCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return u, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, ErrUserNotFound
}

func (m *MockRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.existsByEmailCalls++
	if m.ExistsByEmailFunc != nil {
		return m.ExistsByEmailFunc(ctx, email)
	}
	return false, nil
}

func (m *MockRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if m.ExistsByIDFunc != nil {
		return m.ExistsByIDFunc(ctx, id)
	}
	return false, nil
}

func TestValidateEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("free email", func(t *testing.T) {
		svc := NewService(&MockRepository{})
		assert.NoError(t, svc.ValidateEmail(ctx, "email@email.com"))
	})

	t.Run("email already registered", func(t *testing.T) {
		svc := NewService(&MockRepository{
			ExistsByEmailFunc: func(ctx context.Context, email string) (bool, error) {
				return true, nil
			},
		})
		err := svc.ValidateEmail(ctx, "email@email.com")
		assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)
		assert.True(t, domain.IsBusinessError(err))
	})

	t.Run("repository error", func(t *testing.T) {
		svc := NewService(&MockRepository{
			ExistsByEmailFunc: func(ctx context.Context, email string) (bool, error) {
				return false, errors.New("db down")
			},
		})
		err := svc.ValidateEmail(ctx, "email@email.com")
		require.Error(t, err)
		assert.False(t, domain.IsBusinessError(err))
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := &MockRepository{
			CreateFunc: func(ctx context.Context, u *User) (*User, error) {
				saved := *u
				saved.ID = 1
				return &saved, nil
			},
		}
		svc := NewService(repo)

		got, err := svc.Register(ctx, CreateParams{Name: "nome", Email: " email@email.com ", Password: "senha"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
		assert.Equal(t, "nome", got.Name)
		assert.Equal(t, "email@email.com", got.Email)
		assert.NotEqual(t, "senha", got.PasswordHash)
		assert.NoError(t, auth.VerifyPassword(got.PasswordHash, "senha"))
	})

	t.Run("email already registered is not saved", func(t *testing.T) {
		repo := &MockRepository{
			ExistsByEmailFunc: func(ctx context.Context, email string) (bool, error) {
				return true, nil
			},
		}
		svc := NewService(repo)

		_, err := svc.Register(ctx, CreateParams{Name: "nome", Email: "email@email.com", Password: "senha"})
		assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)
		assert.Zero(t, repo.createCalls)
	})

	invalid := []struct {
		name   string
		params CreateParams
		want   error
	}{
		{"missing name", CreateParams{Email: "a@b.com", Password: "x"}, ErrInvalidName},
		{"missing email", CreateParams{Name: "n", Password: "x"}, ErrInvalidEmail},
		{"malformed email", CreateParams{Name: "n", Email: "abc", Password: "x"}, ErrInvalidEmail},
		{"missing password", CreateParams{Name: "n", Email: "a@b.com"}, ErrInvalidPassword},
		{"blank name", CreateParams{Name: "  ", Email: "a@b.com", Password: "x"}, ErrInvalidName},
		{"name too long", CreateParams{Name: strings.Repeat("n", 151), Email: "a@b.com", Password: "x"}, ErrInvalidName},
		{"email too long", CreateParams{Name: "n", Email: strings.Repeat("e", 95) + "@b.com", Password: "x"}, ErrInvalidEmail},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockRepository{}
			svc := NewService(repo)

			_, err := svc.Register(ctx, tt.params)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, domain.IsBusinessError(err))
			assert.Zero(t, repo.existsByEmailCalls, "email lookup must not run")
			assert.Zero(t, repo.createCalls, "user must not be saved")
		})
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("senha")
	require.NoError(t, err)

	stored := &User{ID: 1, Email: "email@email.com", PasswordHash: hash}

	t.Run("Success", func(t *testing.T) {
		svc := NewService(&MockRepository{
			GetByEmailFunc: func(ctx context.Context, email string) (*User, error) {
				return stored, nil
			},
		})
		got, err := svc.Authenticate(ctx, "email@email.com", "senha")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc := NewService(&MockRepository{})
		_, err := svc.Authenticate(ctx, "email@email.com", "senha")
		require.Error(t, err)
		assert.True(t, domain.IsAuthError(err))
		assert.Equal(t, "Usuario nao encontrado para o email informado.", err.Error())
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := NewService(&MockRepository{
			GetByEmailFunc: func(ctx context.Context, email string) (*User, error) {
				return stored, nil
			},
		})
		_, err := svc.Authenticate(ctx, "email@email.com", "123")
		require.Error(t, err)
		assert.True(t, domain.IsAuthError(err))
		assert.Equal(t, "Senha invalida.", err.Error())
	})

	t.Run("repository error is passed through", func(t *testing.T) {
		svc := NewService(&MockRepository{
			GetByEmailFunc: func(ctx context.Context, email string) (*User, error) {
				return nil, errors.New("db down")
			},
		})
		_, err := svc.Authenticate(ctx, "email@email.com", "senha")
		require.Error(t, err)
		assert.False(t, domain.IsAuthError(err))
	})
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&MockRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*User, error) {
			return &User{ID: id}, nil
		},
	})

	got, err := svc.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)

	_, err = svc.GetByID(ctx, 0)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
