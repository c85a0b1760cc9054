package user

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"minhasfinancas/internal/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")

	ErrEmailAlreadyRegistered = domain.NewBusinessError("Ja existe um usuario cadastrado com este email.")
	ErrInvalidName            = domain.NewBusinessError("Informe um nome valido.")
	ErrInvalidEmail           = domain.NewBusinessError("Informe um email valido.")
	ErrInvalidPassword        = domain.NewBusinessError("Informe uma senha valida.")

	ErrEmailNotFound = domain.NewAuthError("Usuario nao encontrado para o email informado.")
	ErrWrongPassword = domain.NewAuthError("Senha invalida.")
)

// Column limits of financas.usuario.
const (
	MaxNameLength  = 150
	MaxEmailLength = 100
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"nome"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"dataCadastro"`
}

type CreateParams struct {
	Name     string
	Email    string
	Password string
}

func (p *CreateParams) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return ErrInvalidName
	}
	email := strings.TrimSpace(p.Email)
	if email == "" || !strings.Contains(email, "@") || utf8.RuneCountInString(email) > MaxEmailLength {
		return ErrInvalidEmail
	}
	if p.Password == "" {
		return ErrInvalidPassword
	}
	return nil
}
