package entry

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"minhasfinancas/internal/domain"
)

// Type says whether an entry is income or expense.
type Type string

const (
	TypeIncome  Type = "RECEITA"
	TypeExpense Type = "DESPESA"
)

// Status is the settlement state of an entry.
type Status string

const (
	StatusPending   Status = "PENDENTE"
	StatusSettled   Status = "EFETIVADO"
	StatusCancelled Status = "CANCELADO"
)

var (
	ErrEntryNotFound = errors.New("lancamento nao encontrado")
	ErrIDRequired    = errors.New("lancamento id is required")
	ErrForbidden     = errors.New("forbidden: lancamento does not belong to user")

	ErrInvalidDescription = domain.NewBusinessError("Informe uma descriçao valida.")
	ErrInvalidMonth       = domain.NewBusinessError("Informe um mês valido.")
	ErrInvalidYear        = domain.NewBusinessError("Informe um Ano valido.")
	ErrMissingUser        = domain.NewBusinessError("Informe um Usuario.")
	ErrInvalidAmount      = domain.NewBusinessError("Informe um Valor valido.")
	ErrMissingType        = domain.NewBusinessError("Informe um Tipo de Lancamento.")

	ErrInvalidType   = domain.NewBusinessError("Tipo de lancamento invalido.")
	ErrInvalidStatus = domain.NewBusinessError("Nao foi possivel atualizar o status do lancamento, envie um status valido.")
	ErrUserNotFound  = domain.NewBusinessError("Usuario nao encontrado para o Id informado.")
	ErrSearchUser    = domain.NewBusinessError("Nao foi possivel realizar a consulta. Usuario nao encontrado para o Id informado.")
)

// Column limits of financas.lancamento.
const (
	MaxDescriptionLength = 100
	AmountScale          = 2
)

// MaxAmount is the exclusive upper bound of NUMERIC(16,2).
var MaxAmount = decimal.New(1, 14)

// Entry is a ledger entry (lançamento) owned by a user.
type Entry struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"usuario"`
	Description string          `json:"descricao"`
	Month       int             `json:"mes"`
	Year        int             `json:"ano"`
	Amount      decimal.Decimal `json:"valor"`
	Type        Type            `json:"tipo"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"dataCadastro"`
}

// Filter selects entries by example. Zero-valued fields are ignored.
type Filter struct {
	UserID      int64
	Description string
	Month       int
	Year        int
	Type        Type
	Status      Status
}

// ParseType accepts RECEITA or DESPESA in any case.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToUpper(strings.TrimSpace(s))); t {
	case TypeIncome, TypeExpense:
		return t, nil
	}
	return "", ErrInvalidType
}

// ParseStatus accepts PENDENTE, EFETIVADO or CANCELADO in any case.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusSettled, StatusCancelled:
		return st, nil
	}
	return "", ErrInvalidStatus
}
