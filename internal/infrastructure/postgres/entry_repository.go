package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"minhasfinancas/internal/domain/entry"
)

const entryColumns = `id, id_usuario, descricao, mes, ano, valor, tipo, status, data_cadastro`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type EntryRepository struct {
	db *DB
}

func NewEntryRepository(db *DB) *EntryRepository {
	return &EntryRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*entry.Entry, error) {
	var e entry.Entry
	err := row.Scan(
		&e.ID, &e.UserID, &e.Description, &e.Month, &e.Year, &e.Amount,
		&e.Type, &e.Status, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EntryRepository) Create(ctx context.Context, e *entry.Entry) (*entry.Entry, error) {
	query := `
		INSERT INTO financas.lancamento (id_usuario, descricao, mes, ano, valor, tipo, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + entryColumns

	out, err := scanEntry(r.db.QueryRowContext(ctx, query,
		e.UserID, e.Description, e.Month, e.Year, e.Amount, string(e.Type), string(e.Status),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}
	return out, nil
}

func (r *EntryRepository) Update(ctx context.Context, e *entry.Entry) (*entry.Entry, error) {
	query := `
		UPDATE financas.lancamento
		SET id_usuario = $1,
		    descricao = $2,
		    mes = $3,
		    ano = $4,
		    valor = $5,
		    tipo = $6,
		    status = $7
		WHERE id = $8
		RETURNING ` + entryColumns

	out, err := scanEntry(r.db.QueryRowContext(ctx, query,
		e.UserID, e.Description, e.Month, e.Year, e.Amount, string(e.Type), string(e.Status), e.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entry.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
	return out, nil
}

func (r *EntryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM financas.lancamento WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if n == 0 {
		return entry.ErrEntryNotFound
	}
	return nil
}

func (r *EntryRepository) GetByID(ctx context.Context, id int64) (*entry.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM financas.lancamento WHERE id = $1`

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entry.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return e, nil
}

func (r *EntryRepository) Search(ctx context.Context, f entry.Filter) ([]*entry.Entry, error) {
	query, args := buildSearchQuery(f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	defer rows.Close()

	entries := []*entry.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

// buildSearchQuery turns the non-zero filter fields into AND-ed conditions.
// Description matches as a case-insensitive substring; LIKE wildcards in it
// match literally.
func buildSearchQuery(f entry.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.UserID != 0 {
		add("id_usuario = $%d", f.UserID)
	}
	if f.Description != "" {
		add(`descricao ILIKE '%%' || $%d || '%%' ESCAPE '\'`, likeEscaper.Replace(f.Description))
	}
	if f.Month != 0 {
		add("mes = $%d", f.Month)
	}
	if f.Year != 0 {
		add("ano = $%d", f.Year)
	}
	if f.Type != "" {
		add("tipo = $%d", string(f.Type))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}

	var b strings.Builder
	b.WriteString("SELECT " + entryColumns + " FROM financas.lancamento")
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY ano, mes, id")

	return b.String(), args
}

func (r *EntryRepository) SumAmount(ctx context.Context, userID int64, t entry.Type, s entry.Status) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(valor), 0)
		FROM financas.lancamento
		WHERE id_usuario = $1 AND tipo = $2 AND status = $3
	`

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, userID, string(t), string(s)).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum entries: %w", err)
	}
	return total, nil
}
