// Package migrations embeds the SQL schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Status Direction = "status"
)

// seams for tests
var (
	gooseUpContext     = goose.UpContext
	gooseDownContext   = goose.DownContext
	gooseStatusContext = goose.StatusContext
)

// Run applies, rolls back one step, or prints the status of the embedded
// migrations.
func Run(ctx context.Context, db *sql.DB, dir Direction) error {
	goose.SetBaseFS(FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	var err error
	switch dir {
	case Up:
		err = gooseUpContext(ctx, db, ".")
	case Down:
		err = gooseDownContext(ctx, db, ".")
	case Status:
		err = gooseStatusContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown migration direction %q", dir)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", dir, err)
	}
	return nil
}
