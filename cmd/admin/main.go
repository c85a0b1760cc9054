package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"minhasfinancas/internal/domain/entry"
	"minhasfinancas/internal/domain/user"
	"minhasfinancas/internal/infrastructure/postgres"
	"minhasfinancas/internal/infrastructure/postgres/migrations"
	"minhasfinancas/internal/shared/config"
	"minhasfinancas/internal/shared/logging"
)

const usage = `Minhas Financas Admin CLI - Management commands for the minhasfinancas API

Usage:
  admin <command> [options]

Commands:
  migrate    Apply, roll back or inspect database migrations
  balance    Print the settled balance (income minus expenses) of users

Examples:
  # Apply all pending migrations
  admin migrate up

  # Roll back the latest migration
  admin migrate down

  # Show applied and pending migrations
  admin migrate status

  # Balance for one user
  admin balance --user-id=1

  # Balance for several users
  admin balance --user-id=1,2,3 --timeout=1m
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	var err error
	switch command {
	case "migrate":
		err = runMigrate(os.Args[2:])
	case "balance":
		err = runBalance(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	timeoutStr := fs.String("timeout", "5m", "Timeout for the operation (e.g., 30s, 5m)")

	fs.Usage = func() {
		fmt.Println("Usage: admin migrate [up|down|status] [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	dir := migrations.Up
	if fs.NArg() > 0 {
		dir = migrations.Direction(strings.ToLower(fs.Arg(0)))
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		return fmt.Errorf("invalid timeout format: %w", err)
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info(ctx, "running migrations", "direction", dir)
	if err := migrations.Run(ctx, db.DB, dir); err != nil {
		return err
	}
	log.Info(ctx, "migrations finished", "direction", dir)
	return nil
}

func runBalance(args []string) error {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)

	userIDStr := fs.String("user-id", "", "User ID(s) to report (comma-separated for multiple)")
	timeoutStr := fs.String("timeout", "1m", "Timeout for the operation (e.g., 30s, 5m)")

	fs.Usage = func() {
		fmt.Println("Usage: admin balance [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  admin balance --user-id=1")
		fmt.Println("  admin balance --user-id=1,2,3")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *userIDStr == "" {
		fmt.Println("Error: must specify --user-id")
		fs.Usage()
		os.Exit(1)
	}

	userIDs, err := parseUserIDs(*userIDStr)
	if err != nil {
		return err
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		return fmt.Errorf("invalid timeout format: %w", err)
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info(ctx, "connected to database")

	userRepo := postgres.NewUserRepository(db)
	users := user.NewService(userRepo)
	entries := entry.NewService(postgres.NewEntryRepository(db), userRepo)

	return reportBalances(ctx, os.Stdout, users, entries, userIDs, log)
}

type userLookup interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

type balanceLookup interface {
	Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
}

// reportBalances prints one block per user. Unknown users are skipped;
// any other failure stops the report.
func reportBalances(ctx context.Context, w io.Writer, users userLookup, balances balanceLookup, ids []int64, log logging.Logger) error {
	for _, id := range ids {
		u, err := users.GetByID(ctx, id)
		if errors.Is(err, user.ErrUserNotFound) {
			log.Warn(ctx, "skipping unknown user", "user_id", id)
			continue
		}
		if err != nil {
			return fmt.Errorf("load user %d: %w", id, err)
		}

		balance, err := balances.Balance(ctx, id)
		if err != nil {
			return fmt.Errorf("balance for user %d: %w", id, err)
		}
		printBalance(w, u, balance)
	}

	return nil
}

func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logging.New(cfg.Log.Level, cfg.Log.Format), nil
}

// parseUserIDs parses a comma-separated list of positive ids.
func parseUserIDs(s string) ([]int64, error) {
	var ids []int64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid user ID '%s'", p)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no user IDs given")
	}
	return ids, nil
}

func printBalance(w io.Writer, u *user.User, balance decimal.Decimal) {
	fmt.Fprintf(w, "\n=== User %d ===\n", u.ID)
	fmt.Fprintf(w, "  Name:    %s\n", u.Name)
	fmt.Fprintf(w, "  Email:   %s\n", u.Email)
	fmt.Fprintf(w, "  Balance: %s\n", balance.StringFixed(2))
}
