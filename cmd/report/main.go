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

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/hpmalinova/Expense-Tracker/config"
	"github.com/hpmalinova/Expense-Tracker/contract"
	"github.com/hpmalinova/Expense-Tracker/repository"
	"github.com/hpmalinova/Expense-Tracker/rest"
)

func main() {
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg := config.Load()

	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Email of the user to report on")
	backend := fs.String("backend", cfg.DataBackend, "Store backend: "+strings.Join(repository.Backends, ", "))
	sqlitePath := fs.String("sqlite", cfg.SQLiteDBPath, "Path to SQLite database file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		fmt.Fprintln(stdout, "Usage: report -email <email> [-backend <backend>] [-sqlite <db_path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email")
	}

	opts := cfg.RepositoryOptions()
	opts.Backend = *backend
	opts.SQLitePath = *sqlitePath

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := repository.Open(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	user, err := store.Users().FindByEmail(ctx, rest.NormalizeEmail(*email))
	if errors.Is(err, contract.ErrNotFound) {
		return fmt.Errorf("user %s not found", *email)
	}
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	summary, err := store.Transactions().Summary(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to summarize transactions: %w", err)
	}
	breakdown, err := store.Transactions().CategoryBreakdown(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load category breakdown: %w", err)
	}

	fmt.Fprintf(stdout, "Report for %s <%s>\n\n", user.Name, user.Email)

	table := tablewriter.NewWriter(stdout)
	table.SetHeader([]string{"Total amount", "Transactions"})
	table.Append([]string{formatAmount(summary.TotalAmount), strconv.FormatInt(summary.TotalTransactions, 10)})
	table.Render()

	fmt.Fprintln(stdout)

	table = tablewriter.NewWriter(stdout)
	table.SetHeader([]string{"Category", "Total"})
	for _, row := range breakdown {
		table.Append([]string{row.Category, formatAmount(row.Total)})
	}
	table.Render()
	return nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
