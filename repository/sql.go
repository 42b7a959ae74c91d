package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/hpmalinova/Expense-Tracker/contract"
)

// SQLStore serves users and transactions from one relational database.
type SQLStore struct {
	db           *sql.DB
	users        *UserRepoSQL
	transactions *TransactionRepoSQL
}

func NewSQLStore(db *sql.DB, d Dialect) *SQLStore {
	return &SQLStore{
		db:           db,
		users:        NewUserRepoSQL(db, d),
		transactions: NewTransactionRepoSQL(db, d),
	}
}

// OpenMySQL forces the DSN options the store depends on: DATETIME scanning into
// time.Time in UTC, and affected-row counts that include unchanged rows.
func OpenMySQL(ctx context.Context, dsn string) (*SQLStore, error) {
	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true

	return openSQL(ctx, MySQL, cfg.FormatDSN())
}

func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	return openSQL(ctx, Postgres, dsn)
}

func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	store, err := openSQL(ctx, SQLite, path)
	if err != nil {
		return nil, err
	}
	// single writer; concurrent readers queue on the pool
	store.db.SetMaxOpenConns(1)
	return store, nil
}

func openSQL(ctx context.Context, d Dialect, dsn string) (*SQLStore, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d.Name, err)
	}

	db.SetConnMaxLifetime(time.Minute * 5)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(time.Minute * 3)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", d.Name, err)
	}

	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, err
	}

	return NewSQLStore(db, d), nil
}

func (s *SQLStore) Users() contract.UserRepo { return s.users }

func (s *SQLStore) Transactions() contract.TransactionRepo { return s.transactions }

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLStore) Close() error { return s.db.Close() }
