package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hpmalinova/Expense-Tracker/contract"
	"github.com/hpmalinova/Expense-Tracker/model"
	"github.com/hpmalinova/Expense-Tracker/query"
	"golang.org/x/sync/errgroup"
)

const transactionColumns = "id, user_id, title, amount, category, date, notes, created_at, updated_at"

type TransactionRepoSQL struct {
	db *sql.DB
	d  Dialect
}

func NewTransactionRepoSQL(db *sql.DB, d Dialect) *TransactionRepoSQL {
	return &TransactionRepoSQL{db: db, d: d}
}

func (r *TransactionRepoSQL) Create(ctx context.Context, t *model.Transaction) (*model.Transaction, error) {
	b := &binder{d: r.d}
	statement := "INSERT INTO transactions(" + transactionColumns + ") VALUES(" +
		b.bind(t.ID) + ", " + b.bind(t.UserID) + ", " + b.bind(t.Title) + ", " +
		b.bind(t.Amount) + ", " + b.bind(t.Category) + ", " + b.bind(t.Date.UTC()) + ", " +
		b.bind(t.Notes) + ", " + b.bind(t.CreatedAt.UTC()) + ", " + b.bind(t.UpdatedAt.UTC()) + ")"

	if _, err := r.db.ExecContext(ctx, statement, b.args...); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (r *TransactionRepoSQL) FindByID(ctx context.Context, userID, id string) (*model.Transaction, error) {
	b := &binder{d: r.d}
	statement := "SELECT " + transactionColumns + " FROM transactions WHERE id = " + b.bind(id) +
		" AND user_id = " + b.bind(userID)

	t, err := scanTransaction(r.db.QueryRowContext(ctx, statement, b.args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contract.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select transaction: %w", err)
	}
	return t, nil
}

// Find runs the page query and the count query concurrently.
func (r *TransactionRepoSQL) Find(ctx context.Context, c query.Criteria) (*model.TransactionPage, error) {
	var (
		transactions []model.Transaction
		total        int64
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b := &binder{d: r.d}
		statement := "SELECT " + transactionColumns + " FROM transactions" + whereClause(c, b) +
			" ORDER BY date DESC, id ASC LIMIT " + b.bind(c.Limit()) + " OFFSET " + b.bind(c.Offset())

		rows, err := r.db.QueryContext(ctx, statement, b.args...)
		if err != nil {
			return fmt.Errorf("select transactions: %w", err)
		}
		defer rows.Close()

		transactions = []model.Transaction{}
		for rows.Next() {
			t, err := scanTransaction(rows)
			if err != nil {
				return fmt.Errorf("scan transaction: %w", err)
			}
			transactions = append(transactions, *t)
		}
		return rows.Err()
	})
	g.Go(func() error {
		b := &binder{d: r.d}
		statement := "SELECT COUNT(*) FROM transactions" + whereClause(c, b)
		if err := r.db.QueryRowContext(ctx, statement, b.args...).Scan(&total); err != nil {
			return fmt.Errorf("count transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.TransactionPage{
		Transactions: transactions,
		CurrentPage:  c.Page,
		TotalPages:   query.TotalPages(total),
		TotalResults: total,
	}, nil
}

func (r *TransactionRepoSQL) Update(ctx context.Context, t *model.Transaction) (*model.Transaction, error) {
	b := &binder{d: r.d}
	statement := "UPDATE transactions SET title = " + b.bind(t.Title) +
		", amount = " + b.bind(t.Amount) +
		", category = " + b.bind(t.Category) +
		", date = " + b.bind(t.Date.UTC()) +
		", notes = " + b.bind(t.Notes) +
		", updated_at = " + b.bind(t.UpdatedAt.UTC()) +
		" WHERE id = " + b.bind(t.ID) + " AND user_id = " + b.bind(t.UserID)

	res, err := r.db.ExecContext(ctx, statement, b.args...)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TransactionRepoSQL) Delete(ctx context.Context, userID, id string) error {
	b := &binder{d: r.d}
	statement := "DELETE FROM transactions WHERE id = " + b.bind(id) + " AND user_id = " + b.bind(userID)

	res, err := r.db.ExecContext(ctx, statement, b.args...)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return expectAffected(res)
}

func (r *TransactionRepoSQL) Summary(ctx context.Context, userID string) (*model.Summary, error) {
	statement := "SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM transactions WHERE user_id = " + r.d.placeholder(1)

	s := &model.Summary{}
	if err := r.db.QueryRowContext(ctx, statement, userID).Scan(&s.TotalAmount, &s.TotalTransactions); err != nil {
		return nil, fmt.Errorf("summarize transactions: %w", err)
	}
	return s, nil
}

func (r *TransactionRepoSQL) CategoryBreakdown(ctx context.Context, userID string) ([]model.CategoryTotal, error) {
	statement := "SELECT category, SUM(amount) AS total FROM transactions WHERE user_id = " + r.d.placeholder(1) +
		" GROUP BY category ORDER BY total DESC, category ASC"

	rows, err := r.db.QueryContext(ctx, statement, userID)
	if err != nil {
		return nil, fmt.Errorf("group transactions by category: %w", err)
	}
	defer rows.Close()

	totals := []model.CategoryTotal{}
	for rows.Next() {
		var ct model.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	t := &model.Transaction{}
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Amount, &t.Category, &t.Date, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Date = t.Date.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

// expectAffected maps "no row matched the owner-scoped predicate" to ErrNotFound.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return contract.ErrNotFound
	}
	return nil
}
