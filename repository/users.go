package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hpmalinova/Expense-Tracker/contract"
	"github.com/hpmalinova/Expense-Tracker/model"
)

type UserRepoSQL struct {
	db *sql.DB
	d  Dialect
}

func NewUserRepoSQL(db *sql.DB, d Dialect) *UserRepoSQL {
	return &UserRepoSQL{db: db, d: d}
}

func (u *UserRepoSQL) Create(ctx context.Context, user *model.User) (*model.User, error) {
	b := &binder{d: u.d}
	statement := "INSERT INTO users(id, name, email, password_hash, created_at) VALUES(" +
		b.bind(user.ID) + ", " + b.bind(user.Name) + ", " + b.bind(user.Email) + ", " +
		b.bind(user.PasswordHash) + ", " + b.bind(user.CreatedAt.UTC()) + ")"

	if _, err := u.db.ExecContext(ctx, statement, b.args...); err != nil {
		if u.d.uniqueViolation(err) {
			return nil, contract.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (u *UserRepoSQL) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.findOne(ctx, "email", email)
}

func (u *UserRepoSQL) FindByID(ctx context.Context, id string) (*model.User, error) {
	return u.findOne(ctx, "id", id)
}

func (u *UserRepoSQL) findOne(ctx context.Context, column, value string) (*model.User, error) {
	statement := "SELECT id, name, email, password_hash, created_at FROM users WHERE " +
		column + " = " + u.d.placeholder(1)

	user := &model.User{}
	err := u.db.QueryRowContext(ctx, statement, value).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contract.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user by %s: %w", column, err)
	}
	return user, nil
}
