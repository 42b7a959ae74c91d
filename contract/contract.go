package contract

import (
	"context"
	"errors"

	"github.com/hpmalinova/Expense-Tracker/model"
	"github.com/hpmalinova/Expense-Tracker/query"
)

var (
	// ErrNotFound is returned for missing records and for records owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrUserExists is returned when registering an email that is already taken.
	ErrUserExists = errors.New("user already exists")
)

type UserRepo interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// TransactionRepo is owner-scoped: every method takes the caller's user ID and
// never touches records that belong to another user.
type TransactionRepo interface {
	Create(ctx context.Context, t *model.Transaction) (*model.Transaction, error)
	FindByID(ctx context.Context, userID, id string) (*model.Transaction, error)
	Find(ctx context.Context, c query.Criteria) (*model.TransactionPage, error)
	Update(ctx context.Context, t *model.Transaction) (*model.Transaction, error)
	Delete(ctx context.Context, userID, id string) error
	Summary(ctx context.Context, userID string) (*model.Summary, error)
	CategoryBreakdown(ctx context.Context, userID string) ([]model.CategoryTotal, error)
}

// Store bundles the repositories of one backend with its lifecycle.
type Store interface {
	Users() UserRepo
	Transactions() TransactionRepo
	Ping(ctx context.Context) error
	Close() error
}
