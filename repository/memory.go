package repository

import (
	"context"
	"sync"

	"github.com/hpmalinova/Expense-Tracker/contract"
	"github.com/hpmalinova/Expense-Tracker/model"
	"github.com/hpmalinova/Expense-Tracker/query"
)

// MemoryStore keeps everything in process. It backs local runs and the HTTP tests.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]model.User
	emails       map[string]string
	transactions map[string]model.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]model.User),
		emails:       make(map[string]string),
		transactions: make(map[string]model.Transaction),
	}
}

func (s *MemoryStore) Users() contract.UserRepo { return memoryUsers{s} }

func (s *MemoryStore) Transactions() contract.TransactionRepo { return memoryTransactions{s} }

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) Create(_ context.Context, user *model.User) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, taken := m.s.emails[user.Email]; taken {
		return nil, contract.ErrUserExists
	}
	m.s.users[user.ID] = *user
	m.s.emails[user.Email] = user.ID
	return user, nil
}

func (m memoryUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.s.mu.RLock()
	id, ok := m.s.emails[email]
	m.s.mu.RUnlock()
	if !ok {
		return nil, contract.ErrNotFound
	}
	return m.FindByID(ctx, id)
}

func (m memoryUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	user, ok := m.s.users[id]
	if !ok {
		return nil, contract.ErrNotFound
	}
	return &user, nil
}

type memoryTransactions struct{ s *MemoryStore }

func (m memoryTransactions) Create(_ context.Context, t *model.Transaction) (*model.Transaction, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	m.s.transactions[t.ID] = *t
	return t, nil
}

func (m memoryTransactions) FindByID(_ context.Context, userID, id string) (*model.Transaction, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	t, ok := m.s.transactions[id]
	if !ok || t.UserID != userID {
		return nil, contract.ErrNotFound
	}
	return &t, nil
}

func (m memoryTransactions) Find(_ context.Context, c query.Criteria) (*model.TransactionPage, error) {
	return query.Page(m.owned(c.UserID), c), nil
}

func (m memoryTransactions) Update(_ context.Context, t *model.Transaction) (*model.Transaction, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	stored, ok := m.s.transactions[t.ID]
	if !ok || stored.UserID != t.UserID {
		return nil, contract.ErrNotFound
	}
	m.s.transactions[t.ID] = *t
	return t, nil
}

func (m memoryTransactions) Delete(_ context.Context, userID, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	t, ok := m.s.transactions[id]
	if !ok || t.UserID != userID {
		return contract.ErrNotFound
	}
	delete(m.s.transactions, id)
	return nil
}

func (m memoryTransactions) Summary(_ context.Context, userID string) (*model.Summary, error) {
	s := query.Summarize(m.owned(userID))
	return &s, nil
}

func (m memoryTransactions) CategoryBreakdown(_ context.Context, userID string) ([]model.CategoryTotal, error) {
	return query.Breakdown(m.owned(userID)), nil
}

func (m memoryTransactions) owned(userID string) []model.Transaction {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var out []model.Transaction
	for _, t := range m.s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}
