package repository

import (
	"context"
	"fmt"

	"github.com/hpmalinova/Expense-Tracker/contract"
)

const (
	BackendMongo    = "mongo"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Backends lists the accepted values of Options.Backend.
var Backends = []string{BackendMongo, BackendMySQL, BackendPostgres, BackendSQLite, BackendMemory}

type Options struct {
	Backend       string
	MongoURI      string
	MongoDatabase string
	MySQLDSN      string
	PostgresDSN   string
	SQLitePath    string
}

// Open connects to the configured backend and prepares its schema.
func Open(ctx context.Context, o Options) (contract.Store, error) {
	var (
		store contract.Store
		err   error
	)
	switch o.Backend {
	case BackendMongo:
		store, err = asStore(OpenMongo(ctx, o.MongoURI, o.MongoDatabase))
	case BackendMySQL:
		store, err = asStore(OpenMySQL(ctx, o.MySQLDSN))
	case BackendPostgres:
		store, err = asStore(OpenPostgres(ctx, o.PostgresDSN))
	case BackendSQLite:
		store, err = asStore(OpenSQLite(ctx, o.SQLitePath))
	case BackendMemory:
		store = NewMemoryStore()
	default:
		err = fmt.Errorf("unsupported backend %q", o.Backend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// asStore keeps a nil concrete pointer from turning into a non-nil interface.
func asStore[S contract.Store](s S, err error) (contract.Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
