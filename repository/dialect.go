package repository

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"strconv"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect captures what differs between the SQL engines the store runs on.
type Dialect struct {
	// Name doubles as the migrations directory and the golang-migrate driver name.
	Name   string
	Driver string
	// Lower is the SQL function that folds a column to lower case for search.
	Lower string

	placeholder     func(n int) string
	uniqueViolation func(err error) bool
	migrationDriver func(db *sql.DB) (database.Driver, error)
}

var (
	MySQL = Dialect{
		Name:        "mysql",
		Driver:      "mysql",
		Lower:       "LOWER",
		placeholder: questionMark,
		uniqueViolation: func(err error) bool {
			var me *mysqldriver.MySQLError
			return errors.As(err, &me) && me.Number == 1062
		},
		migrationDriver: func(db *sql.DB) (database.Driver, error) {
			return migratemysql.WithInstance(db, &migratemysql.Config{})
		},
	}

	Postgres = Dialect{
		Name:   "postgres",
		Driver: "postgres",
		Lower:  "LOWER",
		placeholder: func(n int) string {
			return "$" + strconv.Itoa(n)
		},
		uniqueViolation: func(err error) bool {
			var pe *pq.Error
			return errors.As(err, &pe) && pe.Code == "23505"
		},
		migrationDriver: func(db *sql.DB) (database.Driver, error) {
			return migratepostgres.WithInstance(db, &migratepostgres.Config{})
		},
	}

	SQLite = Dialect{
		Name:        "sqlite",
		Driver:      "sqlite",
		Lower:       sqliteLower,
		placeholder: questionMark,
		uniqueViolation: func(err error) bool {
			var se *sqlite.Error
			if !errors.As(err, &se) {
				return false
			}
			return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
		},
		migrationDriver: func(db *sql.DB) (database.Driver, error) {
			return migratesqlite.WithInstance(db, &migratesqlite.Config{})
		},
	}
)

// sqliteLower folds with Go's Unicode rules; the built-in LOWER only maps ASCII.
const sqliteLower = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteLower, 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return strings.ToLower(v), nil
		case []byte:
			return strings.ToLower(string(v)), nil
		default:
			return v, nil
		}
	})
}

func questionMark(int) string { return "?" }

// binder accumulates statement arguments and hands out matching placeholders.
type binder struct {
	d    Dialect
	args []any
}

func (b *binder) bind(v any) string {
	b.args = append(b.args, v)
	return b.d.placeholder(len(b.args))
}
