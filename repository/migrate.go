package repository

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// RunMigrations applies the embedded schema for d. It uses its own connection
// because closing a migrate instance closes the database handle it was given.
func RunMigrations(d Dialect, dsn string) error {
	migrateDB, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := d.migrationDriver(migrateDB)
	if err != nil {
		return fmt.Errorf("create %s migration driver: %w", d.Name, err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+d.Name)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, d.Name, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
