// Package migrations applies the embedded schema and sample data migrations
// with golang-migrate.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/R3E-Network/petclinic/internal/config"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Source returns the migration files for the given driver.
func Source(driver string) (fs.FS, error) {
	dir, err := dirFor(driver)
	if err != nil {
		return nil, err
	}
	return fs.Sub(files, dir)
}

func dirFor(driver string) (string, error) {
	switch driver {
	case config.DriverPostgres, config.DriverPgx:
		return "postgres", nil
	case config.DriverSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("migrations: unsupported driver %q", driver)
	}
}

// Up applies all pending migrations. An already up-to-date schema is not an
// error.
func Up(db *sql.DB, driver string) error {
	m, release, err := newMigrate(db, driver)
	if err != nil {
		return err
	}
	defer release()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

// Version reports the applied migration version. Zero means nothing has been
// applied yet.
func Version(db *sql.DB, driver string) (uint, bool, error) {
	m, release, err := newMigrate(db, driver)
	if err != nil {
		return 0, false, err
	}
	defer release()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// newMigrate never hands back the migrate instance's Close: the database
// drivers built by WithInstance close db, which the caller owns. Postgres runs
// on a dedicated connection that the returned closer releases.
func newMigrate(db *sql.DB, driver string) (*migrate.Migrate, func(), error) {
	dir, err := dirFor(driver)
	if err != nil {
		return nil, nil, err
	}

	src, err := iofs.New(files, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("migrations: source: %w", err)
	}
	closers := []func() error{src.Close}
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	var target database.Driver
	switch dir {
	case "postgres":
		ctx := context.Background()
		var conn *sql.Conn
		if conn, err = db.Conn(ctx); err == nil {
			closers = append(closers, conn.Close)
			target, err = postgres.WithConnection(ctx, conn, &postgres.Config{})
		}
	default:
		target, err = sqlite.WithInstance(db, &sqlite.Config{})
	}
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("migrations: %s driver: %w", dir, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dir, target)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("migrations: init: %w", err)
	}
	return m, release, nil
}
