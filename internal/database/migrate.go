package database

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/recall/schemas"
)

// Migrate applies every pending migration for the driver of db.
// It returns the schema version after migrating.
func Migrate(db *sqlx.DB) (uint, error) {
	return migrateFS(db, schemas.Migrations)
}

func migrateFS(db *sqlx.DB, migrations fs.FS) (uint, error) {
	driver := db.DriverName()

	var (
		instance migratedb.Driver
		err      error
	)
	switch driver {
	case DriverMySQL:
		instance, err = migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	case DriverSQLite:
		instance, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	default:
		return 0, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return 0, fmt.Errorf("create %s migration driver: %w", driver, err)
	}

	source, err := iofs.New(migrations, "migrations/"+driver)
	if err != nil {
		return 0, fmt.Errorf("load %s migrations: %w", driver, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, instance)
	if err != nil {
		return 0, fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
