// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package db

import (
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
)

//go:embed migrations/sqlite/*.sql
var sqliteFS embed.FS

//go:embed migrations/postgres/*.sql
var postgresFS embed.FS

// dialect describes where the migrations of one SQL backend live and how
// golang-migrate talks to it.
type dialect struct {
	name      string
	fs        fs.FS
	path      string
	newDriver func(*sql.DB) (database.Driver, error)
}

var (
	sqliteDialect = dialect{
		name: "sqlite",
		fs:   sqliteFS,
		path: "migrations/sqlite",
		newDriver: func(db *sql.DB) (database.Driver, error) {
			return sqlite.WithInstance(db, &sqlite.Config{})
		},
	}

	postgresDialect = dialect{
		name: "postgres",
		fs:   postgresFS,
		path: "migrations/postgres",
		newDriver: func(db *sql.DB) (database.Driver, error) {
			return postgres.WithInstance(db, &postgres.Config{})
		},
	}
)

// migrateUp brings the prev_outputs schema of db up to date and returns the
// schema version it ends at. A schema left dirty by an interrupted migration
// is reported as an error.
func migrateUp(db *sql.DB, d dialect) (uint, error) {
	sourceDriver, err := iofs.New(d.fs, d.path)
	if err != nil {
		return 0, fmt.Errorf("create source driver: %w", err)
	}

	driver, err := d.newDriver(db)
	if err != nil {
		return 0, fmt.Errorf("create %s driver: %w", d.name, err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, d.name, driver)
	if err != nil {
		return 0, fmt.Errorf("create migrate instance: %w", err)
	}

	before, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("read %s schema version: %w", d.name, err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read %s schema version: %w", d.name, err)
	}
	if dirty {
		return 0, fmt.Errorf("%s schema version %d is dirty", d.name,
			version)
	}

	if version != before {
		log.Infof("Migrated %s output index schema from version %d "+
			"to %d", d.name, before, version)
	} else {
		log.Debugf("Output index %s schema at version %d", d.name,
			version)
	}

	return version, nil
}

// ApplySQLiteMigrations applies all SQLite migrations to the database and
// returns the resulting schema version.
func ApplySQLiteMigrations(db *sql.DB) (uint, error) {
	return migrateUp(db, sqliteDialect)
}

// ApplyPostgresMigrations applies all PostgreSQL migrations to the database
// and returns the resulting schema version.
func ApplyPostgresMigrations(db *sql.DB) (uint, error) {
	return migrateUp(db, postgresDialect)
}
