// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package db

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

// sqliteQueries are the output index statements in SQLite syntax.
var sqliteQueries = &queries{
	upsertOutput: `
INSERT INTO prev_outputs (tx_hash, output_index, pk_script, amount)
VALUES (?, ?, ?, ?)
ON CONFLICT (tx_hash, output_index) DO UPDATE
SET pk_script = excluded.pk_script, amount = excluded.amount`,

	selectOutput: `
SELECT pk_script, amount FROM prev_outputs
WHERE tx_hash = ? AND output_index = ?`,

	deleteOutput: `
DELETE FROM prev_outputs WHERE tx_hash = ? AND output_index = ?`,

	countOutputs: `SELECT COUNT(*) FROM prev_outputs`,
}

// NewSQLiteOutputIndex creates an OutputIndex over a SQLite database that
// already has the migrations applied.
func NewSQLiteOutputIndex(db *sql.DB) (*OutputIndex, error) {
	return newOutputIndex(db, sqliteQueries)
}

// sqliteDSN returns the data source name used to open the SQLite database at
// path.
func sqliteDSN(path string) string {
	// Enable foreign keys (required for proper constraint enforcement).
	dsn := path + "?_pragma=foreign_keys=on"

	// WAL allows readers to proceed while a writer holds the database.
	dsn += "&_pragma=journal_mode=WAL"

	// Take the write lock when a transaction begins.
	dsn += "&_txlock=immediate"

	// Retry for up to 5 seconds instead of failing with SQLITE_BUSY.
	dsn += "&_pragma=busy_timeout=5000"

	return dsn
}

// OpenSQLite opens the SQLite database at path, applies the migrations and
// returns an OutputIndex over it. The caller owns the returned *sql.DB.
func OpenSQLite(path string) (*OutputIndex, *sql.DB, error) {
	dbConn, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := ApplySQLiteMigrations(dbConn); err != nil {
		_ = dbConn.Close()
		return nil, nil, err
	}

	index, err := NewSQLiteOutputIndex(dbConn)
	if err != nil {
		_ = dbConn.Close()
		return nil, nil, err
	}

	return index, dbConn, nil
}
