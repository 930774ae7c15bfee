// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package db

import (
	"database/sql"
	"fmt"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// postgresQueries are the output index statements in PostgreSQL syntax.
var postgresQueries = &queries{
	upsertOutput: `
INSERT INTO prev_outputs (tx_hash, output_index, pk_script, amount)
VALUES ($1, $2, $3, $4)
ON CONFLICT (tx_hash, output_index) DO UPDATE
SET pk_script = EXCLUDED.pk_script, amount = EXCLUDED.amount`,

	selectOutput: `
SELECT pk_script, amount FROM prev_outputs
WHERE tx_hash = $1 AND output_index = $2`,

	deleteOutput: `
DELETE FROM prev_outputs WHERE tx_hash = $1 AND output_index = $2`,

	countOutputs: `SELECT COUNT(*) FROM prev_outputs`,
}

// NewPostgresOutputIndex creates an OutputIndex over a PostgreSQL database
// that already has the migrations applied.
func NewPostgresOutputIndex(db *sql.DB) (*OutputIndex, error) {
	return newOutputIndex(db, postgresQueries)
}

// OpenPostgres connects to the PostgreSQL database at dsn, applies the
// migrations and returns an OutputIndex over it. The caller owns the
// returned *sql.DB.
func OpenPostgres(dsn string) (*OutputIndex, *sql.DB, error) {
	dbConn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres database: %w", err)
	}

	if _, err := ApplyPostgresMigrations(dbConn); err != nil {
		_ = dbConn.Close()
		return nil, nil, err
	}

	index, err := NewPostgresOutputIndex(dbConn)
	if err != nil {
		_ = dbConn.Close()
		return nil, nil, err
	}

	return index, dbConn, nil
}
