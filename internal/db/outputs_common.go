// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package db implements a persistent index of previous outputs on top of
// SQLite or PostgreSQL. The index serves as a signer.ChainLookup for outputs
// that are not, or not yet, known to a chain backend.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/rawsign/signer"
)

// queries holds the SQL statements of one database dialect.
type queries struct {
	upsertOutput string
	selectOutput string
	deleteOutput string
	countOutputs string
}

// OutputIndex stores the scripts and amounts of previous outputs.
type OutputIndex struct {
	db      *sql.DB
	queries *queries
}

// A compile-time assertion to ensure that OutputIndex implements the
// signer.ChainLookup interface.
var _ signer.ChainLookup = (*OutputIndex)(nil)

// newOutputIndex creates an OutputIndex issuing the given queries.
func newOutputIndex(db *sql.DB, q *queries) (*OutputIndex, error) {
	if db == nil {
		return nil, ErrNilDB
	}

	return &OutputIndex{
		db:      db,
		queries: q,
	}, nil
}

// PutOutput records the output at op, replacing any existing record.
func (o *OutputIndex) PutOutput(ctx context.Context, op wire.OutPoint,
	txOut *wire.TxOut) error {

	if len(txOut.PkScript) == 0 {
		return newError(ErrInvalidOutput, fmt.Sprintf("output %v has "+
			"no script", op), nil)
	}

	_, err := o.db.ExecContext(
		ctx, o.queries.upsertOutput, op.Hash[:], int64(op.Index),
		txOut.PkScript, txOut.Value,
	)
	if err != nil {
		return newError(ErrDatabase, fmt.Sprintf("put output %v", op),
			err)
	}

	return nil
}

// PutTx records every output of tx in a single database transaction.
func (o *OutputIndex) PutTx(ctx context.Context, tx *wire.MsgTx) error {
	txHash := tx.TxHash()

	return execInTx(ctx, o.db, func(dbTx *sql.Tx) error {
		for i, txOut := range tx.TxOut {
			if len(txOut.PkScript) == 0 {
				continue
			}

			_, err := dbTx.ExecContext(
				ctx, o.queries.upsertOutput, txHash[:],
				int64(i), txOut.PkScript, txOut.Value,
			)
			if err != nil {
				return newError(ErrDatabase, fmt.Sprintf(
					"put output %v:%d", txHash, i), err)
			}
		}

		log.Debugf("Indexed %d outputs of %v", len(tx.TxOut), txHash)

		return nil
	})
}

// DeleteOutput removes the record of op, if there is one.
func (o *OutputIndex) DeleteOutput(ctx context.Context,
	op wire.OutPoint) error {

	_, err := o.db.ExecContext(
		ctx, o.queries.deleteOutput, op.Hash[:], int64(op.Index),
	)
	if err != nil {
		return newError(ErrDatabase, fmt.Sprintf("delete output %v", op),
			err)
	}

	return nil
}

// Output returns the recorded output at op. signer.ErrOutputNotFound is
// returned if there is no record.
func (o *OutputIndex) Output(ctx context.Context,
	op wire.OutPoint) (*wire.TxOut, error) {

	var (
		pkScript []byte
		amount   int64
	)
	row := o.db.QueryRowContext(
		ctx, o.queries.selectOutput, op.Hash[:], int64(op.Index),
	)
	err := row.Scan(&pkScript, &amount)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, signer.ErrOutputNotFound

	case err != nil:
		return nil, newError(ErrDatabase, fmt.Sprintf("get output %v",
			op), err)
	}

	return wire.NewTxOut(amount, pkScript), nil
}

// FindOutput returns the script of the recorded output at op.
func (o *OutputIndex) FindOutput(ctx context.Context,
	op wire.OutPoint) ([]byte, error) {

	txOut, err := o.Output(ctx, op)
	if err != nil {
		return nil, err
	}

	log.Tracef("Found output %v (%v) in index", op,
		btcutil.Amount(txOut.Value))

	return txOut.PkScript, nil
}

// Count returns the number of recorded outputs.
func (o *OutputIndex) Count(ctx context.Context) (int, error) {
	var n int64
	err := o.db.QueryRowContext(ctx, o.queries.countOutputs).Scan(&n)
	if err != nil {
		return 0, newError(ErrDatabase, "count outputs", err)
	}
	return int(n), nil
}
