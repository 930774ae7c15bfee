// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package db

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/rawsign/signer"
	"github.com/stretchr/testify/require"
)

// indexFactory creates a fresh, migrated OutputIndex for one test.
type indexFactory func(t *testing.T) *OutputIndex

// testOutPoint returns an outpoint with a hash derived from seed.
func testOutPoint(seed byte, index uint32) wire.OutPoint {
	var hash chainhash.Hash
	for i := range hash {
		hash[i] = seed
	}

	return wire.OutPoint{Hash: hash, Index: index}
}

// runOutputIndexTests exercises an OutputIndex created by newIndex. It is
// shared by the SQLite tests and the PostgreSQL integration tests.
func runOutputIndexTests(t *testing.T, newIndex indexFactory) {
	t.Run("missing output", func(t *testing.T) {
		t.Parallel()

		index := newIndex(t)

		_, err := index.FindOutput(testContext(t), testOutPoint(1, 0))
		require.ErrorIs(t, err, signer.ErrOutputNotFound)
	})

	t.Run("put and find", func(t *testing.T) {
		t.Parallel()

		// Arrange: Store one output.
		index := newIndex(t)
		op := testOutPoint(2, 7)
		txOut := wire.NewTxOut(1_000, []byte{0x51})
		require.NoError(t, index.PutOutput(testContext(t), op, txOut))

		// Act: Look up the script and the full output.
		script, err := index.FindOutput(testContext(t), op)
		require.NoError(t, err)
		stored, err := index.Output(testContext(t), op)
		require.NoError(t, err)

		// Assert: Both match what was stored and other indexes of
		// the same tx are unknown.
		require.Equal(t, txOut.PkScript, script)
		require.Equal(t, txOut, stored)

		_, err = index.FindOutput(testContext(t), testOutPoint(2, 6))
		require.ErrorIs(t, err, signer.ErrOutputNotFound)
	})

	t.Run("put replaces", func(t *testing.T) {
		t.Parallel()

		index := newIndex(t)
		op := testOutPoint(3, 0)

		require.NoError(t, index.PutOutput(
			testContext(t), op, wire.NewTxOut(1, []byte{0x51}),
		))
		require.NoError(t, index.PutOutput(
			testContext(t), op, wire.NewTxOut(2, []byte{0x52}),
		))

		stored, err := index.Output(testContext(t), op)
		require.NoError(t, err)
		require.Equal(t, wire.NewTxOut(2, []byte{0x52}), stored)

		n, err := index.Count(testContext(t))
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})

	t.Run("empty script rejected", func(t *testing.T) {
		t.Parallel()

		index := newIndex(t)

		err := index.PutOutput(
			testContext(t), testOutPoint(4, 0), wire.NewTxOut(1, nil),
		)
		require.True(t, IsError(err, ErrInvalidOutput))
	})

	t.Run("put tx and delete", func(t *testing.T) {
		t.Parallel()

		// Arrange: Index a transaction with two outputs.
		index := newIndex(t)
		tx := wire.NewMsgTx(wire.TxVersion)
		tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{}, nil, nil))
		tx.AddTxOut(wire.NewTxOut(10, []byte{0x51}))
		tx.AddTxOut(wire.NewTxOut(20, []byte{0x52}))
		require.NoError(t, index.PutTx(testContext(t), tx))

		txHash := tx.TxHash()
		second := wire.OutPoint{Hash: txHash, Index: 1}

		script, err := index.FindOutput(testContext(t), second)
		require.NoError(t, err)
		require.Equal(t, []byte{0x52}, script)

		// Act: Delete one of them.
		require.NoError(t, index.DeleteOutput(testContext(t), second))

		// Assert: Only the other one is left.
		_, err = index.FindOutput(testContext(t), second)
		require.ErrorIs(t, err, signer.ErrOutputNotFound)

		n, err := index.Count(testContext(t))
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})
}
