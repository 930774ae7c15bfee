// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keystore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcwallet/walletdb"
	_ "github.com/btcsuite/btcwallet/walletdb/bdb"
	"github.com/btcsuite/rawsign/signer"
	"github.com/stretchr/testify/require"
)

var testPassphrase = []byte("hunter2")

// newTestDB creates an empty walletdb database in a temporary directory.
func newTestDB(t *testing.T) walletdb.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "keys.db")
	db, err := walletdb.Create("bdb", dbPath, true, 10*time.Second)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// TestDBStoreRoundTrip checks that imported keys and scripts are served back
// after the store is reopened.
func TestDBStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := testContext(t)
	db := newTestDB(t)

	// Arrange: Import a key and a redeem script.
	store, err := OpenDBStore(
		db, testParams, testPassphrase, FastScryptOptions,
	)
	require.NoError(t, err)

	wif := testWIF(t, 1, true)
	script := multiSigScript(t, 1, wif)
	require.NoError(t, store.ImportWIF(ctx, wif))
	require.NoError(t, store.ImportScript(ctx, script))

	// Act: Reopen the store with the same passphrase.
	reopened, err := OpenDBStore(
		db, testParams, testPassphrase, FastScryptOptions,
	)
	require.NoError(t, err)

	// Assert: Both are found.
	keys, err := reopened.KeysOwning(ctx, p2pkhScript(t, wif))
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.True(t, keys[0].CompressPubKey)
	require.Equal(t, wif.PrivKey.Serialize(), keys[0].PrivKey.Serialize())

	keys, err = reopened.KeysOwning(ctx, script)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	got, err := reopened.RedeemScript(ctx, btcutil.Hash160(script))
	require.NoError(t, err)
	require.Equal(t, script, got)

	_, err = reopened.RedeemScript(ctx, btcutil.Hash160([]byte{0x51}))
	require.ErrorIs(t, err, signer.ErrScriptNotFound)
}

// TestDBStoreWrongPassphrase checks that a store cannot be opened with
// another passphrase.
func TestDBStoreWrongPassphrase(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)

	_, err := OpenDBStore(db, testParams, testPassphrase, FastScryptOptions)
	require.NoError(t, err)

	_, err = OpenDBStore(db, testParams, []byte("wrong"), FastScryptOptions)
	require.ErrorIs(t, err, ErrWrongPassphrase)
}

// TestDBStoreKeysEncrypted checks that no stored value contains the key in
// the clear.
func TestDBStoreKeysEncrypted(t *testing.T) {
	t.Parallel()

	ctx := testContext(t)
	db := newTestDB(t)

	store, err := OpenDBStore(
		db, testParams, testPassphrase, FastScryptOptions,
	)
	require.NoError(t, err)

	wif := testWIF(t, 1, true)
	require.NoError(t, store.ImportWIF(ctx, wif))

	err = walletdb.View(db, func(tx walletdb.ReadTx) error {
		keys := tx.ReadBucket(namespaceKey).
			NestedReadBucket(keysBucketKey)

		return keys.ForEach(func(_, v []byte) error {
			require.NotContains(t, string(v), wif.String())
			return nil
		})
	})
	require.NoError(t, err)
}

// TestDBStoreImportWrongNetwork checks that keys of another network are
// refused.
func TestDBStoreImportWrongNetwork(t *testing.T) {
	t.Parallel()

	store, err := OpenDBStore(
		newTestDB(t), &chaincfg.MainNetParams, testPassphrase,
		FastScryptOptions,
	)
	require.NoError(t, err)

	err = store.ImportWIF(testContext(t), testWIF(t, 1, true))
	require.ErrorIs(t, err, ErrWrongNetwork)
}
