// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

var testParams = &chaincfg.RegressionNetParams

// testKey returns a deterministic compressed key derived from seed.
func testKey(seed byte) *KeyMaterial {
	privKey, _ := btcec.PrivKeyFromBytes(chainhash.HashB([]byte{seed}))

	return &KeyMaterial{
		PrivKey:        privKey,
		CompressPubKey: true,
	}
}

// p2pkhScript returns a pay-to-pubkey-hash script for key.
func p2pkhScript(t *testing.T, key *KeyMaterial) []byte {
	t.Helper()

	addr, err := btcutil.NewAddressPubKeyHash(key.PubKeyHash(), testParams)
	require.NoError(t, err)

	script, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	return script
}

// p2shScript returns a pay-to-script-hash script for redeemScript.
func p2shScript(t *testing.T, redeemScript []byte) []byte {
	t.Helper()

	addr, err := btcutil.NewAddressScriptHash(redeemScript, testParams)
	require.NoError(t, err)

	script, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	return script
}

// testOutPoint returns an outpoint of a fixed previous transaction.
func testOutPoint(index uint32) wire.OutPoint {
	return wire.OutPoint{Hash: chainhash.Hash{0xbe, 0xef}, Index: index}
}

// createDummyTestTx creates a transaction with nIn inputs spending
// testOutPoint(0) to testOutPoint(nIn-1) and a single output.
func createDummyTestTx(nIn int) *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	for i := 0; i < nIn; i++ {
		op := testOutPoint(uint32(i))
		tx.AddTxIn(wire.NewTxIn(&op, nil, nil))
	}
	tx.AddTxOut(wire.NewTxOut(1e6, []byte{txscript.OP_TRUE}))

	return tx
}
