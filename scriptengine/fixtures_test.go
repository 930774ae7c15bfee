// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package scriptengine

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/rawsign/signer"
	"github.com/stretchr/testify/require"
)

var testParams = &chaincfg.RegressionNetParams

// testKey returns a deterministic compressed key derived from seed.
func testKey(seed byte) *signer.KeyMaterial {
	privKey, _ := btcec.PrivKeyFromBytes(chainhash.HashB([]byte{seed}))

	return &signer.KeyMaterial{
		PrivKey:        privKey,
		CompressPubKey: true,
	}
}

// p2pkhScript returns a pay-to-pubkey-hash script for key.
func p2pkhScript(t *testing.T, key *signer.KeyMaterial) []byte {
	t.Helper()

	addr, err := btcutil.NewAddressPubKeyHash(key.PubKeyHash(), testParams)
	require.NoError(t, err)

	script, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	return script
}

// p2pkScript returns a pay-to-pubkey script for key.
func p2pkScript(t *testing.T, key *signer.KeyMaterial) []byte {
	t.Helper()

	addr, err := btcutil.NewAddressPubKey(key.SerializedPubKey(), testParams)
	require.NoError(t, err)

	script, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	return script
}

// multiSigScript returns an nRequired-of-len(keys) multisig script.
func multiSigScript(t *testing.T, nRequired int,
	keys ...*signer.KeyMaterial) []byte {

	t.Helper()

	addrs := make([]*btcutil.AddressPubKey, 0, len(keys))
	for _, key := range keys {
		addr, err := btcutil.NewAddressPubKey(
			key.SerializedPubKey(), testParams,
		)
		require.NoError(t, err)

		addrs = append(addrs, addr)
	}

	script, err := txscript.MultiSigScript(addrs, nRequired)
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

// createDummyTestTx creates a transaction with nIn inputs spending outputs of
// a fixed previous transaction and a single output.
func createDummyTestTx(nIn int) *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	prevHash := chainhash.Hash{0xde, 0xad}
	for i := 0; i < nIn; i++ {
		tx.AddTxIn(wire.NewTxIn(
			wire.NewOutPoint(&prevHash, uint32(i)), nil, nil,
		))
	}
	tx.AddTxOut(wire.NewTxOut(1e6, []byte{txscript.OP_TRUE}))

	return tx
}

// signWith signs input idx of tx with key alone and returns the script.
func signWith(t *testing.T, e *Engine, tx *wire.MsgTx, idx int,
	prevScript, redeemScript []byte, key *signer.KeyMaterial) []byte {

	t.Helper()

	script, err := e.Sign(&signer.SignParams{
		Tx:           tx,
		InputIndex:   idx,
		PrevScript:   prevScript,
		RedeemScript: redeemScript,
		Key:          key,
		HashType:     txscript.SigHashAll,
	})
	require.NoError(t, err)
	require.NotEmpty(t, script)

	return script
}

// verifyWith installs sigScript on input idx of tx and verifies it.
func verifyWith(e *Engine, tx *wire.MsgTx, idx int, sigScript,
	prevScript []byte) error {

	tx.TxIn[idx].SignatureScript = sigScript

	return e.Verify(tx, idx, prevScript)
}
