// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keystore

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/rawsign/signer"
	"github.com/stretchr/testify/require"
)

var testParams = &chaincfg.RegressionNetParams

// testWIF returns a deterministic WIF derived from seed.
func testWIF(t *testing.T, seed byte, compressed bool) *btcutil.WIF {
	t.Helper()

	privKey, _ := btcec.PrivKeyFromBytes(chainhash.HashB([]byte{seed}))
	wif, err := btcutil.NewWIF(privKey, testParams, compressed)
	require.NoError(t, err)

	return wif
}

// p2pkhScript returns a pay-to-pubkey-hash script for wif's key in its own
// encoding.
func p2pkhScript(t *testing.T, wif *btcutil.WIF) []byte {
	t.Helper()

	addr, err := btcutil.NewAddressPubKeyHash(
		btcutil.Hash160(wif.SerializePubKey()), testParams,
	)
	require.NoError(t, err)

	script, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	return script
}

// multiSigScript returns an nRequired-of-len(wifs) multisig script over the
// compressed public keys of wifs.
func multiSigScript(t *testing.T, nRequired int,
	wifs ...*btcutil.WIF) []byte {

	t.Helper()

	addrs := make([]*btcutil.AddressPubKey, 0, len(wifs))
	for _, wif := range wifs {
		addr, err := btcutil.NewAddressPubKey(
			wif.PrivKey.PubKey().SerializeCompressed(), testParams,
		)
		require.NoError(t, err)

		addrs = append(addrs, addr)
	}

	script, err := txscript.MultiSigScript(addrs, nRequired)
	require.NoError(t, err)

	return script
}

// pubKeys returns the serialized public keys of keys.
func pubKeys(keys []*signer.KeyMaterial) [][]byte {
	out := make([][]byte, 0, len(keys))
	for _, key := range keys {
		out = append(out, key.SerializedPubKey())
	}

	return out
}
