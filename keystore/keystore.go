// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keystore provides signer.KeyStore implementations: an in-memory
// store, an encrypted store persisted in a walletdb database, and an adapter
// over a wallet's txauthor.SecretsSource.
package keystore

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/rawsign/signer"
	"github.com/lightningnetwork/lnd/fn/v2"
)

var (
	// ErrWrongNetwork is returned when importing a key encoded for
	// another network.
	ErrWrongNetwork = errors.New("key is not for this network")
)

// keyFetcher returns the key whose serialized public key hashes to hash, or
// nil if the store has no such key.
type keyFetcher func(hash []byte) (*signer.KeyMaterial, error)

// keyHashes returns the public key hashes under which a key able to sign for
// addr may be stored. A raw public key may be signed for by a key stored in
// either encoding.
func keyHashes(addr btcutil.Address) [][]byte {
	switch a := addr.(type) {
	case *btcutil.AddressPubKeyHash:
		return [][]byte{a.Hash160()[:]}

	case *btcutil.AddressPubKey:
		pubKey := a.PubKey()
		return [][]byte{
			btcutil.Hash160(pubKey.SerializeCompressed()),
			btcutil.Hash160(pubKey.SerializeUncompressed()),
		}

	default:
		return nil
	}
}

// keysOwning collects the keys able to sign for script, in the order the
// script lists its addresses.
func keysOwning(params *chaincfg.Params, script []byte,
	fetch keyFetcher) ([]*signer.KeyMaterial, error) {

	_, addrs, _, err := txscript.ExtractPkScriptAddrs(script, params)
	if err != nil {
		log.Debugf("Unable to extract addresses from script %x: %v",
			script, err)

		return nil, nil
	}

	var (
		keys []*signer.KeyMaterial
		seen = fn.NewSet[string]()
	)
	for _, addr := range addrs {
		for _, hash := range keyHashes(addr) {
			if seen.Contains(string(hash)) {
				continue
			}

			key, err := fetch(hash)
			if err != nil {
				return nil, err
			}
			if key == nil {
				continue
			}

			seen.Add(string(hash))
			keys = append(keys, key)

			break
		}
	}

	return keys, nil
}

// toHash160 converts a hash slice to an array usable as a map key.
func toHash160(hash []byte) ([20]byte, bool) {
	var h [20]byte
	if len(hash) != len(h) {
		return h, false
	}
	copy(h[:], hash)

	return h, true
}
