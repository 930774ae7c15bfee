// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keystore

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/btcsuite/rawsign/signer"
)

// SecretsStore exposes a wallet's txauthor.SecretsSource as a
// signer.KeyStore.
type SecretsStore struct {
	src txauthor.SecretsSource
}

// A compile-time assertion to ensure that SecretsStore implements the
// signer.KeyStore interface.
var _ signer.KeyStore = (*SecretsStore)(nil)

// NewSecretsStore wraps src.
func NewSecretsStore(src txauthor.SecretsSource) *SecretsStore {
	return &SecretsStore{src: src}
}

// KeysOwning asks the secrets source for the key of every address script pays
// to. Addresses the source has no key for are skipped.
func (s *SecretsStore) KeysOwning(_ context.Context,
	script []byte) ([]*signer.KeyMaterial, error) {

	params := s.src.ChainParams()

	return keysOwning(params, script,
		func(hash []byte) (*signer.KeyMaterial, error) {
			addr, err := btcutil.NewAddressPubKeyHash(hash, params)
			if err != nil {
				return nil, err
			}

			privKey, compressed, err := s.src.GetKey(addr)
			if err != nil {
				log.Tracef("No key for %v: %v", addr, err)
				return nil, nil
			}

			key := &signer.KeyMaterial{
				PrivKey:        privKey,
				CompressPubKey: compressed,
			}

			// The source may answer with a key in the other
			// encoding than the one asked for.
			if !key.Matches(addr) {
				return nil, nil
			}

			return key, nil
		},
	)
}

// RedeemScript asks the secrets source for the redeem script of the
// pay-to-script-hash address with the given hash.
func (s *SecretsStore) RedeemScript(_ context.Context,
	scriptHash []byte) ([]byte, error) {

	addr, err := btcutil.NewAddressScriptHashFromHash(
		scriptHash, s.src.ChainParams(),
	)
	if err != nil {
		return nil, err
	}

	script, err := s.src.GetScript(addr)
	if err != nil {
		log.Tracef("No redeem script for %v: %v", addr, err)
		return nil, signer.ErrScriptNotFound
	}

	return script, nil
}
