// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keystore

import (
	"context"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/rawsign/signer"
)

// MemStore is an in-memory signer.KeyStore. It is safe for concurrent use.
type MemStore struct {
	params *chaincfg.Params

	mu      sync.RWMutex
	keys    map[[20]byte]*signer.KeyMaterial
	scripts map[[20]byte][]byte
}

// A compile-time assertion to ensure that MemStore implements the
// signer.KeyStore interface.
var _ signer.KeyStore = (*MemStore)(nil)

// NewMemStore creates an empty MemStore for the given network.
func NewMemStore(params *chaincfg.Params) *MemStore {
	return &MemStore{
		params:  params,
		keys:    make(map[[20]byte]*signer.KeyMaterial),
		scripts: make(map[[20]byte][]byte),
	}
}

// AddKey adds a key to the store.
func (s *MemStore) AddKey(key *signer.KeyMaterial) {
	hash, _ := toHash160(key.PubKeyHash())

	s.mu.Lock()
	s.keys[hash] = key
	s.mu.Unlock()
}

// ImportWIF adds a WIF encoded key to the store.
func (s *MemStore) ImportWIF(wif *btcutil.WIF) error {
	if !wif.IsForNet(s.params) {
		return ErrWrongNetwork
	}

	s.AddKey(signer.NewKeyMaterial(wif))

	return nil
}

// AddScript adds a redeem script to the store.
func (s *MemStore) AddScript(script []byte) {
	hash, _ := toHash160(btcutil.Hash160(script))

	s.mu.Lock()
	s.scripts[hash] = script
	s.mu.Unlock()
}

// KeysOwning returns the stored keys able to sign for script.
func (s *MemStore) KeysOwning(_ context.Context,
	script []byte) ([]*signer.KeyMaterial, error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	return keysOwning(s.params, script,
		func(hash []byte) (*signer.KeyMaterial, error) {
			h, ok := toHash160(hash)
			if !ok {
				return nil, nil
			}

			return s.keys[h], nil
		},
	)
}

// RedeemScript returns the stored redeem script with the given hash160.
func (s *MemStore) RedeemScript(_ context.Context,
	scriptHash []byte) ([]byte, error) {

	h, ok := toHash160(scriptHash)
	if !ok {
		return nil, signer.ErrScriptNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	script, ok := s.scripts[h]
	if !ok {
		return nil, signer.ErrScriptNotFound
	}

	return script, nil
}
