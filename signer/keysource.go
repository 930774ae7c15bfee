// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// KeySource provides the keys and redeem scripts available to one signing
// operation.
type KeySource interface {
	// KeysFor returns the keys that can sign for script, in a
	// deterministic order.
	KeysFor(ctx context.Context, script []byte) ([]*KeyMaterial, error)

	// RedeemScript returns the redeem script of a pay-to-script-hash
	// output script, or ErrScriptNotFound.
	RedeemScript(ctx context.Context, pkScript []byte) ([]byte, error)
}

// redeemScripts indexes caller supplied redeem scripts by their hash160.
type redeemScripts map[[20]byte][]byte

// newRedeemScripts collects the redeem scripts carried by the overrides.
func newRedeemScripts(overrides []PrevOutOverride) redeemScripts {
	scripts := make(redeemScripts)
	for _, override := range overrides {
		if len(override.RedeemScript) == 0 {
			continue
		}

		var hash [20]byte
		copy(hash[:], btcutil.Hash160(override.RedeemScript))
		scripts[hash] = override.RedeemScript
	}

	return scripts
}

// lookup returns the redeem script with the given hash160.
func (r redeemScripts) lookup(scriptHash []byte) ([]byte, bool) {
	if len(scriptHash) != 20 {
		return nil, false
	}

	var hash [20]byte
	copy(hash[:], scriptHash)
	script, ok := r[hash]

	return script, ok
}

// p2shScriptHash returns the script hash committed to by a
// pay-to-script-hash output script.
func p2shScriptHash(pkScript []byte) ([]byte, bool) {
	if !txscript.IsPayToScriptHash(pkScript) {
		return nil, false
	}

	// OP_HASH160 OP_DATA_20 <hash> OP_EQUAL
	return pkScript[2:22], true
}

// restrictedKeys is a KeySource backed solely by the keys and redeem scripts
// supplied with the request.
type restrictedKeys struct {
	params  *chaincfg.Params
	keys    []*KeyMaterial
	scripts redeemScripts
}

// A compile-time assertion to ensure that restrictedKeys implements the
// KeySource interface.
var _ KeySource = (*restrictedKeys)(nil)

// KeysFor returns the supplied keys that match one of the addresses the
// script pays to, in the order they were supplied.
func (r *restrictedKeys) KeysFor(_ context.Context,
	script []byte) ([]*KeyMaterial, error) {

	_, addrs, _, err := txscript.ExtractPkScriptAddrs(script, r.params)
	if err != nil {
		log.Debugf("Unable to extract addresses from script %x: %v",
			script, err)

		return nil, nil
	}

	var (
		matched []*KeyMaterial
		seen    = fn.NewSet[string]()
	)
	for _, key := range r.keys {
		id := string(key.PubKeyHash())
		if seen.Contains(id) {
			continue
		}

		for _, addr := range addrs {
			if key.Matches(addr) {
				matched = append(matched, key)
				seen.Add(id)

				break
			}
		}
	}

	return matched, nil
}

// RedeemScript returns a redeem script supplied with the request.
func (r *restrictedKeys) RedeemScript(_ context.Context,
	pkScript []byte) ([]byte, error) {

	hash, ok := p2shScriptHash(pkScript)
	if !ok {
		return nil, ErrScriptNotFound
	}

	script, ok := r.scripts.lookup(hash)
	if !ok {
		return nil, ErrScriptNotFound
	}

	return script, nil
}

// ambientKeys is a KeySource backed by the configured KeyStore. Redeem
// scripts supplied with the request take precedence over the store's.
type ambientKeys struct {
	store   KeyStore
	scripts redeemScripts
}

// A compile-time assertion to ensure that ambientKeys implements the
// KeySource interface.
var _ KeySource = (*ambientKeys)(nil)

// KeysFor queries the key store for keys owning script.
func (a *ambientKeys) KeysFor(ctx context.Context,
	script []byte) ([]*KeyMaterial, error) {

	if a.store == nil {
		return nil, nil
	}

	return a.store.KeysOwning(ctx, script)
}

// RedeemScript returns the redeem script for a pay-to-script-hash output,
// first from the request and then from the key store.
func (a *ambientKeys) RedeemScript(ctx context.Context,
	pkScript []byte) ([]byte, error) {

	hash, ok := p2shScriptHash(pkScript)
	if !ok {
		return nil, ErrScriptNotFound
	}

	if script, ok := a.scripts.lookup(hash); ok {
		return script, nil
	}

	if a.store == nil {
		return nil, ErrScriptNotFound
	}

	return a.store.RedeemScript(ctx, hash)
}

// newKeySource selects the key source for a whole operation. Caller supplied
// keys, if there are any, are used exclusively.
func newKeySource(params *chaincfg.Params, store KeyStore,
	req *Request) KeySource {

	scripts := newRedeemScripts(req.PrevOuts)

	keys := req.Keys.UnwrapOr(nil)
	if len(keys) > 0 {
		log.Debugf("Signing with %d caller supplied keys only",
			len(keys))

		return &restrictedKeys{
			params:  params,
			keys:    keys,
			scripts: scripts,
		}
	}

	return &ambientKeys{
		store:   store,
		scripts: scripts,
	}
}
