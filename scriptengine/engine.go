// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scriptengine implements the signer's ScriptEngine on top of btcd's
// txscript package. It signs, merges and verifies legacy signature scripts
// for the standard pay-to-pubkey, pay-to-pubkey-hash, multisig and
// pay-to-script-hash templates.
package scriptengine

import (
	"bytes"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/rawsign/signer"
)

// DefaultVerifyFlags are the script flags used to decide whether an input is
// complete. They enable pay-to-script-hash evaluation and nothing else, so a
// standard but not yet final script is still reported as satisfied.
const DefaultVerifyFlags = txscript.ScriptBip16

var (
	// errNoKey is returned when Sign is called without a key.
	errNoKey = errors.New("no signing key")

	// errKeyNotFound is returned to txscript when it asks for a key other
	// than the one being signed with.
	errKeyNotFound = errors.New("key not found")

	// errScriptNotFound is returned to txscript when it asks for a redeem
	// script other than the one supplied.
	errScriptNotFound = errors.New("script not found")
)

// Engine is a signer.ScriptEngine backed by txscript.
type Engine struct {
	params      *chaincfg.Params
	verifyFlags txscript.ScriptFlags
}

// A compile-time assertion to ensure that Engine implements the
// signer.ScriptEngine interface.
var _ signer.ScriptEngine = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithVerifyFlags overrides the script flags used by Verify.
func WithVerifyFlags(flags txscript.ScriptFlags) Option {
	return func(e *Engine) {
		e.verifyFlags = flags
	}
}

// New creates an Engine for the given network.
func New(params *chaincfg.Params, opts ...Option) *Engine {
	e := &Engine{
		params:      params,
		verifyFlags: DefaultVerifyFlags,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Sign returns a signature script for the input made with params.Key alone.
// The input's current signature script is ignored.
func (e *Engine) Sign(params *signer.SignParams) ([]byte, error) {
	if params.Key == nil {
		return nil, errNoKey
	}

	key := params.Key

	// Set up our callbacks that we pass to txscript so it can look up
	// the appropriate keys and scripts by address.
	getKey := txscript.KeyClosure(func(addr btcutil.Address) (
		*btcec.PrivateKey, bool, error) {

		if !key.Matches(addr) {
			return nil, false, errKeyNotFound
		}

		return key.PrivKey, key.CompressPubKey, nil
	})
	getScript := txscript.ScriptClosure(func(addr btcutil.Address) (
		[]byte, error) {

		if len(params.RedeemScript) == 0 {
			return nil, errScriptNotFound
		}

		hash := btcutil.Hash160(params.RedeemScript)
		if !bytes.Equal(addr.ScriptAddress(), hash) {
			return nil, errScriptNotFound
		}

		return params.RedeemScript, nil
	})

	return txscript.SignTxOutput(
		e.params, params.Tx, params.InputIndex, params.PrevScript,
		params.HashType, getKey, getScript, nil,
	)
}

// Verify executes the input's signature script against prevScript.
func (e *Engine) Verify(tx *wire.MsgTx, idx int, prevScript []byte) error {
	fetcher := txscript.NewCannedPrevOutputFetcher(prevScript, 0)

	vm, err := txscript.NewEngine(
		prevScript, tx, idx, e.verifyFlags, nil, nil, 0, fetcher,
	)
	if err != nil {
		return err
	}

	return vm.Execute()
}
