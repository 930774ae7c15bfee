// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"context"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// ChainLookup retrieves the output script of a previous output from a view
// of the chain, an unconfirmed transaction pool, or both.
//
// Implementations must be safe for concurrent use and present a consistent
// snapshot for the duration of a single call.
type ChainLookup interface {
	// FindOutput returns the script of the output referenced by op. It
	// returns ErrOutputNotFound when the output is unknown to this
	// lookup.
	FindOutput(ctx context.Context, op wire.OutPoint) ([]byte, error)
}

// KeyStore is a persistent store of signing keys and redeem scripts, queried
// by script ownership.
type KeyStore interface {
	// KeysOwning returns the keys able to sign for the given output or
	// redeem script, in a stable store-defined order. An empty result is
	// not an error.
	KeysOwning(ctx context.Context, script []byte) ([]*KeyMaterial, error)

	// RedeemScript returns the redeem script whose hash160 is scriptHash.
	// It returns ErrScriptNotFound when the script is unknown.
	RedeemScript(ctx context.Context, scriptHash []byte) ([]byte, error)
}

// SignParams holds the inputs to ScriptEngine.Sign.
type SignParams struct {
	// Tx is the transaction being signed.
	Tx *wire.MsgTx

	// InputIndex is the index of the input being signed.
	InputIndex int

	// PrevScript is the output script the input spends.
	PrevScript []byte

	// RedeemScript is the redeem script for a pay-to-script-hash
	// PrevScript. It is nil for every other script class.
	RedeemScript []byte

	// Key is the single key the engine is allowed to sign with.
	Key *KeyMaterial

	// HashType selects which parts of the transaction the signature
	// commits to.
	HashType txscript.SigHashType
}

// ScriptEngine produces, combines and checks signature scripts. It knows the
// standard script templates; the signer only feeds it data.
type ScriptEngine interface {
	// Sign returns a signature script for the input that carries a
	// signature made with params.Key. For multisig templates the result
	// may hold fewer signatures than required.
	Sign(params *SignParams) ([]byte, error)

	// Combine merges two candidate signature scripts for the same input
	// into the most complete script it can build from both.
	Combine(tx *wire.MsgTx, idx int, prevScript, a, b []byte) ([]byte,
		error)

	// Verify executes the input's current signature script against
	// prevScript and returns nil if the script succeeds.
	Verify(tx *wire.MsgTx, idx int, prevScript []byte) error
}
