// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// KeyMaterial is a private signing key together with the encoding of its
// public key.
type KeyMaterial struct {
	// PrivKey is the private key.
	PrivKey *btcec.PrivateKey

	// CompressPubKey is true when the public key is used in its 33-byte
	// compressed form.
	CompressPubKey bool
}

// NewKeyMaterial creates KeyMaterial from a decoded WIF.
func NewKeyMaterial(wif *btcutil.WIF) *KeyMaterial {
	return &KeyMaterial{
		PrivKey:        wif.PrivKey,
		CompressPubKey: wif.CompressPubKey,
	}
}

// SerializedPubKey returns the public key in the encoding selected by
// CompressPubKey.
func (k *KeyMaterial) SerializedPubKey() []byte {
	if k.CompressPubKey {
		return k.PrivKey.PubKey().SerializeCompressed()
	}

	return k.PrivKey.PubKey().SerializeUncompressed()
}

// PubKeyHash returns the hash160 of the serialized public key.
func (k *KeyMaterial) PubKeyHash() []byte {
	return btcutil.Hash160(k.SerializedPubKey())
}

// Matches reports whether this key can sign for the given address. A
// pay-to-pubkey-hash address must commit to the key's own encoding, while a
// raw public key matches in either encoding.
func (k *KeyMaterial) Matches(addr btcutil.Address) bool {
	switch a := addr.(type) {
	case *btcutil.AddressPubKeyHash:
		return bytes.Equal(a.Hash160()[:], k.PubKeyHash())

	case *btcutil.AddressPubKey:
		return a.PubKey().IsEqual(k.PrivKey.PubKey())

	default:
		return false
	}
}

// String returns the key's public key hash so that keys never end up in logs.
func (k *KeyMaterial) String() string {
	return fmt.Sprintf("key(%x)", k.PubKeyHash())
}

// PrevOutOverride is a caller-supplied record of a previous output's script,
// used for outputs the chain lookup does not know about yet.
type PrevOutOverride struct {
	// OutPoint identifies the previous output.
	OutPoint wire.OutPoint

	// PkScript is the output script of the previous output.
	PkScript []byte

	// RedeemScript is an optional redeem script for a pay-to-script-hash
	// PkScript.
	RedeemScript []byte
}

// Request holds the arguments of a single signing operation.
type Request struct {
	// Variants are copies of the same logical transaction, each possibly
	// carrying signatures from a different party. The first one is the
	// base of the result.
	Variants []*wire.MsgTx

	// PrevOuts are previous output records that supplement the chain
	// lookup.
	PrevOuts []PrevOutOverride

	// Keys, when it holds at least one key, restricts signing to exactly
	// these keys and disables the configured KeyStore for the whole
	// operation.
	Keys fn.Option[[]*KeyMaterial]

	// HashType is the sighash mode used for every new signature.
	HashType txscript.SigHashType
}

// InputState is the signing state of a single input.
type InputState uint8

const (
	// InputUnresolved means the input's previous output script is
	// unknown. Such an input is never signed.
	InputUnresolved InputState = iota

	// InputSigned means candidate signature scripts were produced and
	// merged but have not been verified yet.
	InputSigned

	// InputVerified means the merged signature script satisfies the
	// previous output script.
	InputVerified

	// InputIncomplete means the merged signature script does not (yet)
	// satisfy the previous output script.
	InputIncomplete
)

// String returns a human-readable name for the state.
func (s InputState) String() string {
	switch s {
	case InputUnresolved:
		return "unresolved"
	case InputSigned:
		return "signed"
	case InputVerified:
		return "verified"
	case InputIncomplete:
		return "incomplete"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// InputResult records the outcome of signing one input.
type InputResult struct {
	// Index is the input index.
	Index uint32

	// State is the terminal state of the input. It is either
	// InputVerified or InputIncomplete.
	State InputState

	// Err describes why an incomplete input is incomplete. It is nil for
	// verified inputs.
	Err error
}

// Result is the outcome of a signing operation.
type Result struct {
	// Tx is the base variant with the best merged signature script
	// installed on every input.
	Tx *wire.MsgTx

	// Complete is true only if every input was verified.
	Complete bool

	// Inputs holds one entry per input, in input order.
	Inputs []InputResult
}

// Incomplete returns the results of all inputs that are not verified.
func (r *Result) Incomplete() []InputResult {
	var incomplete []InputResult
	for _, in := range r.Inputs {
		if in.State != InputVerified {
			incomplete = append(incomplete, in)
		}
	}

	return incomplete
}
