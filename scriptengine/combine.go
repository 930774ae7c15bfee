// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package scriptengine

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// Combine merges two signature scripts for input idx of tx that spends
// prevScript. Neither script needs to be complete. Multisig scripts are merged
// signature by signature. Pay-to-script-hash scripts are merged against the
// template of their redeem script. For every other template one of the two
// scripts is picked whole.
func (e *Engine) Combine(tx *wire.MsgTx, idx int, prevScript, a,
	b []byte) ([]byte, error) {

	// Nothing to merge if either script is empty.
	if len(a) == 0 {
		return b, nil
	}
	if len(b) == 0 {
		return a, nil
	}

	class, addrs, nRequired, err := txscript.ExtractPkScriptAddrs(
		prevScript, e.params,
	)
	if err != nil {
		return nil, err
	}

	return e.combine(tx, idx, class, addrs, nRequired, prevScript, a, b)
}

// combine merges two non-empty signature scripts satisfying pkScript, whose
// template has already been extracted.
func (e *Engine) combine(tx *wire.MsgTx, idx int, class txscript.ScriptClass,
	addrs []btcutil.Address, nRequired int, pkScript, a,
	b []byte) ([]byte, error) {

	switch class {
	case txscript.ScriptHashTy:
		return e.mergeScriptHash(tx, idx, a, b)

	case txscript.MultiSigTy:
		return mergeMultiSig(tx, idx, addrs, nRequired, pkScript, a, b)

	case txscript.PubKeyTy, txscript.PubKeyHashTy:
		// The first script is either freshly signed or the best found
		// so far, unless it only holds a placeholder.
		if firstPushEmpty(a) {
			return b, nil
		}

		return a, nil

	default:
		return pickMorePushes(a, b), nil
	}
}

// pickMorePushes chooses between two scripts of a template whose signature
// scripts cannot be merged. The one pushing more items is assumed to be the
// more complete one; ties keep the first.
func pickMorePushes(a, b []byte) []byte {
	if countPushes(b) > countPushes(a) {
		return b
	}

	return a
}

// mergeScriptHash merges two pay-to-script-hash signature scripts. Both must
// end with a push of the same redeem script. The pushes before it are merged
// according to the redeem script's template and the redeem script is pushed
// again.
func (e *Engine) mergeScriptHash(tx *wire.MsgTx, idx int, a,
	b []byte) ([]byte, error) {

	aBody, redeemScript, ok := splitRedeemScript(a)
	if !ok {
		return b, nil
	}
	bBody, bRedeemScript, ok := splitRedeemScript(b)
	if !ok {
		return a, nil
	}

	if !bytes.Equal(redeemScript, bRedeemScript) {
		log.Debugf("Input %d: signature scripts carry different "+
			"redeem scripts", idx)

		return pickMorePushes(a, b), nil
	}

	var merged []byte
	switch {
	// A script holding nothing but the redeem script is a template.
	case len(aBody) == 0:
		merged = bBody

	case len(bBody) == 0:
		merged = aBody

	default:
		class, addrs, nRequired, err := txscript.ExtractPkScriptAddrs(
			redeemScript, e.params,
		)
		if err != nil {
			class = txscript.NonStandardTy
		}

		merged, err = e.combine(
			tx, idx, class, addrs, nRequired, redeemScript, aBody,
			bBody,
		)
		if err != nil {
			return nil, err
		}
	}

	builder := txscript.NewScriptBuilder()
	builder.AddOps(merged)
	builder.AddData(redeemScript)

	return builder.Script()
}

// mergeMultiSig combines the signatures found in two multisig signature
// scripts. Every signature is matched against the public keys of pkScript
// and the result carries at most nRequired of them in public key order, as
// OP_CHECKMULTISIG expects. Missing signatures are padded with OP_0.
func mergeMultiSig(tx *wire.MsgTx, idx int, addrs []btcutil.Address,
	nRequired int, pkScript, a, b []byte) ([]byte, error) {

	var possibleSigs [][]byte
	for _, script := range [][]byte{a, b} {
		pushes, err := txscript.PushedData(script)
		if err != nil {
			log.Debugf("Input %d: skipping unparsable multisig "+
				"script: %v", idx, err)

			continue
		}

		for _, push := range pushes {
			if len(push) > 1 {
				possibleSigs = append(possibleSigs, push)
			}
		}
	}

	// Now we need to match the signatures to pubkeys, the only real way
	// to do that is to try to verify them all and match it to the pubkey
	// that verifies it.
	addrToSig := make(map[string][]byte)
sigLoop:
	for _, sig := range possibleSigs {
		// The last byte of the signature is the hash type.
		hashType := txscript.SigHashType(sig[len(sig)-1])
		pSig, err := ecdsa.ParseDERSignature(sig[:len(sig)-1])
		if err != nil {
			continue
		}

		hash, err := txscript.CalcSignatureHash(
			pkScript, hashType, tx, idx,
		)
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			pkAddr, ok := addr.(*btcutil.AddressPubKey)
			if !ok {
				continue
			}

			if !pSig.Verify(hash, pkAddr.PubKey()) {
				continue
			}

			// We only take one signature per public key.
			aStr := string(pkAddr.ScriptAddress())
			if _, ok := addrToSig[aStr]; !ok {
				addrToSig[aStr] = sig
			}

			continue sigLoop
		}
	}

	builder := txscript.NewScriptBuilder().AddOp(txscript.OP_FALSE)
	doneSigs := 0
	for _, addr := range addrs {
		sig, ok := addrToSig[string(addr.ScriptAddress())]
		if !ok {
			continue
		}

		builder.AddData(sig)
		doneSigs++
		if doneSigs == nRequired {
			break
		}
	}

	// Padding for missing ones.
	for i := doneSigs; i < nRequired; i++ {
		builder.AddOp(txscript.OP_0)
	}

	log.Tracef("Input %d: merged %d of %d multisig signatures", idx,
		doneSigs, nRequired)

	return builder.Script()
}

// isPush reports whether op only pushes an item on the stack.
func isPush(op byte) bool {
	return op <= txscript.OP_16 && op != txscript.OP_RESERVED
}

// countPushes returns the number of items a push-only script leaves on the
// stack. Parsing stops at the first malformed opcode.
func countPushes(script []byte) int {
	n := 0
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		if isPush(tokenizer.Opcode()) {
			n++
		}
	}

	return n
}

// firstPushEmpty reports whether script pushes nothing or starts with an
// empty push such as OP_0.
func firstPushEmpty(script []byte) bool {
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	if !tokenizer.Next() {
		return true
	}

	return tokenizer.Opcode() <= txscript.OP_PUSHDATA4 &&
		len(tokenizer.Data()) == 0
}

// splitRedeemScript splits a push-only pay-to-script-hash signature script
// into the pushes preceding the redeem script and the redeem script itself.
// It fails if the script is not push-only or does not end with a non-empty
// data push.
func splitRedeemScript(script []byte) ([]byte, []byte, bool) {
	var (
		body, redeemScript []byte
		lastIsData         bool
	)

	tokenizer := txscript.MakeScriptTokenizer(0, script)
	offset := tokenizer.ByteIndex()
	for tokenizer.Next() {
		op := tokenizer.Opcode()
		if !isPush(op) {
			return nil, nil, false
		}

		body = script[:offset]
		redeemScript = tokenizer.Data()
		lastIsData = op <= txscript.OP_PUSHDATA4
		offset = tokenizer.ByteIndex()
	}
	if tokenizer.Err() != nil || !lastIsData || len(redeemScript) == 0 {
		return nil, nil, false
	}

	return body, redeemScript, true
}
