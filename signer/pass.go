// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// signInput produces a fresh signature script for input idx of tx using the
// keys the key source holds for prevScript. Any existing signature script on
// the input is discarded first.
//
// An input this key source cannot sign for yields an empty script and no
// error: another party may still hold the missing keys. Only failures of the
// key source itself are returned as errors.
func (s *Signer) signInput(ctx context.Context, tx *wire.MsgTx, idx int,
	prevScript []byte, keys KeySource,
	hashType txscript.SigHashType) ([]byte, error) {

	tx.TxIn[idx].SignatureScript = nil

	// SigHashSingle inputs can only be signed if there's a corresponding
	// output.
	if hashType&txscript.SigHashSingle == txscript.SigHashSingle &&
		idx >= len(tx.TxOut) {

		log.Debugf("Not signing input %d: no output for SigHashSingle",
			idx)

		return nil, nil
	}

	// Keys for a pay-to-script-hash output are selected against its
	// redeem script.
	keyScript := prevScript
	var redeemScript []byte
	if txscript.IsPayToScriptHash(prevScript) {
		script, err := keys.RedeemScript(ctx, prevScript)
		switch {
		case errors.Is(err, ErrScriptNotFound):
			log.Debugf("Not signing input %d: redeem script "+
				"unknown", idx)

			return nil, nil

		case err != nil:
			return nil, fmt.Errorf("unable to fetch redeem script "+
				"for input %d: %w", idx, err)
		}

		redeemScript = script
		keyScript = script
	}

	signingKeys, err := keys.KeysFor(ctx, keyScript)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch keys for input %d: %w",
			idx, err)
	}
	if len(signingKeys) == 0 {
		log.Debugf("Not signing input %d: no matching keys", idx)
		return nil, nil
	}

	scripts := make([][]byte, 0, len(signingKeys))
	for _, key := range signingKeys {
		script, err := s.cfg.Engine.Sign(&SignParams{
			Tx:           tx,
			InputIndex:   idx,
			PrevScript:   prevScript,
			RedeemScript: redeemScript,
			Key:          key,
			HashType:     hashType,
		})
		if err != nil {
			log.Debugf("Unable to sign input %d with %v: %v", idx,
				key, err)

			continue
		}

		scripts = append(scripts, script)
	}

	// A key source holding several keys of one multisig script
	// contributes all of their signatures.
	return s.mergeCandidates(tx, idx, prevScript, scripts), nil
}
