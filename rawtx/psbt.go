// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rawtx

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/rawsign/signer"
)

// DecodePSBT decodes a base64 encoded PSBT into a transaction variant and the
// previous output records its inputs carry. The variant is the unsigned
// transaction with each input's final script installed as its signature
// script. Partial signatures are not carried over.
func DecodePSBT(b64 string) (*wire.MsgTx, []signer.PrevOutOverride, error) {
	packet, err := psbt.NewFromRawBytes(strings.NewReader(b64), true)
	if err != nil {
		return nil, nil, signer.NewError(signer.ErrDecodeFailure,
			"PSBT decode failed", err)
	}

	tx := packet.UnsignedTx.Copy()

	var overrides []signer.PrevOutOverride
	for i, pIn := range packet.Inputs {
		txIn := tx.TxIn[i]
		txIn.SignatureScript = pIn.FinalScriptSig

		op := txIn.PreviousOutPoint

		var pkScript []byte
		switch {
		case pIn.NonWitnessUtxo != nil:
			prevTx := pIn.NonWitnessUtxo
			if prevTx.TxHash() != op.Hash ||
				op.Index >= uint32(len(prevTx.TxOut)) {

				return nil, nil, signer.NewError(
					signer.ErrScriptMismatch, fmt.Sprintf(
						"input %d: non-witness utxo does "+
							"not match %v", i, op), nil)
			}
			pkScript = prevTx.TxOut[op.Index].PkScript

		case pIn.WitnessUtxo != nil:
			pkScript = pIn.WitnessUtxo.PkScript

		default:
			continue
		}

		overrides = append(overrides, signer.PrevOutOverride{
			OutPoint:     op,
			PkScript:     pkScript,
			RedeemScript: pIn.RedeemScript,
		})
	}

	return tx, overrides, nil
}
