// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rawtx converts between the JSON-RPC representation of a
// signrawtransaction request and the signer's Request and Result types.
package rawtx

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/rawsign/signer"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// sigHashTypes maps the accepted sighash names to their values.
var sigHashTypes = map[string]txscript.SigHashType{
	"ALL":                 txscript.SigHashAll,
	"ALL|ANYONECANPAY":    txscript.SigHashAll | txscript.SigHashAnyOneCanPay,
	"NONE":                txscript.SigHashNone,
	"NONE|ANYONECANPAY":   txscript.SigHashNone | txscript.SigHashAnyOneCanPay,
	"SINGLE":              txscript.SigHashSingle,
	"SINGLE|ANYONECANPAY": txscript.SigHashSingle | txscript.SigHashAnyOneCanPay,
}

// DecodeVariants decodes a hex string holding one or more serialized
// transactions back to back.
func DecodeVariants(rawHex string) ([]*wire.MsgTx, error) {
	serialized, err := hex.DecodeString(rawHex)
	if err != nil {
		return nil, signer.NewError(signer.ErrMalformedEncoding,
			"transaction is not valid hex", err)
	}

	var (
		variants []*wire.MsgTx
		r        = bytes.NewReader(serialized)
	)
	for r.Len() > 0 {
		tx := wire.NewMsgTx(wire.TxVersion)
		if err := tx.Deserialize(r); err != nil {
			return nil, signer.NewError(signer.ErrDecodeFailure,
				fmt.Sprintf("TX decode failed for variant %d",
					len(variants)), err)
		}

		variants = append(variants, tx)
	}

	if len(variants) == 0 {
		return nil, signer.NewError(signer.ErrMissingField,
			"missing transaction", nil)
	}

	return variants, nil
}

// decodeHexField decodes a hex encoded request field.
func decodeHexField(name, value string) ([]byte, error) {
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, signer.NewError(signer.ErrMalformedEncoding,
			fmt.Sprintf("%s must be hexadecimal string (not %q)",
				name, value), err)
	}

	return b, nil
}

// ParsePrevOuts converts previous output records into overrides.
func ParsePrevOuts(
	inputs []btcjson.RawTxInput) ([]signer.PrevOutOverride, error) {

	overrides := make([]signer.PrevOutOverride, 0, len(inputs))
	for i, input := range inputs {
		if input.Txid == "" {
			return nil, signer.NewError(signer.ErrMissingField,
				fmt.Sprintf("previous output %d: missing txid",
					i), nil)
		}

		hash, err := chainhash.NewHashFromStr(input.Txid)
		if err != nil {
			return nil, signer.NewError(signer.ErrMalformedEncoding,
				fmt.Sprintf("previous output %d: invalid txid",
					i), err)
		}

		if input.ScriptPubKey == "" {
			return nil, signer.NewError(signer.ErrMissingField,
				fmt.Sprintf("previous output %d: missing "+
					"scriptPubKey", i), nil)
		}

		pkScript, err := decodeHexField(
			"scriptPubKey", input.ScriptPubKey,
		)
		if err != nil {
			return nil, err
		}

		var redeemScript []byte
		if input.RedeemScript != "" {
			redeemScript, err = decodeHexField(
				"redeemScript", input.RedeemScript,
			)
			if err != nil {
				return nil, err
			}
		}

		overrides = append(overrides, signer.PrevOutOverride{
			OutPoint:     *wire.NewOutPoint(hash, input.Vout),
			PkScript:     pkScript,
			RedeemScript: redeemScript,
		})
	}

	return overrides, nil
}

// ParsePrivKeys decodes WIF encoded private keys. No keys yields None, so the
// signer falls back to its key store.
func ParsePrivKeys(keys []string,
	params *chaincfg.Params) (fn.Option[[]*signer.KeyMaterial], error) {

	if len(keys) == 0 {
		return fn.None[[]*signer.KeyMaterial](), nil
	}

	material := make([]*signer.KeyMaterial, 0, len(keys))
	for i, key := range keys {
		wif, err := btcutil.DecodeWIF(key)
		if err != nil {
			return fn.None[[]*signer.KeyMaterial](), signer.NewError(
				signer.ErrInvalidKey, fmt.Sprintf("private key "+
					"%d: invalid WIF", i), err)
		}

		if !wif.IsForNet(params) {
			return fn.None[[]*signer.KeyMaterial](), signer.NewError(
				signer.ErrInvalidKey, fmt.Sprintf("private key "+
					"%d: key is not for %s", i, params.Name), nil)
		}

		material = append(material, signer.NewKeyMaterial(wif))
	}

	return fn.Some(material), nil
}

// ParseSigHashType parses one of the six sighash names. An empty string means
// ALL.
func ParseSigHashType(name string) (txscript.SigHashType, error) {
	if name == "" {
		return txscript.SigHashAll, nil
	}

	hashType, ok := sigHashTypes[name]
	if !ok {
		return 0, signer.NewError(signer.ErrInvalidParameter,
			fmt.Sprintf("invalid sighash param %q", name), nil)
	}

	return hashType, nil
}

// ParseRequest builds a signer request from a signrawtransaction command.
func ParseRequest(cmd *btcjson.SignRawTransactionCmd,
	params *chaincfg.Params) (*signer.Request, error) {

	variants, err := DecodeVariants(cmd.RawTx)
	if err != nil {
		return nil, err
	}

	var prevOuts []signer.PrevOutOverride
	if cmd.Inputs != nil {
		prevOuts, err = ParsePrevOuts(*cmd.Inputs)
		if err != nil {
			return nil, err
		}
	}

	var privKeys []string
	if cmd.PrivKeys != nil {
		privKeys = *cmd.PrivKeys
	}
	keys, err := ParsePrivKeys(privKeys, params)
	if err != nil {
		return nil, err
	}

	var flags string
	if cmd.Flags != nil {
		flags = *cmd.Flags
	}
	hashType, err := ParseSigHashType(flags)
	if err != nil {
		return nil, err
	}

	return &signer.Request{
		Variants: variants,
		PrevOuts: prevOuts,
		Keys:     keys,
		HashType: hashType,
	}, nil
}

// MarshalResult renders a signing result as a signrawtransaction reply. Every
// input that is not fully signed gets an entry in Errors.
func MarshalResult(
	res *signer.Result) (*btcjson.SignRawTransactionResult, error) {

	var buf bytes.Buffer
	buf.Grow(res.Tx.SerializeSize())
	if err := res.Tx.Serialize(&buf); err != nil {
		return nil, err
	}

	var errs []btcjson.SignRawTransactionError
	for _, in := range res.Incomplete() {
		txIn := res.Tx.TxIn[in.Index]

		desc := in.State.String()
		if in.Err != nil {
			desc = in.Err.Error()
		}

		errs = append(errs, btcjson.SignRawTransactionError{
			TxID:      txIn.PreviousOutPoint.Hash.String(),
			Vout:      txIn.PreviousOutPoint.Index,
			ScriptSig: hex.EncodeToString(txIn.SignatureScript),
			Sequence:  txIn.Sequence,
			Error:     desc,
		})
	}

	return &btcjson.SignRawTransactionResult{
		Hex:      hex.EncodeToString(buf.Bytes()),
		Complete: res.Complete,
		Errors:   errs,
	}, nil
}
