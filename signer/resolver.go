// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// resolvePrevScripts builds the previous output script of every input of tx.
// The chain lookup is consulted first, then the overrides are applied on top.
// An override may fill a gap, but it must never contradict a script that is
// already known.
//
// Inputs that no source knows about are simply absent from the returned map.
func resolvePrevScripts(ctx context.Context, tx *wire.MsgTx,
	chain ChainLookup,
	overrides []PrevOutOverride) (map[wire.OutPoint][]byte, error) {

	prevScripts := make(map[wire.OutPoint][]byte, len(tx.TxIn))
	for _, txIn := range tx.TxIn {
		op := txIn.PreviousOutPoint
		if _, ok := prevScripts[op]; ok {
			continue
		}

		script, err := chain.FindOutput(ctx, op)
		switch {
		case errors.Is(err, ErrOutputNotFound):
			log.Tracef("Previous output %v not found in chain", op)
			continue

		case err != nil:
			return nil, fmt.Errorf("unable to look up previous "+
				"output %v: %w", op, err)
		}

		prevScripts[op] = script
	}

	for _, override := range overrides {
		op := override.OutPoint
		if len(override.PkScript) == 0 {
			return nil, NewError(ErrMissingField, fmt.Sprintf(
				"previous output %v has no scriptPubKey", op), nil)
		}

		known, ok := prevScripts[op]
		if !ok {
			prevScripts[op] = override.PkScript
			continue
		}

		if !bytes.Equal(known, override.PkScript) {
			return nil, NewError(ErrScriptMismatch, fmt.Sprintf(
				"previous output %v scriptPubKey mismatch:\n%s"+
					"\nvs:\n%s", op, disasm(known),
				disasm(override.PkScript)), nil)
		}
	}

	return prevScripts, nil
}

// disasm returns the disassembly of a script, falling back to hex for
// scripts that do not parse.
func disasm(script []byte) string {
	s, err := txscript.DisasmString(script)
	if err != nil {
		return fmt.Sprintf("%x", script)
	}

	return s
}
