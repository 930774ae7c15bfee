// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/wire"
)

// validateVariants checks that every variant describes the same transaction
// as the first one, so that their signature scripts can be merged by input
// position. Variants may differ only in their signature scripts and witness
// data.
func validateVariants(variants []*wire.MsgTx) error {
	if len(variants) == 0 {
		return NewError(ErrMissingField, "missing transaction", nil)
	}

	base := variants[0]
	for i, variant := range variants[1:] {
		if err := congruent(base, variant); err != nil {
			return NewError(ErrMalformedEncoding, fmt.Sprintf(
				"transaction variant %d does not match the "+
					"first variant", i+1), err)
		}
	}

	return nil
}

// congruent returns an error describing the first structural difference
// between a and b.
func congruent(a, b *wire.MsgTx) error {
	switch {
	case a.Version != b.Version:
		return fmt.Errorf("version %d != %d", b.Version, a.Version)

	case a.LockTime != b.LockTime:
		return fmt.Errorf("lock time %d != %d", b.LockTime, a.LockTime)

	case len(a.TxIn) != len(b.TxIn):
		return fmt.Errorf("%d inputs != %d", len(b.TxIn), len(a.TxIn))

	case len(a.TxOut) != len(b.TxOut):
		return fmt.Errorf("%d outputs != %d", len(b.TxOut),
			len(a.TxOut))
	}

	for i, in := range a.TxIn {
		other := b.TxIn[i]
		if in.PreviousOutPoint != other.PreviousOutPoint {
			return fmt.Errorf("input %d spends %v, not %v", i,
				other.PreviousOutPoint, in.PreviousOutPoint)
		}
		if in.Sequence != other.Sequence {
			return fmt.Errorf("input %d sequence %d != %d", i,
				other.Sequence, in.Sequence)
		}
	}

	for i, out := range a.TxOut {
		other := b.TxOut[i]
		if out.Value != other.Value {
			return fmt.Errorf("output %d value %d != %d", i,
				other.Value, out.Value)
		}
		if !bytes.Equal(out.PkScript, other.PkScript) {
			return fmt.Errorf("output %d script %x != %x", i,
				other.PkScript, out.PkScript)
		}
	}

	return nil
}
