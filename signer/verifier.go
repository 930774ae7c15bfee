// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"fmt"

	"github.com/btcsuite/btcd/wire"
)

// verifyInput installs sigScript on input idx of tx and checks that it
// satisfies prevScript. A nil return means the input is fully signed.
//
// The check is only as strict as the engine's configured flags; it reports
// whether the input looks satisfied, not a consensus verdict.
func (s *Signer) verifyInput(tx *wire.MsgTx, idx int, sigScript,
	prevScript []byte) error {

	tx.TxIn[idx].SignatureScript = sigScript

	err := s.cfg.Engine.Verify(tx, idx, prevScript)
	if err == nil {
		return nil
	}

	if len(sigScript) == 0 {
		return ErrNoSignature
	}

	return fmt.Errorf("script verification failed: %w", err)
}
