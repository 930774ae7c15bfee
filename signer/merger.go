// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import "github.com/btcsuite/btcd/wire"

// candidateScripts returns the signature scripts to merge for input idx: the
// freshly produced one followed by the one each variant carries, in the order
// the variants were supplied.
func candidateScripts(fresh []byte, variants []*wire.MsgTx,
	idx int) [][]byte {

	candidates := make([][]byte, 0, len(variants)+1)
	candidates = append(candidates, fresh)
	for _, variant := range variants {
		candidates = append(
			candidates, variant.TxIn[idx].SignatureScript,
		)
	}

	return candidates
}

// mergeCandidates folds the candidates left to right through the script
// engine, each step combining the best script so far with the next
// candidate. The order matters for multisig scripts and is kept as given.
//
// A candidate that cannot be combined is skipped.
func (s *Signer) mergeCandidates(tx *wire.MsgTx, idx int, prevScript []byte,
	candidates [][]byte) []byte {

	if len(candidates) == 0 {
		return nil
	}

	best := candidates[0]
	for i, candidate := range candidates[1:] {
		merged, err := s.cfg.Engine.Combine(
			tx, idx, prevScript, best, candidate,
		)
		if err != nil {
			log.Debugf("Unable to merge candidate %d into input "+
				"%d: %v", i+1, idx, err)

			continue
		}

		best = merged
	}

	return best
}
