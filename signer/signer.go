// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package signer signs raw transactions and reconciles the signatures that
// several independent signers contributed to copies of the same transaction.
//
// Every capability the signer needs is passed in through Config: a
// ChainLookup to find the scripts of previous outputs, an optional KeyStore
// holding the keys of the local party, and a ScriptEngine that knows how to
// produce, combine and verify signature scripts. A Signer holds no request
// state and is safe for concurrent use.
package signer

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/davecgh/go-spew/spew"
)

// Config holds the capabilities a Signer works with.
type Config struct {
	// ChainParams are the parameters of the network the transactions
	// belong to.
	ChainParams *chaincfg.Params

	// Chain resolves the scripts of previous outputs.
	Chain ChainLookup

	// KeyStore supplies keys when a request carries none of its own. It
	// may be nil, in which case such requests only merge signatures.
	KeyStore KeyStore

	// Engine produces, combines and verifies signature scripts.
	Engine ScriptEngine
}

// Signer signs transactions and merges partial signatures.
type Signer struct {
	cfg Config
}

// New creates a Signer from the given config.
func New(cfg Config) (*Signer, error) {
	switch {
	case cfg.ChainParams == nil:
		return nil, ErrMissingChainParams

	case cfg.Engine == nil:
		return nil, ErrMissingEngine

	case cfg.Chain == nil:
		return nil, ErrMissingChain
	}

	return &Signer{cfg: cfg}, nil
}

// SignTransaction signs every input of the transaction described by
// req.Variants that it has keys for, merges in the signatures already present
// in each variant, and reports which inputs are now fully signed.
//
// The returned transaction is a copy of the first variant carrying the best
// signature script obtained for every input, whether verified or not. The
// variants themselves are never modified.
//
// An error is returned only for malformed requests, conflicting previous
// output scripts and failures of the chain lookup or key store. An input that
// cannot be signed or verified is reported through Result.Inputs and
// Result.Complete instead.
func (s *Signer) SignTransaction(ctx context.Context,
	req *Request) (*Result, error) {

	if err := validateVariants(req.Variants); err != nil {
		return nil, err
	}

	mergedTx := req.Variants[0].Copy()

	prevScripts, err := resolvePrevScripts(
		ctx, mergedTx, s.cfg.Chain, req.PrevOuts,
	)
	if err != nil {
		return nil, err
	}

	keys := newKeySource(s.cfg.ChainParams, s.cfg.KeyStore, req)

	result := &Result{
		Tx:       mergedTx,
		Complete: true,
		Inputs:   make([]InputResult, len(mergedTx.TxIn)),
	}
	for i, txIn := range mergedTx.TxIn {
		inputResult := &result.Inputs[i]
		inputResult.Index = uint32(i)

		prevScript, ok := prevScripts[txIn.PreviousOutPoint]
		if !ok {
			log.Debugf("Input %d (%v) is unresolved", i,
				txIn.PreviousOutPoint)

			inputResult.State = InputIncomplete
			inputResult.Err = ErrUnresolvedInput
			result.Complete = false

			continue
		}

		fresh, err := s.signInput(
			ctx, mergedTx, i, prevScript, keys, req.HashType,
		)
		if err != nil {
			return nil, err
		}

		candidates := candidateScripts(fresh, req.Variants, i)
		merged := s.mergeCandidates(mergedTx, i, prevScript, candidates)
		inputResult.State = InputSigned

		err = s.verifyInput(mergedTx, i, merged, prevScript)
		if err != nil {
			log.Debugf("Input %d is incomplete: %v", i, err)

			inputResult.State = InputIncomplete
			inputResult.Err = err
			result.Complete = false

			continue
		}

		inputResult.State = InputVerified
	}

	log.Tracef("Signed transaction %v (complete=%v): %v",
		mergedTx.TxHash(), result.Complete,
		newLogClosure(func() string {
			return spew.Sdump(mergedTx)
		}))

	return result, nil
}
