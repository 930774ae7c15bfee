// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/rawsign/signer"
)

// MemPool is an in-memory set of transactions whose outputs can be spent
// before they confirm. It is safe for concurrent use.
type MemPool struct {
	mu  sync.RWMutex
	txs map[chainhash.Hash]*wire.MsgTx
}

// A compile-time assertion to ensure that MemPool implements the
// signer.ChainLookup interface.
var _ signer.ChainLookup = (*MemPool)(nil)

// NewMemPool creates an empty MemPool.
func NewMemPool() *MemPool {
	return &MemPool{
		txs: make(map[chainhash.Hash]*wire.MsgTx),
	}
}

// AddTx adds a transaction to the pool.
func (m *MemPool) AddTx(tx *wire.MsgTx) {
	txHash := tx.TxHash()

	m.mu.Lock()
	m.txs[txHash] = tx
	m.mu.Unlock()

	log.Debugf("Added tx %v to mempool", txHash)
}

// RemoveTx removes the transaction with the given hash from the pool.
func (m *MemPool) RemoveTx(txHash chainhash.Hash) {
	m.mu.Lock()
	delete(m.txs, txHash)
	m.mu.Unlock()
}

// FindOutput returns the script of output op if its transaction is in the
// pool.
func (m *MemPool) FindOutput(_ context.Context,
	op wire.OutPoint) ([]byte, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.txs[op.Hash]
	if !ok || op.Index >= uint32(len(tx.TxOut)) {
		return nil, signer.ErrOutputNotFound
	}

	return tx.TxOut[op.Index].PkScript, nil
}
