// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"errors"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/walletdb"
	"github.com/btcsuite/btcwallet/wtxmgr"
	"github.com/btcsuite/rawsign/signer"
)

var (
	// wtxmgrNamespaceKey is the namespace key of a wallet's transaction
	// store.
	wtxmgrNamespaceKey = []byte("wtxmgr")

	// errNoTxStore is returned when the wallet database has no
	// transaction store namespace.
	errNoTxStore = errors.New("wallet database has no tx store")
)

// TxDetailer looks up transactions recorded by a wallet. *wtxmgr.Store
// satisfies it.
type TxDetailer interface {
	TxDetails(ns walletdb.ReadBucket,
		txHash *chainhash.Hash) (*wtxmgr.TxDetails, error)
}

// TxStoreLookup resolves previous outputs from the transactions a wallet has
// recorded, mined or not. Outputs are found whether or not they are spent.
type TxStoreLookup struct {
	db    walletdb.DB
	store TxDetailer
}

// A compile-time assertion to ensure that TxStoreLookup implements the
// signer.ChainLookup interface.
var _ signer.ChainLookup = (*TxStoreLookup)(nil)

// NewTxStoreLookup creates a TxStoreLookup over the wallet database db and
// its transaction store.
func NewTxStoreLookup(db walletdb.DB, store TxDetailer) *TxStoreLookup {
	return &TxStoreLookup{
		db:    db,
		store: store,
	}
}

// OpenTxStoreLookup opens the transaction store of an existing wallet
// database and returns a TxStoreLookup over it.
func OpenTxStoreLookup(db walletdb.DB,
	params *chaincfg.Params) (*TxStoreLookup, error) {

	var store *wtxmgr.Store
	err := walletdb.View(db, func(tx walletdb.ReadTx) error {
		ns := tx.ReadBucket(wtxmgrNamespaceKey)
		if ns == nil {
			return errNoTxStore
		}

		var err error
		store, err = wtxmgr.Open(ns, params)

		return err
	})
	if err != nil {
		return nil, err
	}

	return NewTxStoreLookup(db, store), nil
}

// FindOutput returns the script of output op if the wallet recorded its
// transaction.
func (t *TxStoreLookup) FindOutput(_ context.Context,
	op wire.OutPoint) ([]byte, error) {

	var script []byte
	err := walletdb.View(t.db, func(tx walletdb.ReadTx) error {
		ns := tx.ReadBucket(wtxmgrNamespaceKey)
		if ns == nil {
			return errNoTxStore
		}

		details, err := t.store.TxDetails(ns, &op.Hash)
		if err != nil {
			return err
		}

		// If the transaction looked up is nil, it was not found.
		if details == nil {
			return signer.ErrOutputNotFound
		}

		txOuts := details.MsgTx.TxOut
		if op.Index >= uint32(len(txOuts)) {
			return signer.ErrOutputNotFound
		}

		script = txOuts[op.Index].PkScript

		return nil
	})
	if err != nil {
		return nil, err
	}

	return script, nil
}
