// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/rawsign/signer"
	"github.com/stretchr/testify/mock"
)

var (
	_ TxOutFetcher       = (*mockTxOutFetcher)(nil)
	_ signer.ChainLookup = (*mockLookup)(nil)
)

// mockTxOutFetcher is a mock implementation of the TxOutFetcher interface.
type mockTxOutFetcher struct {
	mock.Mock
}

func (m *mockTxOutFetcher) GetTxOut(txHash *chainhash.Hash, index uint32,
	mempool bool) (*btcjson.GetTxOutResult, error) {

	args := m.Called(txHash, index, mempool)
	res, _ := args.Get(0).(*btcjson.GetTxOutResult)

	return res, args.Error(1)
}

// mockLookup is a mock implementation of the signer.ChainLookup interface.
type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) FindOutput(ctx context.Context,
	op wire.OutPoint) ([]byte, error) {

	args := m.Called(ctx, op)
	script, _ := args.Get(0).([]byte)

	return script, args.Error(1)
}
