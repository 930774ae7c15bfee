// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chain provides signer.ChainLookup implementations that resolve the
// scripts of previous outputs from a btcd node, a local view of unconfirmed
// transactions, a wallet's transaction store, or several of them in turn.
package chain

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/rawsign/signer"
)

// TxOutFetcher is the part of a btcd RPC client used by RPCLookup.
// *rpcclient.Client satisfies it.
type TxOutFetcher interface {
	GetTxOut(txHash *chainhash.Hash, index uint32,
		mempool bool) (*btcjson.GetTxOutResult, error)
}

// A compile-time assertion to ensure that the btcd RPC client can be used by
// RPCLookup.
var _ TxOutFetcher = (*rpcclient.Client)(nil)

// RPCLookup resolves previous outputs through the gettxout RPC of a btcd
// node. Only unspent outputs are found.
type RPCLookup struct {
	client         TxOutFetcher
	includeMempool bool
}

// A compile-time assertion to ensure that RPCLookup implements the
// signer.ChainLookup interface.
var _ signer.ChainLookup = (*RPCLookup)(nil)

// NewRPCLookup creates an RPCLookup. When includeMempool is set, outputs of
// unconfirmed transactions in the node's mempool are found as well.
func NewRPCLookup(client TxOutFetcher, includeMempool bool) *RPCLookup {
	return &RPCLookup{
		client:         client,
		includeMempool: includeMempool,
	}
}

// FindOutput returns the script of the unspent output op.
func (r *RPCLookup) FindOutput(ctx context.Context,
	op wire.OutPoint) ([]byte, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := r.client.GetTxOut(&op.Hash, op.Index, r.includeMempool)
	if err != nil {
		return nil, fmt.Errorf("gettxout %v: %w", op, err)
	}

	// A nil result means the output is spent or never existed.
	if res == nil {
		return nil, signer.ErrOutputNotFound
	}

	script, err := hex.DecodeString(res.ScriptPubKey.Hex)
	if err != nil {
		return nil, fmt.Errorf("gettxout %v: invalid script hex: %w",
			op, err)
	}

	log.Tracef("Found output %v with %d confirmations via RPC", op,
		res.Confirmations)

	return script, nil
}

// RPCConfig holds the connection settings of a btcd RPC server.
type RPCConfig struct {
	// Host is the host:port of the RPC server.
	Host string

	// User and Pass are the RPC credentials.
	User string
	Pass string

	// Certificates holds the PEM encoded TLS certificates of the server.
	Certificates []byte

	// DisableTLS connects without TLS.
	DisableTLS bool
}

// NewRPCClient creates an HTTP POST mode btcd RPC client. No connection is
// made until the first request.
func NewRPCClient(cfg *RPCConfig) (*rpcclient.Client, error) {
	connCfg := &rpcclient.ConnConfig{
		Host:         cfg.Host,
		User:         cfg.User,
		Pass:         cfg.Pass,
		Certificates: cfg.Certificates,
		DisableTLS:   cfg.DisableTLS,
		HTTPPostMode: true,
	}

	client, err := rpcclient.New(connCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create rpc client: %w", err)
	}

	return client, nil
}
