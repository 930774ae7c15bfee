// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"context"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/mock"
)

var (
	_ ChainLookup  = (*mockChainLookup)(nil)
	_ KeyStore     = (*mockKeyStore)(nil)
	_ ScriptEngine = (*mockScriptEngine)(nil)
)

// mockChainLookup is a mock implementation of the ChainLookup interface.
type mockChainLookup struct {
	mock.Mock
}

func (m *mockChainLookup) FindOutput(ctx context.Context,
	op wire.OutPoint) ([]byte, error) {

	args := m.Called(ctx, op)
	script, _ := args.Get(0).([]byte)

	return script, args.Error(1)
}

// mockKeyStore is a mock implementation of the KeyStore interface.
type mockKeyStore struct {
	mock.Mock
}

func (m *mockKeyStore) KeysOwning(ctx context.Context,
	script []byte) ([]*KeyMaterial, error) {

	args := m.Called(ctx, script)
	keys, _ := args.Get(0).([]*KeyMaterial)

	return keys, args.Error(1)
}

func (m *mockKeyStore) RedeemScript(ctx context.Context,
	scriptHash []byte) ([]byte, error) {

	args := m.Called(ctx, scriptHash)
	script, _ := args.Get(0).([]byte)

	return script, args.Error(1)
}

// mockScriptEngine is a mock implementation of the ScriptEngine interface.
type mockScriptEngine struct {
	mock.Mock
}

func (m *mockScriptEngine) Sign(params *SignParams) ([]byte, error) {
	args := m.Called(params)
	script, _ := args.Get(0).([]byte)

	return script, args.Error(1)
}

func (m *mockScriptEngine) Combine(tx *wire.MsgTx, idx int, prevScript, a,
	b []byte) ([]byte, error) {

	args := m.Called(tx, idx, prevScript, a, b)
	script, _ := args.Get(0).([]byte)

	return script, args.Error(1)
}

func (m *mockScriptEngine) Verify(tx *wire.MsgTx, idx int,
	prevScript []byte) error {

	args := m.Called(tx, idx, prevScript)

	return args.Error(0)
}
