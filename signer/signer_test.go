// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"errors"
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestNew checks config validation.
func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "no chain params",
			cfg: Config{
				Chain:  &mockChainLookup{},
				Engine: &mockScriptEngine{},
			},
			wantErr: ErrMissingChainParams,
		},
		{
			name: "no engine",
			cfg: Config{
				ChainParams: testParams,
				Chain:       &mockChainLookup{},
			},
			wantErr: ErrMissingEngine,
		},
		{
			name: "no chain lookup",
			cfg: Config{
				ChainParams: testParams,
				Engine:      &mockScriptEngine{},
			},
			wantErr: ErrMissingChain,
		},
		{
			name: "no key store",
			cfg: Config{
				ChainParams: testParams,
				Chain:       &mockChainLookup{},
				Engine:      &mockScriptEngine{},
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, err := New(tc.cfg)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Nil(t, s)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, s)
		})
	}
}

// TestSignTransactionCapabilityFailures checks that failing capabilities
// abort the call.
func TestSignTransactionCapabilityFailures(t *testing.T) {
	t.Parallel()

	key := testKey(1)
	prevScript := p2pkhScript(t, key)
	errBackend := errors.New("backend down")

	t.Run("chain lookup", func(t *testing.T) {
		t.Parallel()

		chain := &mockChainLookup{}
		chain.On("FindOutput", mock.Anything, testOutPoint(0)).
			Return(nil, errBackend).Once()

		s, err := New(Config{
			ChainParams: testParams,
			Chain:       chain,
			Engine:      &mockScriptEngine{},
		})
		require.NoError(t, err)

		_, err = s.SignTransaction(testContext(t), &Request{
			Variants: []*wire.MsgTx{createDummyTestTx(1)},
			HashType: txscript.SigHashAll,
		})
		require.ErrorIs(t, err, errBackend)
		chain.AssertExpectations(t)
	})

	t.Run("key store", func(t *testing.T) {
		t.Parallel()

		chain := &mockChainLookup{}
		chain.On("FindOutput", mock.Anything, testOutPoint(0)).
			Return(prevScript, nil).Once()

		store := &mockKeyStore{}
		store.On("KeysOwning", mock.Anything, prevScript).
			Return(nil, errBackend).Once()

		s, err := New(Config{
			ChainParams: testParams,
			Chain:       chain,
			KeyStore:    store,
			Engine:      &mockScriptEngine{},
		})
		require.NoError(t, err)

		variant := createDummyTestTx(1)
		_, err = s.SignTransaction(testContext(t), &Request{
			Variants: []*wire.MsgTx{variant},
			HashType: txscript.SigHashAll,
		})
		require.ErrorIs(t, err, errBackend)
		chain.AssertExpectations(t)
		store.AssertExpectations(t)
	})
}

// TestSignTransactionSigHashSingle checks that an input without a matching
// output is not signed under SigHashSingle while the rest are.
func TestSignTransactionSigHashSingle(t *testing.T) {
	t.Parallel()

	key := testKey(1)
	prevScript := p2pkhScript(t, key)

	chain := &mockChainLookup{}
	chain.On("FindOutput", mock.Anything, mock.Anything).
		Return(prevScript, nil)

	engine := &mockScriptEngine{}
	t.Cleanup(func() {
		engine.AssertExpectations(t)
	})

	// Only the first input has an output to commit to.
	engine.On("Sign", mock.MatchedBy(func(p *SignParams) bool {
		return p.InputIndex == 0
	})).Return([]byte{0x01}, nil).Once()
	engine.On("Combine", mock.Anything, 0, prevScript, []byte{0x01},
		[]byte(nil)).Return([]byte{0x01}, nil).Once()
	engine.On("Combine", mock.Anything, 1, prevScript, []byte(nil),
		[]byte(nil)).Return(nil, nil).Once()
	engine.On("Verify", mock.Anything, 0, prevScript).Return(nil).Once()
	engine.On("Verify", mock.Anything, 1, prevScript).
		Return(errors.New("empty stack")).Once()

	s, err := New(Config{
		ChainParams: testParams,
		Chain:       chain,
		Engine:      engine,
	})
	require.NoError(t, err)

	res, err := s.SignTransaction(testContext(t), &Request{
		Variants: []*wire.MsgTx{createDummyTestTx(2)},
		Keys:     fn.Some([]*KeyMaterial{key}),
		HashType: txscript.SigHashSingle,
	})
	require.NoError(t, err)
	require.False(t, res.Complete)
	require.Equal(t, InputVerified, res.Inputs[0].State)
	require.Equal(t, InputIncomplete, res.Inputs[1].State)
	require.ErrorIs(t, res.Inputs[1].Err, ErrNoSignature)
}

// TestStrings checks the names of input states and error kinds.
func TestStrings(t *testing.T) {
	t.Parallel()

	require.Equal(t, "verified", InputVerified.String())
	require.Equal(t, "incomplete", InputIncomplete.String())
	require.Equal(t, "unknown(9)", InputState(9).String())

	require.Equal(t, "ErrScriptMismatch", ErrScriptMismatch.String())
	require.Equal(t, "Unknown ErrorKind (42)", ErrorKind(42).String())

	err := NewError(ErrDecodeFailure, "bad tx", errors.New("eof"))
	require.Equal(t, "bad tx: eof", err.Error())
	require.True(t, IsError(err, ErrDecodeFailure))
	require.False(t, IsError(err, ErrMissingField))
	require.False(t, IsError(errors.New("other"), ErrDecodeFailure))
}
