// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"errors"

	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/rawsign/signer"
)

// MultiLookup consults several lookups in order and returns the first script
// found.
type MultiLookup struct {
	lookups []signer.ChainLookup
}

// A compile-time assertion to ensure that MultiLookup implements the
// signer.ChainLookup interface.
var _ signer.ChainLookup = (*MultiLookup)(nil)

// NewMultiLookup creates a MultiLookup over lookups. Nil entries are
// ignored.
func NewMultiLookup(lookups ...signer.ChainLookup) *MultiLookup {
	m := &MultiLookup{}
	for _, l := range lookups {
		if l != nil {
			m.lookups = append(m.lookups, l)
		}
	}

	return m
}

// FindOutput asks each lookup in turn. Any error other than
// signer.ErrOutputNotFound stops the search.
func (m *MultiLookup) FindOutput(ctx context.Context,
	op wire.OutPoint) ([]byte, error) {

	for i, l := range m.lookups {
		script, err := l.FindOutput(ctx, op)
		switch {
		case err == nil:
			log.Tracef("Output %v resolved by lookup %d", op, i)
			return script, nil

		case errors.Is(err, signer.ErrOutputNotFound):
			continue

		default:
			return nil, err
		}
	}

	return nil, signer.ErrOutputNotFound
}
