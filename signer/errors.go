// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"errors"
	"fmt"
)

var (
	// ErrOutputNotFound is returned by a ChainLookup when it has no record
	// of the requested previous output. The signer treats it as a gap in
	// its knowledge rather than a failure.
	ErrOutputNotFound = errors.New("previous output not found")

	// ErrScriptNotFound is returned by a KeyStore when it does not know
	// the redeem script for a script hash.
	ErrScriptNotFound = errors.New("redeem script not found")

	// ErrUnresolvedInput is recorded for an input whose previous output
	// script could not be resolved from any source.
	ErrUnresolvedInput = errors.New("previous output script unknown")

	// ErrNoSignature is recorded for an input for which neither this
	// signer nor any of the supplied variants produced a signature
	// script.
	ErrNoSignature = errors.New("no signature available")

	// ErrMissingChainParams is returned by New when the config has no
	// chain parameters.
	ErrMissingChainParams = errors.New("missing chain params")

	// ErrMissingEngine is returned by New when the config has no script
	// engine.
	ErrMissingEngine = errors.New("missing script engine")

	// ErrMissingChain is returned by New when the config has no chain
	// lookup.
	ErrMissingChain = errors.New("missing chain lookup")
)

// ErrorKind identifies a kind of request error.
type ErrorKind int

// These constants are used to identify a specific Error.
const (
	// ErrMissingField indicates that a required field of the request,
	// such as a previous output's script, is absent.
	ErrMissingField ErrorKind = iota

	// ErrMalformedEncoding indicates that a request field holds bytes
	// that cannot be interpreted, such as non-hex data, or that the
	// supplied transaction variants do not describe the same transaction.
	ErrMalformedEncoding

	// ErrScriptMismatch indicates that two sources disagree on the script
	// of the same previous output.
	ErrScriptMismatch

	// ErrDecodeFailure indicates that a transaction variant could not be
	// deserialized.
	ErrDecodeFailure

	// ErrInvalidParameter indicates a request parameter with a value
	// outside of its allowed set, such as an unknown sighash name.
	ErrInvalidParameter

	// ErrInvalidKey indicates a private key that could not be decoded or
	// that belongs to another network.
	ErrInvalidKey
)

// errorKindStrings is a map of error kinds back to their constant names for
// pretty printing.
var errorKindStrings = map[ErrorKind]string{
	ErrMissingField:      "ErrMissingField",
	ErrMalformedEncoding: "ErrMalformedEncoding",
	ErrScriptMismatch:    "ErrScriptMismatch",
	ErrDecodeFailure:     "ErrDecodeFailure",
	ErrInvalidParameter:  "ErrInvalidParameter",
	ErrInvalidKey:        "ErrInvalidKey",
}

// String returns the ErrorKind as a human-readable name.
func (k ErrorKind) String() string {
	if s := errorKindStrings[k]; s != "" {
		return s
	}

	return fmt.Sprintf("Unknown ErrorKind (%d)", int(k))
}

// Error identifies a request error that aborts a signing operation. It has an
// error kind, a descriptive message and an optional underlying error.
type Error struct {
	Kind ErrorKind
	Desc string
	Err  error
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	if e.Err != nil {
		return e.Desc + ": " + e.Err.Error()
	}

	return e.Desc
}

// Unwrap returns the underlying error, if any.
func (e Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error given a set of arguments.
func NewError(kind ErrorKind, desc string, err error) Error {
	return Error{Kind: kind, Desc: desc, Err: err}
}

// IsError returns whether the error is a signer Error with a matching kind.
func IsError(err error, kind ErrorKind) bool {
	var serr Error
	if !errors.As(err, &serr) {
		return false
	}

	return serr.Kind == kind
}
