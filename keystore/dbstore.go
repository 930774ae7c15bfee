// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keystore

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcwallet/walletdb"
	"github.com/btcsuite/rawsign/signer"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	// saltSize is the size of the scrypt salt.
	saltSize = 32

	// nonceSize is the size of a secretbox nonce.
	nonceSize = 24
)

var (
	// namespaceKey is the top-level bucket of the key store.
	namespaceKey = []byte("rawsign-keystore")

	// keysBucketKey is the bucket holding encrypted keys by public key
	// hash.
	keysBucketKey = []byte("keys")

	// scriptsBucketKey is the bucket holding redeem scripts by script
	// hash.
	scriptsBucketKey = []byte("scripts")

	// saltKey is the key of the scrypt salt within the namespace.
	saltKey = []byte("salt")

	// checkKey is the key of the encrypted passphrase check value.
	checkKey = []byte("check")

	// checkPlaintext is encrypted on creation and decrypted on open to
	// detect a wrong passphrase.
	checkPlaintext = []byte("rawsign keystore")
)

var (
	// ErrWrongPassphrase is returned when a store is opened with a
	// passphrase other than the one it was created with.
	ErrWrongPassphrase = errors.New("wrong passphrase")

	// errCorruptValue is returned when a stored value cannot be
	// decrypted.
	errCorruptValue = errors.New("corrupt encrypted value")
)

// ScryptOptions holds the scrypt parameters used to derive the encryption key
// from the passphrase.
type ScryptOptions struct {
	N, R, P int
}

var (
	// DefaultScryptOptions is the default set of scrypt parameters.
	DefaultScryptOptions = ScryptOptions{
		N: 262144, // 2^18
		R: 8,
		P: 1,
	}

	// FastScryptOptions is a cheap set of scrypt parameters for tests.
	FastScryptOptions = ScryptOptions{
		N: 16,
		R: 8,
		P: 1,
	}
)

// DBStore is a signer.KeyStore persisted in a walletdb database. Private keys
// are encrypted with a key derived from a passphrase; redeem scripts are
// stored in the clear.
type DBStore struct {
	db     walletdb.DB
	params *chaincfg.Params
	key    [32]byte
}

// A compile-time assertion to ensure that DBStore implements the
// signer.KeyStore interface.
var _ signer.KeyStore = (*DBStore)(nil)

// OpenDBStore opens the key store in db, creating it on first use.
func OpenDBStore(db walletdb.DB, params *chaincfg.Params, passphrase []byte,
	opts ScryptOptions) (*DBStore, error) {

	s := &DBStore{
		db:     db,
		params: params,
	}

	err := walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		ns, err := tx.CreateTopLevelBucket(namespaceKey)
		if err != nil {
			return err
		}
		if _, err := ns.CreateBucketIfNotExists(keysBucketKey); err != nil {
			return err
		}
		_, err = ns.CreateBucketIfNotExists(scriptsBucketKey)
		if err != nil {
			return err
		}

		salt := ns.Get(saltKey)
		if salt == nil {
			salt = make([]byte, saltSize)
			if _, err := io.ReadFull(rand.Reader, salt); err != nil {
				return err
			}
			if err := ns.Put(saltKey, salt); err != nil {
				return err
			}
		}

		derived, err := scrypt.Key(
			passphrase, salt, opts.N, opts.R, opts.P, len(s.key),
		)
		if err != nil {
			return fmt.Errorf("unable to derive key: %w", err)
		}
		copy(s.key[:], derived)

		check := ns.Get(checkKey)
		if check == nil {
			sealed, err := s.seal(checkPlaintext)
			if err != nil {
				return err
			}

			return ns.Put(checkKey, sealed)
		}

		plain, err := s.open(check)
		if err != nil || !bytes.Equal(plain, checkPlaintext) {
			return ErrWrongPassphrase
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

// seal encrypts plaintext, prefixing the result with a random nonce.
func (s *DBStore) seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}

	return secretbox.Seal(nonce[:], plaintext, &nonce, &s.key), nil
}

// open decrypts a value produced by seal.
func (s *DBStore) open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize {
		return nil, errCorruptValue
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, errCorruptValue
	}

	return plain, nil
}

// ImportWIF encrypts and stores a WIF encoded key.
func (s *DBStore) ImportWIF(_ context.Context, wif *btcutil.WIF) error {
	if !wif.IsForNet(s.params) {
		return ErrWrongNetwork
	}

	sealed, err := s.seal([]byte(wif.String()))
	if err != nil {
		return err
	}

	hash := btcutil.Hash160(wif.SerializePubKey())

	return walletdb.Update(s.db, func(tx walletdb.ReadWriteTx) error {
		keys := tx.ReadWriteBucket(namespaceKey).
			NestedReadWriteBucket(keysBucketKey)

		log.Debugf("Importing key %x", hash)

		return keys.Put(hash, sealed)
	})
}

// ImportScript stores a redeem script.
func (s *DBStore) ImportScript(_ context.Context, script []byte) error {
	hash := btcutil.Hash160(script)

	return walletdb.Update(s.db, func(tx walletdb.ReadWriteTx) error {
		scripts := tx.ReadWriteBucket(namespaceKey).
			NestedReadWriteBucket(scriptsBucketKey)

		log.Debugf("Importing redeem script %x", hash)

		return scripts.Put(hash, script)
	})
}

// KeysOwning returns the stored keys able to sign for script.
func (s *DBStore) KeysOwning(_ context.Context,
	script []byte) ([]*signer.KeyMaterial, error) {

	var keys []*signer.KeyMaterial
	err := walletdb.View(s.db, func(tx walletdb.ReadTx) error {
		bucket := tx.ReadBucket(namespaceKey).
			NestedReadBucket(keysBucketKey)

		var err error
		keys, err = keysOwning(s.params, script,
			func(hash []byte) (*signer.KeyMaterial, error) {
				sealed := bucket.Get(hash)
				if sealed == nil {
					return nil, nil
				}

				return s.decodeKey(sealed)
			},
		)

		return err
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

// decodeKey decrypts and decodes a stored key.
func (s *DBStore) decodeKey(sealed []byte) (*signer.KeyMaterial, error) {
	plain, err := s.open(sealed)
	if err != nil {
		return nil, err
	}

	wif, err := btcutil.DecodeWIF(string(plain))
	if err != nil {
		return nil, fmt.Errorf("unable to decode stored key: %w", err)
	}

	return signer.NewKeyMaterial(wif), nil
}

// RedeemScript returns the stored redeem script with the given hash160.
func (s *DBStore) RedeemScript(_ context.Context,
	scriptHash []byte) ([]byte, error) {

	var script []byte
	err := walletdb.View(s.db, func(tx walletdb.ReadTx) error {
		bucket := tx.ReadBucket(namespaceKey).
			NestedReadBucket(scriptsBucketKey)

		v := bucket.Get(scriptHash)
		if v == nil {
			return signer.ErrScriptNotFound
		}

		// Values are only valid for the life of the transaction.
		script = append([]byte(nil), v...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return script, nil
}
