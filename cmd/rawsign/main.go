// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// rawsign signs raw transactions and merges the signatures of several
// partially signed copies of the same transaction.
//
// Usage:
//
//	rawsign [options] <hex encoded transaction(s)>
//
// The positional argument may hold several serialized transactions back to
// back; each one is treated as a variant carrying the signatures of a
// different party. PSBTs given with --psbt are added as further variants.
// The result is printed to standard output as a signrawtransaction reply.
package main

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/walletdb"
	_ "github.com/btcsuite/btcwallet/walletdb/bdb"
	"github.com/btcsuite/rawsign/chain"
	"github.com/btcsuite/rawsign/internal/db"
	"github.com/btcsuite/rawsign/keystore"
	"github.com/btcsuite/rawsign/rawtx"
	"github.com/btcsuite/rawsign/scriptengine"
	"github.com/btcsuite/rawsign/signer"
	"github.com/jessevdk/go-flags"
	"golang.org/x/term"
)

const (
	// dbTimeout is the time to wait for a bolt database lock.
	dbTimeout = 60 * time.Second

	// walletDBNoFreelistSync mirrors btcwallet's default.
	walletDBNoFreelistSync = true
)

func main() {
	if err := rawsignMain(); err != nil {
		var e *flags.Error
		if !errors.As(err, &e) || e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// closer collects cleanup functions to run in reverse order.
type closer []func()

func (c *closer) add(f func()) {
	*c = append(*c, f)
}

func (c closer) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// rawsignMain is the real main function for rawsign. It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is
// called.
func rawsignMain() error {
	cfg, args, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	if err := initLogRotator(filepath.Join(
		cfg.LogDir, defaultLogFilename)); err != nil {

		return err
	}
	defer logRotator.Close()
	setLogLevels(cfg.DebugLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var cleanup closer
	defer cleanup.run()

	req, err := buildRequest(cfg, args)
	if err != nil {
		return err
	}

	lookup, err := openChainLookup(ctx, cfg, &cleanup)
	if err != nil {
		return err
	}

	keyStore, err := openKeyStore(ctx, cfg, &cleanup)
	if err != nil {
		return err
	}

	cfgSigner := signer.Config{
		ChainParams: cfg.params,
		Chain:       lookup,
		Engine:      scriptengine.New(cfg.params),
	}

	// A nil *DBStore must not end up as a non-nil interface.
	if keyStore != nil {
		cfgSigner.KeyStore = keyStore
	}

	s, err := signer.New(cfgSigner)
	if err != nil {
		return err
	}

	res, err := s.SignTransaction(ctx, req)
	if err != nil {
		return err
	}

	log.Infof("Signed %d of %d inputs of %v", len(res.Inputs)-
		len(res.Incomplete()), len(res.Inputs), res.Tx.TxHash())

	reply, err := rawtx.MarshalResult(res)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(reply, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	return nil
}

// buildRequest assembles the signing request from the positional arguments
// and the request options.
func buildRequest(cfg *config, args []string) (*signer.Request, error) {
	var inputs *[]btcjson.RawTxInput
	if cfg.PrevOuts != "" {
		var prevOuts []btcjson.RawTxInput
		err := json.Unmarshal([]byte(cfg.PrevOuts), &prevOuts)
		if err != nil {
			return nil, fmt.Errorf("unable to parse --prevouts: %w",
				err)
		}
		inputs = &prevOuts
	}

	privKeys := cfg.PrivKeys
	if cfg.PromptKey {
		wif, err := promptSecret("Private key (WIF): ")
		if err != nil {
			return nil, err
		}
		privKeys = []string{string(wif)}
	}

	var psbtVariants []*wire.MsgTx
	var psbtPrevOuts []signer.PrevOutOverride
	for _, b64 := range cfg.PSBTs {
		variant, overrides, err := rawtx.DecodePSBT(b64)
		if err != nil {
			return nil, err
		}

		psbtVariants = append(psbtVariants, variant)
		psbtPrevOuts = append(psbtPrevOuts, overrides...)
	}

	rawHex := strings.Join(args, "")

	// A request made of PSBTs alone needs no hex transaction.
	if rawHex == "" && len(psbtVariants) > 0 {
		var buf strings.Builder
		if err := psbtVariants[0].Serialize(
			hex.NewEncoder(&buf)); err != nil {

			return nil, err
		}
		rawHex = buf.String()
		psbtVariants[0] = nil
	}

	cmd := btcjson.NewSignRawTransactionCmd(
		rawHex, inputs, &privKeys, &cfg.SigHash,
	)
	req, err := rawtx.ParseRequest(cmd, cfg.params)
	if err != nil {
		return nil, err
	}

	for _, variant := range psbtVariants {
		if variant != nil {
			req.Variants = append(req.Variants, variant)
		}
	}
	req.PrevOuts = append(req.PrevOuts, psbtPrevOuts...)

	return req, nil
}

// openChainLookup opens every configured previous output source and
// combines them in the order mempool, output index, wallet history, btcd.
func openChainLookup(ctx context.Context, cfg *config,
	cleanup *closer) (signer.ChainLookup, error) {

	var lookups []signer.ChainLookup

	if len(cfg.MempoolTxs) > 0 {
		pool := chain.NewMemPool()
		for _, txHex := range cfg.MempoolTxs {
			tx, err := decodeTx(txHex)
			if err != nil {
				return nil, fmt.Errorf("invalid --mempooltx: %w",
					err)
			}
			pool.AddTx(tx)
		}
		lookups = append(lookups, pool)
	}

	if cfg.OutputDB != "" {
		index, err := openOutputIndex(ctx, cfg, cleanup)
		if err != nil {
			return nil, err
		}
		lookups = append(lookups, index)
	}

	if cfg.WalletDB != "" {
		lookup, err := openTxStoreLookup(cfg, cleanup)
		if err != nil {
			return nil, err
		}
		lookups = append(lookups, lookup)
	}

	if cfg.RPCConnect != "" {
		rpcCfg := &chain.RPCConfig{
			Host:       cfg.RPCConnect,
			User:       cfg.RPCUser,
			Pass:       cfg.RPCPass,
			DisableTLS: cfg.DisableTLS,
		}
		if !cfg.DisableTLS {
			certs, err := os.ReadFile(cfg.CAFile)
			if err != nil {
				return nil, fmt.Errorf("unable to read rpc "+
					"certificate: %w", err)
			}
			rpcCfg.Certificates = certs
		}

		client, err := chain.NewRPCClient(rpcCfg)
		if err != nil {
			return nil, err
		}
		cleanup.add(client.Shutdown)

		lookups = append(
			lookups, chain.NewRPCLookup(client, cfg.IncludeMempool),
		)
	}

	if len(lookups) == 0 {
		log.Warn("No previous output source configured, only " +
			"--prevouts will be used")
	}

	return chain.NewMultiLookup(lookups...), nil
}

// openOutputIndex opens the previous output index and records the outputs
// of every --indextx transaction in it.
func openOutputIndex(ctx context.Context, cfg *config,
	cleanup *closer) (*db.OutputIndex, error) {

	var (
		index *db.OutputIndex
		sqlDB *sql.DB
		err   error
	)
	switch cfg.OutputDBType {
	case "postgres":
		index, sqlDB, err = db.OpenPostgres(cfg.OutputDB)

	default:
		index, sqlDB, err = db.OpenSQLite(cfg.OutputDB)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open output index: %w", err)
	}
	cleanup.add(func() { _ = sqlDB.Close() })

	for _, txHex := range cfg.IndexTxs {
		tx, err := decodeTx(txHex)
		if err != nil {
			return nil, fmt.Errorf("invalid --indextx: %w", err)
		}
		if err := index.PutTx(ctx, tx); err != nil {
			return nil, err
		}
	}

	n, err := index.Count(ctx)
	if err != nil {
		return nil, err
	}
	log.Debugf("Output index holds %d outputs", n)

	return index, nil
}

// openTxStoreLookup opens an existing wallet database and looks up previous
// outputs in its transaction history.
func openTxStoreLookup(cfg *config,
	cleanup *closer) (signer.ChainLookup, error) {

	walletDB, err := walletdb.Open(
		"bdb", cfg.WalletDB, walletDBNoFreelistSync, dbTimeout,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to open wallet database: %w",
			err)
	}
	cleanup.add(func() { _ = walletDB.Close() })

	return chain.OpenTxStoreLookup(walletDB, cfg.params)
}

// openKeyStore opens the encrypted key store, if one is configured, and
// imports the requested keys and scripts into it.
func openKeyStore(ctx context.Context, cfg *config,
	cleanup *closer) (*keystore.DBStore, error) {

	if cfg.KeyDB == "" {
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.KeyDB), 0700); err != nil {
		return nil, err
	}

	keyDB, err := walletdb.Open(
		"bdb", cfg.KeyDB, walletDBNoFreelistSync, dbTimeout,
	)
	if errors.Is(err, walletdb.ErrDbDoesNotExist) {
		log.Infof("Creating key store %v", cfg.KeyDB)

		keyDB, err = walletdb.Create(
			"bdb", cfg.KeyDB, walletDBNoFreelistSync, dbTimeout,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open key database: %w", err)
	}
	cleanup.add(func() { _ = keyDB.Close() })

	passphrase, err := promptSecret("Key store passphrase: ")
	if err != nil {
		return nil, err
	}

	store, err := keystore.OpenDBStore(
		keyDB, cfg.params, passphrase, keystore.DefaultScryptOptions,
	)
	if err != nil {
		return nil, err
	}

	for _, wifStr := range cfg.ImportKeys {
		wif, err := btcutil.DecodeWIF(wifStr)
		if err != nil {
			return nil, fmt.Errorf("invalid --importkey: %w", err)
		}
		if err := store.ImportWIF(ctx, wif); err != nil {
			return nil, err
		}
	}

	for _, scriptHex := range cfg.ImportScripts {
		script, err := hex.DecodeString(scriptHex)
		if err != nil {
			return nil, fmt.Errorf("invalid --importscript: %w", err)
		}
		if err := store.ImportScript(ctx, script); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// promptSecret reads a line from the terminal without echoing it.
func promptSecret(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("unable to read from terminal: %w", err)
	}

	return secret, nil
}

// decodeTx decodes a single hex encoded transaction.
func decodeTx(txHex string) (*wire.MsgTx, error) {
	txs, err := rawtx.DecodeVariants(txHex)
	if err != nil {
		return nil, err
	}
	if len(txs) != 1 {
		return nil, fmt.Errorf("expected one transaction, got %d",
			len(txs))
	}

	return txs[0], nil
}
