// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btclog"
	"github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "rawsign.conf"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "rawsign.log"
	defaultOutputDBType   = "sqlite"
)

var (
	defaultAppDataDir  = btcutil.AppDataDir("rawsign", false)
	btcdDefaultCAFile  = filepath.Join(btcutil.AppDataDir("btcd", false), "rpc.cert")
	defaultConfigFile  = filepath.Join(defaultAppDataDir, defaultConfigFilename)
	defaultLogDir      = filepath.Join(defaultAppDataDir, defaultLogDirname)
	errConflictingNets = errors.New("the testnet, regtest and simnet " +
		"params can't be used together -- choose one")
)

// config defines the configuration options for rawsign.
//
// See loadConfig for details on the configuration load process.
type config struct {
	// General application behavior
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	TestNet3   bool   `long:"testnet" description:"Use the test Bitcoin network (version 3)"`
	RegTest    bool   `long:"regtest" description:"Use the regression test Bitcoin network"`
	SimNet     bool   `long:"simnet" description:"Use the simulation test network"`
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	LogDir     string `long:"logdir" description:"Directory to log output."`

	// RPC options
	RPCConnect     string `short:"c" long:"rpcconnect" description:"Hostname/IP and port of btcd RPC server used to look up previous outputs"`
	RPCUser        string `short:"u" long:"rpcuser" description:"btcd RPC username"`
	RPCPass        string `short:"P" long:"rpcpass" default-mask:"-" description:"btcd RPC password"`
	CAFile         string `long:"rpccert" description:"File containing root certificates to authenticate a TLS connection with btcd"`
	DisableTLS     bool   `long:"notls" description:"Disable TLS for the RPC client"`
	IncludeMempool bool   `long:"includemempool" description:"Let the RPC lookup return outputs of unconfirmed transactions"`

	// Previous output sources
	MempoolTxs   []string `long:"mempooltx" description:"Hex encoded unconfirmed transaction whose outputs may be spent (may be repeated)"`
	OutputDB     string   `long:"outputdb" description:"Path (sqlite) or DSN (postgres) of the previous output index"`
	OutputDBType string   `long:"outputdbtype" choice:"sqlite" choice:"postgres" description:"Database backend of the previous output index"`
	IndexTxs     []string `long:"indextx" description:"Hex encoded transaction whose outputs are recorded in the output index before signing (may be repeated)"`
	WalletDB     string   `long:"walletdb" description:"Path of a wallet database whose transaction history is used to look up previous outputs"`

	// Key options
	KeyDB         string   `long:"keydb" description:"Path of the encrypted key store database"`
	ImportKeys    []string `long:"importkey" description:"WIF encoded private key imported into the key store (may be repeated)"`
	ImportScripts []string `long:"importscript" description:"Hex encoded redeem script imported into the key store (may be repeated)"`

	// Request options
	PrevOuts  string   `long:"prevouts" description:"JSON array of previous outputs: [{\"txid\":..,\"vout\":..,\"scriptPubKey\":..,\"redeemScript\":..}]"`
	PrivKeys  []string `long:"privkey" description:"WIF encoded private key to sign with instead of the key store (may be repeated)"`
	PromptKey bool     `long:"promptkey" description:"Read a WIF encoded private key to sign with from the terminal"`
	SigHash   string   `long:"sighash" description:"Signature hash type {ALL, NONE, SINGLE, ALL|ANYONECANPAY, NONE|ANYONECANPAY, SINGLE|ANYONECANPAY}"`
	PSBTs     []string `long:"psbt" description:"Base64 encoded PSBT to use as a transaction variant (may be repeated)"`

	// params are the parameters of the selected network.
	params *chaincfg.Params
}

// defaultConfig returns a config holding the default values.
func defaultConfig() config {
	return config{
		ConfigFile:   defaultConfigFile,
		DebugLevel:   defaultLogLevel,
		LogDir:       defaultLogDir,
		OutputDBType: defaultOutputDBType,
		SigHash:      "ALL",
	}
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(defaultAppDataDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	return filepath.Clean(os.ExpandEnv(path))
}

// normalizeAddress returns addr with the passed default port appended if
// there is not already a port specified.
func normalizeAddress(addr, defaultPort string) string {
	_, _, err := net.SplitHostPort(addr)
	if err != nil {
		return net.JoinHostPort(addr, defaultPort)
	}

	return addr
}

// rpcPort returns the default btcd RPC port of a network.
func rpcPort(params *chaincfg.Params) string {
	switch params.Net {
	case chaincfg.TestNet3Params.Net:
		return "18334"
	case chaincfg.RegressionNetParams.Net:
		return "18334"
	case chaincfg.SimNetParams.Net:
		return "18556"
	default:
		return "8334"
	}
}

// loadConfig initializes and parses the config using a config file and
// command line options. It returns the parsed config together with the
// remaining positional arguments, the raw transaction variants.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
func loadConfig(args []string) (*config, []string, error) {
	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.
	preCfg := defaultConfig()
	preParser := flags.NewParser(&preCfg, flags.Default)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			return nil, nil, err
		}
		preParser.WriteHelp(os.Stderr)

		return nil, nil, err
	}

	// Load additional config from file.
	cfg := defaultConfig()
	parser := flags.NewParser(&cfg, flags.Default)
	configFile := cleanAndExpandPath(preCfg.ConfigFile)
	err = flags.NewIniParser(parser).ParseFile(configFile)
	if err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintln(os.Stderr, err)
			parser.WriteHelp(os.Stderr)

			return nil, nil, err
		}
	}

	// Parse command line options again to ensure they take precedence.
	remaining, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}

	return &cfg, remaining, nil
}

// validate checks the parsed options and fills in the derived values.
func (cfg *config) validate() error {
	numNets := 0
	cfg.params = &chaincfg.MainNetParams
	if cfg.TestNet3 {
		numNets++
		cfg.params = &chaincfg.TestNet3Params
	}
	if cfg.RegTest {
		numNets++
		cfg.params = &chaincfg.RegressionNetParams
	}
	if cfg.SimNet {
		numNets++
		cfg.params = &chaincfg.SimNetParams
	}
	if numNets > 1 {
		return errConflictingNets
	}

	if _, ok := btclog.LevelFromString(cfg.DebugLevel); !ok {
		return fmt.Errorf("the specified debug level [%v] is invalid",
			cfg.DebugLevel)
	}

	if cfg.PromptKey && len(cfg.PrivKeys) > 0 {
		return errors.New("--promptkey and --privkey can't be used " +
			"together")
	}

	if len(cfg.IndexTxs) > 0 && cfg.OutputDB == "" {
		return errors.New("--indextx requires --outputdb")
	}

	if (len(cfg.ImportKeys) > 0 || len(cfg.ImportScripts) > 0) &&
		cfg.KeyDB == "" {

		return errors.New("--importkey and --importscript require " +
			"--keydb")
	}

	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.LogDir = filepath.Join(cfg.LogDir, cfg.params.Name)

	if cfg.KeyDB != "" {
		cfg.KeyDB = cleanAndExpandPath(cfg.KeyDB)
	}
	if cfg.WalletDB != "" {
		cfg.WalletDB = cleanAndExpandPath(cfg.WalletDB)
	}
	if cfg.OutputDB != "" && cfg.OutputDBType == "sqlite" {
		cfg.OutputDB = cleanAndExpandPath(cfg.OutputDB)
	}

	if cfg.RPCConnect != "" {
		cfg.RPCConnect = normalizeAddress(
			cfg.RPCConnect, rpcPort(cfg.params),
		)
		if !cfg.DisableTLS && cfg.CAFile == "" {
			cfg.CAFile = btcdDefaultCAFile
		}
	}

	return nil
}
