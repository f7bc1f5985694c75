// Copyright (c) 2024-2026 The combinetx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultMainNetRPCPort = "8332"
	defaultTestNetRPCPort = "18332"
	defaultRegTestRPCPort = "18443"
)

var (
	bitcoindHomeDir = btcutil.AppDataDir("bitcoin", false)

	activeNetParams = &chaincfg.MainNetParams
)

// config defines the configuration options for combinetx.
//
// See loadConfig for details on the configuration load process.
type config struct {
	Verbose        bool   `short:"v" long:"verbose" description:"Enable debug logging"`
	TestNet3       bool   `short:"t" long:"testnet" description:"Use the test network"`
	RegressionTest bool   `long:"regtest" description:"Use the regression test network"`
	DryRun         bool   `short:"n" long:"dryrun" description:"Don't actually send the transaction; print its serialized hex instead"`
	OptInRBF       bool   `short:"o" long:"optin" description:"Make the new transaction itself opt in to RBF. Repeatedly feeding the result back into this program may then build a transaction that no longer conflicts with it and pay the same parties twice"`
	RPCServer      string `long:"rpcserver" description:"Wallet node RPC server to connect to (host:port)"`
	RPCUser        string `long:"rpcuser" description:"Wallet node RPC username"`
	RPCPass        string `long:"rpcpass" default-mask:"-" description:"Wallet node RPC password"`
	RPCCookie      string `long:"rpccookie" description:"Path to the bitcoind RPC authentication cookie"`
	LogFile        string `long:"logfile" description:"Write logs to this file in addition to stderr"`
}

// applyNetwork validates the network selection flags, installs the active
// network parameters and fills in the network-dependent defaults for any
// connection option left unset.
func applyNetwork(cfg *config) (*chaincfg.Params, error) {
	numNets := 0
	params := &chaincfg.MainNetParams
	rpcPort := defaultMainNetRPCPort
	cookieSubDir := ""

	if cfg.TestNet3 {
		numNets++
		params = &chaincfg.TestNet3Params
		rpcPort = defaultTestNetRPCPort
		cookieSubDir = "testnet3"
	}
	if cfg.RegressionTest {
		numNets++
		params = &chaincfg.RegressionNetParams
		rpcPort = defaultRegTestRPCPort
		cookieSubDir = "regtest"
	}
	if numNets > 1 {
		return nil, errors.New("the testnet and regtest params " +
			"can't be used together -- choose one of the two")
	}

	if cfg.RPCServer == "" {
		cfg.RPCServer = net.JoinHostPort("127.0.0.1", rpcPort)
	}

	// bitcoind writes an authentication cookie under its data
	// directory; fall back to it when no explicit credentials were
	// given.
	if cfg.RPCUser == "" && cfg.RPCPass == "" && cfg.RPCCookie == "" {
		cfg.RPCCookie = filepath.Join(bitcoindHomeDir, cookieSubDir,
			".cookie")
	}

	return params, nil
}

// loadConfig initializes and parses the config using command line options.
// The two remaining positional arguments are the ids of the transactions
// to combine.
func loadConfig() (*config, []string, error) {
	cfg := config{}

	parser := flags.NewParser(&cfg, flags.Default)
	parser.Usage = "[OPTIONS] txid1 txid2"
	remainingArgs, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	params, err := applyNetwork(&cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}
	activeNetParams = params

	if len(remainingArgs) != 2 {
		err := errors.New("exactly two transaction ids are required")
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	return &cfg, remainingArgs, nil
}
