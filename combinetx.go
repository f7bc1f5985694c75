// Copyright (c) 2024-2026 The combinetx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// combinetx merges two unconfirmed, replaceable wallet transactions into
// one replacement transaction that conflicts with both, consolidating
// duplicate payments and bumping the fee past the originals and their
// mempool descendants.
package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog"

	"github.com/btcsuite/combinetx/combiner"
	"github.com/btcsuite/combinetx/rpcnode"
)

// combineMain is the real main function for combinetx.  It is necessary
// to work around the fact that deferred functions do not run when
// os.Exit() is called.
func combineMain() error {
	cfg, args, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.LogFile != "" {
		if err := initLogRotator(cfg.LogFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return err
		}
		defer logRotator.Close()
	}
	if cfg.Verbose {
		setLogLevels(btclog.LevelDebug)
	}

	node, err := rpcnode.New(&rpcnode.Config{
		Host:       cfg.RPCServer,
		User:       cfg.RPCUser,
		Pass:       cfg.RPCPass,
		CookiePath: cfg.RPCCookie,
		Params:     activeNetParams,
	})
	if err != nil {
		log.Errorf("Unable to connect to %s: %v", cfg.RPCServer, err)
		return err
	}
	defer node.Shutdown()

	comb, err := combiner.New(&combiner.Config{
		Node:     node,
		OptInRBF: cfg.OptInRBF,
		DryRun:   cfg.DryRun,
		Logger:   cmbnLog,
	})
	if err != nil {
		return err
	}

	result, err := comb.Combine(args[0], args[1])
	if err != nil {
		log.Errorf("%v", err)
		return err
	}

	if cfg.DryRun {
		fmt.Println(result.Hex)
	} else {
		fmt.Println(result.TxID)
	}

	return nil
}

func main() {
	if err := combineMain(); err != nil {
		os.Exit(1)
	}
}
