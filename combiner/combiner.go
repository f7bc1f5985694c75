// Copyright (c) 2024-2026 The combinetx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package combiner merges two unconfirmed, replaceable wallet transactions
// into a single replacement that conflicts with both.  The replacement
// carries every external payment of the originals exactly once, reuses a
// wallet-owned output as its change destination, and pays a fee that
// outbids the originals together with all their unconfirmed descendants.
package combiner

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btclog"
	"github.com/davecgh/go-spew/spew"
)

// Config holds the combiner's injected dependencies and behavior toggles.
type Config struct {
	// Node is the wallet node used for all lookups, funding, signing
	// and broadcasting.
	Node Node

	// OptInRBF makes the replacement itself signal replaceability.
	// This is off by default on purpose: see applySequences.
	OptInRBF bool

	// DryRun suppresses the final broadcast.  The serialized
	// transaction is still produced.
	DryRun bool

	// Logger receives the combiner's debug output.  Nil disables
	// logging.
	Logger btclog.Logger
}

// Result is the outcome of a successful combine.  TxID is only set when
// the transaction was actually broadcast.
type Result struct {
	Tx   *wire.MsgTx
	TxID *chainhash.Hash
	Fee  btcutil.Amount
	Hex  string
}

// Combiner builds replacement transactions.  It holds no state between
// calls; everything is derived fresh from the two ids per invocation.
type Combiner struct {
	cfg Config
	log btclog.Logger
}

// New returns a Combiner for the given configuration.
func New(cfg *Config) (*Combiner, error) {
	if cfg.Node == nil {
		return nil, errors.New("combiner: a node is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = btclog.Disabled
	}

	return &Combiner{cfg: *cfg, log: logger}, nil
}

// Combine builds, verifies and (unless dry running) broadcasts a single
// transaction replacing the two named ones.  The arguments are hex
// transaction ids in display byte order.  Any returned error is terminal;
// nothing has been broadcast unless the returned Result carries a TxID.
func (c *Combiner) Combine(arg1, arg2 string) (*Result, error) {
	// Both ids are parsed before anything is asked of the node so that
	// a malformed argument never triggers a lookup.
	id1, err := parseTxID("txid1", arg1)
	if err != nil {
		return nil, err
	}
	id2, err := parseTxID("txid2", arg2)
	if err != nil {
		return nil, err
	}

	tx1, err := c.loadCandidate("txid1", id1)
	if err != nil {
		return nil, err
	}
	tx2, err := c.loadCandidate("txid2", id2)
	if err != nil {
		return nil, err
	}

	con, err := c.consolidateOutputs(tx1.tx, tx2.tx)
	if err != nil {
		return nil, err
	}

	budget, err := c.assessFees(tx1, tx2)
	if err != nil {
		return nil, err
	}

	skeleton := c.buildSkeleton(tx1, tx2, budget.descendants,
		con.payeeOutputs())

	funded, err := c.cfg.Node.FundTransaction(skeleton, con.changeAnchor())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFundingFailed, err)
	}
	if funded.ChangePos < 0 {
		return nil, ErrNoChangeOutput
	}
	if c.log.Level() <= btclog.LevelTrace {
		c.log.Tracef("Funded transaction: %v", spew.Sdump(funded.Tx))
	}

	sequenced := applySequences(funded.Tx, c.cfg.OptInRBF)

	signed, complete, err := c.cfg.Node.SignTransaction(sequenced)
	if err != nil {
		return nil, err
	}
	if !complete {
		return nil, ErrSigningIncomplete
	}

	relayFeePerKB, err := c.cfg.Node.RelayFeePerKB()
	if err != nil {
		return nil, err
	}

	adjusted, fee, err := c.adjustFees(signed, funded.ChangePos,
		funded.Fee, budget, relayFeePerKB)
	if err != nil {
		return nil, err
	}

	// The inputs and outputs are final now, sign once more.
	final, complete, err := c.cfg.Node.SignTransaction(adjusted)
	if err != nil {
		return nil, err
	}
	if !complete {
		return nil, ErrSigningIncomplete
	}

	if err := verifyConflicts(final, tx1, tx2); err != nil {
		return nil, err
	}

	c.logSummary(tx1, tx2, budget, final, fee)

	txHex, err := txHexString(final)
	if err != nil {
		return nil, err
	}

	if c.cfg.DryRun {
		c.log.Debugf("Dry run, not broadcasting")
		return &Result{Tx: final, Fee: fee, Hex: txHex}, nil
	}

	c.log.Debugf("Sending tx %s", txHex)
	txid, err := c.cfg.Node.Broadcast(final)
	if err != nil {
		return nil, err
	}

	return &Result{Tx: final, TxID: txid, Fee: fee, Hex: txHex}, nil
}

// logSummary emits the before/after size and fee comparison at debug
// level.
func (c *Combiner) logSummary(tx1, tx2 *candidate, budget *feeBudget,
	final *wire.MsgTx, fee btcutil.Amount) {

	if c.log.Level() > btclog.LevelDebug {
		return
	}

	combinedSize := tx1.size + tx2.size
	c.log.Debugf("Old sizes: %.3f KB %.3f KB (%.3f KB combined), "+
		"old fees: %v (%.3f sat/b combined), descendant fees: %v",
		float64(tx1.size)/1000, float64(tx2.size)/1000,
		float64(combinedSize)/1000, budget.oldFees, budget.oldFeeRate,
		budget.descendantFees)

	newSize := final.SerializeSize()
	c.log.Debugf("New tx size: %.3f KB, new fee: %v (%.3f sat/b)",
		float64(newSize)/1000, fee, float64(fee)/float64(newSize))
}

// txHexString returns the canonical serialization of tx as a hex string.
func txHexString(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf.Bytes()), nil
}
