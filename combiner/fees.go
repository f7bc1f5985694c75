// Copyright (c) 2024-2026 The combinetx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package combiner

import (
	"fmt"
	"math"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// feeBudget captures everything the replacement's fee must outbid: the
// combined modified fees of the originals, the modified fees of all their
// unconfirmed descendants, and the stricter of the two original feerates.
type feeBudget struct {
	oldFees        btcutil.Amount
	oldFeeRate     float64
	descendantFees btcutil.Amount
	minFeeRate     float64

	// descendants holds the merged descendant txids of both originals
	// in display form.  The builder consults it to detect one original
	// spending from the other.
	descendants map[string]struct{}
}

// assessFees fetches the mempool view of both candidates and derives the
// fee floors the replacement must clear.  Either candidate having left the
// mempool since validation is fatal.
func (c *Combiner) assessFees(tx1, tx2 *candidate) (*feeBudget, error) {
	entry1, err := c.cfg.Node.MempoolEntry(tx1.id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %v",
			ErrMempoolEntryUnavailable, tx1.id, err)
	}
	entry2, err := c.cfg.Node.MempoolEntry(tx2.id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %v",
			ErrMempoolEntryUnavailable, tx2.id, err)
	}

	descendants1, err := c.cfg.Node.MempoolDescendants(tx1.id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %v",
			ErrMempoolEntryUnavailable, tx1.id, err)
	}
	descendants2, err := c.cfg.Node.MempoolDescendants(tx2.id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %v",
			ErrMempoolEntryUnavailable, tx2.id, err)
	}

	// Union of both descendant sets.  A descendant shared by both
	// originals carries the same fee on both sides, so overwriting on
	// collision is harmless and avoids double counting.
	merged := make(map[string]btcutil.Amount,
		len(descendants1)+len(descendants2))
	for id, entry := range descendants1 {
		merged[id] = entry.ModifiedFee
	}
	for id, entry := range descendants2 {
		merged[id] = entry.ModifiedFee
	}

	var descendantFees btcutil.Amount
	ids := make(map[string]struct{}, len(merged))
	for id, fee := range merged {
		descendantFees += fee
		ids[id] = struct{}{}
	}

	oldFees := entry1.ModifiedFee + entry2.ModifiedFee
	budget := &feeBudget{
		oldFees:        oldFees,
		oldFeeRate:     float64(oldFees) / float64(tx1.size+tx2.size),
		descendantFees: descendantFees,
		minFeeRate: math.Max(
			float64(entry1.ModifiedFee)/float64(tx1.size),
			float64(entry2.ModifiedFee)/float64(tx2.size),
		),
		descendants: ids,
	}

	c.log.Debugf("Original fees: %v + %v = %v, descendant fees: %v, "+
		"min feerate: %.3f sat/b", entry1.ModifiedFee, entry2.ModifiedFee,
		budget.oldFees, budget.descendantFees, budget.minFeeRate)

	return budget, nil
}

// adjustFees returns a copy of the signed transaction whose change output
// has been shrunk until the fee covers the originals plus descendants,
// the feerate clears the stricter original feerate, and the relay
// bandwidth of the replacement itself is paid for.  Payee outputs are
// never touched; only the wallet's own change absorbs the bump.
func (c *Combiner) adjustFees(tx *wire.MsgTx, changePos int,
	fundedFee btcutil.Amount, budget *feeBudget,
	relayFeePerKB btcutil.Amount) (*wire.MsgTx, btcutil.Amount, error) {

	newTx := tx.Copy()
	change := newTx.TxOut[changePos]
	fee := fundedFee

	// Absolute floor: the originals' fees plus everything riding on
	// top of them.  The extra satoshi breaks exact-equality edge cases
	// in the feerate comparisons below.
	target := budget.oldFees + budget.descendantFees
	if fee < target {
		change.Value -= int64(target + 1 - fee)
		fee = target
	}

	// Feerate floor: the stricter of the two original feerates.
	size := newTx.SerializeSize()
	if float64(fee)/float64(size) < budget.minFeeRate {
		deficit := int64(math.Ceil(
			budget.minFeeRate*float64(size) - float64(fee)))
		change.Value -= deficit
		fee += btcutil.Amount(deficit)
	}

	// Pay for relaying the replacement itself.
	relayBwFee := btcutil.Amount(float64(size) / 1000 * float64(relayFeePerKB))
	change.Value -= int64(relayBwFee)
	fee += relayBwFee

	if change.Value <= 0 {
		return nil, 0, fmt.Errorf("%w: change short by %v",
			ErrInsufficientChange, btcutil.Amount(-change.Value))
	}

	c.log.Debugf("Adjusted change output %d to %v, total fee %v",
		changePos, btcutil.Amount(change.Value), fee)

	return newTx, fee, nil
}
