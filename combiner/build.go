// Copyright (c) 2024-2026 The combinetx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package combiner

import (
	"github.com/btcsuite/btcd/wire"
)

// buildSkeleton assembles the unfunded replacement: tx1's shell carrying
// exactly the first input of each original plus the consolidated payee
// outputs.  Spending those two inputs is what forces both originals out of
// the mempool.
//
// When one original spends from the other, double-including the dependent
// input would reference an output the replacement itself invalidates, so
// that input is dropped.  The guard only consults the merged descendant
// set and only the first input of each side; interdependency beyond that
// is not detected.
func (c *Combiner) buildSkeleton(tx1, tx2 *candidate,
	descendants map[string]struct{}, payees []*wire.TxOut) *wire.MsgTx {

	newTx := tx1.tx.Copy()

	prevOut1 := tx1.tx.TxIn[0].PreviousOutPoint
	prevOut2 := tx2.tx.TxIn[0].PreviousOutPoint
	newTx.TxIn = []*wire.TxIn{
		wire.NewTxIn(&prevOut1, nil, nil),
		wire.NewTxIn(&prevOut2, nil, nil),
	}

	if _, ok := descendants[prevOut2.Hash.String()]; ok {
		c.log.Debugf("Input %v spends a descendant of the originals, "+
			"dropping it", prevOut2)
		newTx.TxIn = newTx.TxIn[:1]
	} else if _, ok := descendants[prevOut1.Hash.String()]; ok {
		c.log.Debugf("Input %v spends a descendant of the originals, "+
			"dropping it", prevOut1)
		newTx.TxIn = newTx.TxIn[1:]
	}

	newTx.TxOut = payees

	return newTx
}

// applySequences returns a copy of tx with every input's sequence number
// rewritten.  With optIn the replacement itself signals replaceability;
// the default opts out, since feeding the replacement back into this
// process later could produce a transaction that no longer conflicts with
// it and pay the same parties twice.
func applySequences(tx *wire.MsgTx, optIn bool) *wire.MsgTx {
	sequence := uint32(wire.MaxTxInSequenceNum - 1)
	if optIn {
		sequence = 0
	}

	newTx := tx.Copy()
	for _, txIn := range newTx.TxIn {
		txIn.Sequence = sequence
	}
	return newTx
}
