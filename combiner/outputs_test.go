// Copyright (c) 2024-2026 The combinetx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package combiner

import (
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func TestScriptTotalsOrderAndMerge(t *testing.T) {
	totals := newScriptTotals()

	require.False(t, totals.add(scriptA, 5000))
	require.False(t, totals.add(scriptC1, 3000))
	require.True(t, totals.add(scriptA, 2000))
	require.False(t, totals.add(scriptB, 1000))

	require.Equal(t, []string{
		string(scriptA), string(scriptC1), string(scriptB),
	}, totals.order)
	require.EqualValues(t, 7000, totals.total[string(scriptA)])
	require.EqualValues(t, 3000, totals.total[string(scriptC1)])
	require.EqualValues(t, 1000, totals.total[string(scriptB)])
}

func TestConsolidateOutputs(t *testing.T) {
	node, tx1, tx2 := newScenarioNode()
	c := newTestCombiner(t, &Config{Node: node})

	con, err := c.consolidateOutputs(tx1, tx2)
	require.NoError(t, err)

	// Both wallet-owned scripts are detected, in first-seen order, and
	// the first one anchors the change.
	require.Equal(t, [][]byte{scriptC1, scriptC2}, con.change)
	require.Equal(t, scriptC1, con.changeAnchor())

	// Only external destinations remain as payees, duplicates summed.
	payees := con.payeeOutputs()
	require.Len(t, payees, 2)
	require.Equal(t, scriptA, payees[0].PkScript)
	require.Equal(t, int64(7000), payees[0].Value)
	require.Equal(t, scriptB, payees[1].PkScript)
	require.Equal(t, int64(1000), payees[1].Value)
}

// TestConsolidateOutputsRepeatedChange checks that the same wallet-owned
// script appearing in both transactions is only recorded once.
func TestConsolidateOutputsRepeatedChange(t *testing.T) {
	node := newFakeNode()
	node.owned[string(scriptC1)] = true

	tx1 := spendingTx(0x01, rbfSequence,
		wire.NewTxOut(5000, scriptA),
		wire.NewTxOut(3000, scriptC1),
	)
	tx2 := spendingTx(0x02, rbfSequence,
		wire.NewTxOut(4000, scriptC1),
	)

	c := newTestCombiner(t, &Config{Node: node})
	con, err := c.consolidateOutputs(tx1, tx2)
	require.NoError(t, err)

	require.Equal(t, [][]byte{scriptC1}, con.change)
	require.EqualValues(t, 7000, con.totals.total[string(scriptC1)])

	payees := con.payeeOutputs()
	require.Len(t, payees, 1)
	require.Equal(t, scriptA, payees[0].PkScript)
}

func TestChangeAnchorNoWalletOutputs(t *testing.T) {
	node := newFakeNode()
	tx1 := spendingTx(0x01, rbfSequence, wire.NewTxOut(5000, scriptA))
	tx2 := spendingTx(0x02, rbfSequence, wire.NewTxOut(2000, scriptB))

	c := newTestCombiner(t, &Config{Node: node})
	con, err := c.consolidateOutputs(tx1, tx2)
	require.NoError(t, err)

	require.Nil(t, con.changeAnchor())
	require.Len(t, con.payeeOutputs(), 2)
}
