// Copyright (c) 2024-2026 The combinetx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package combiner

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func TestAssessFees(t *testing.T) {
	node, tx1, tx2 := newScenarioNode()
	id1, id2 := tx1.TxHash(), tx2.TxHash()

	node.descendants[id1] = map[string]MempoolEntry{
		"d1": {ModifiedFee: 400},
	}
	node.descendants[id2] = map[string]MempoolEntry{
		"d1": {ModifiedFee: 400},
		"d2": {ModifiedFee: 100},
	}

	c := newTestCombiner(t, &Config{Node: node})
	candidate1, err := c.loadCandidate("txid1", &id1)
	require.NoError(t, err)
	candidate2, err := c.loadCandidate("txid2", &id2)
	require.NoError(t, err)

	budget, err := c.assessFees(candidate1, candidate2)
	require.NoError(t, err)

	require.Equal(t, btcutil.Amount(800), budget.oldFees)

	// The shared descendant counts once.
	require.Equal(t, btcutil.Amount(500), budget.descendantFees)
	require.Len(t, budget.descendants, 2)
	require.Contains(t, budget.descendants, "d1")
	require.Contains(t, budget.descendants, "d2")

	// Stricter of the two original feerates.
	rate1 := 500 / float64(candidate1.size)
	rate2 := 300 / float64(candidate2.size)
	expected := rate1
	if rate2 > expected {
		expected = rate2
	}
	require.Equal(t, expected, budget.minFeeRate)
}

func TestAdjustFeesAbsoluteFloor(t *testing.T) {
	c := newTestCombiner(t, &Config{Node: newFakeNode()})

	tx := spendingTx(0x05, rbfSequence,
		wire.NewTxOut(7000, scriptA),
		wire.NewTxOut(100000, scriptC1),
	)
	budget := &feeBudget{oldFees: 1000, descendantFees: 500}

	newTx, fee, err := c.adjustFees(tx, 1, 200, budget, 2000)
	require.NoError(t, err)

	size := newTx.SerializeSize()
	relayBwFee := btcutil.Amount(float64(size) / 1000 * 2000)

	// Shortfall of 1300 plus the one satoshi tie breaker comes out of
	// the change output, then the relay bandwidth fee on top.
	require.Equal(t, btcutil.Amount(1500)+relayBwFee, fee)
	require.Equal(t, int64(100000-1301)-int64(relayBwFee),
		newTx.TxOut[1].Value)

	// The input transaction is left untouched.
	require.Equal(t, int64(100000), tx.TxOut[1].Value)
}

func TestAdjustFeesFeerateFloor(t *testing.T) {
	c := newTestCombiner(t, &Config{Node: newFakeNode()})

	tx := spendingTx(0x05, rbfSequence,
		wire.NewTxOut(7000, scriptA),
		wire.NewTxOut(100000, scriptC1),
	)
	budget := &feeBudget{minFeeRate: 100}

	newTx, fee, err := c.adjustFees(tx, 1, 200, budget, 0)
	require.NoError(t, err)

	size := newTx.SerializeSize()
	require.Equal(t, btcutil.Amount(100*size), fee)
	require.Equal(t, int64(100000)-(int64(100*size)-200),
		newTx.TxOut[1].Value)
}

func TestAdjustFeesNoBumpNeeded(t *testing.T) {
	c := newTestCombiner(t, &Config{Node: newFakeNode()})

	tx := spendingTx(0x05, rbfSequence,
		wire.NewTxOut(7000, scriptA),
		wire.NewTxOut(100000, scriptC1),
	)
	budget := &feeBudget{oldFees: 100}

	newTx, fee, err := c.adjustFees(tx, 1, 500, budget, 0)
	require.NoError(t, err)

	// Funded fee already clears every floor; only the (zero) relay
	// bandwidth fee applies.
	require.Equal(t, btcutil.Amount(500), fee)
	require.Equal(t, int64(100000), newTx.TxOut[1].Value)
}

func TestAdjustFeesInsufficientChange(t *testing.T) {
	c := newTestCombiner(t, &Config{Node: newFakeNode()})

	tx := spendingTx(0x05, rbfSequence,
		wire.NewTxOut(7000, scriptA),
		wire.NewTxOut(1000, scriptC1),
	)
	budget := &feeBudget{oldFees: 5000}

	_, _, err := c.adjustFees(tx, 1, 200, budget, 1000)
	require.ErrorIs(t, err, ErrInsufficientChange)
}

func TestSignalsFullRBF(t *testing.T) {
	tests := []struct {
		name      string
		sequences []uint32
		want      bool
	}{
		{
			name:      "single signaling input",
			sequences: []uint32{0},
			want:      true,
		},
		{
			name:      "all signaling",
			sequences: []uint32{1, rbfSequence},
			want:      true,
		},
		{
			name:      "max sequence",
			sequences: []uint32{wire.MaxTxInSequenceNum},
			want:      false,
		},
		{
			name:      "max minus one",
			sequences: []uint32{wire.MaxTxInSequenceNum - 1},
			want:      false,
		},
		{
			name:      "one non-signaling input poisons the tx",
			sequences: []uint32{0, wire.MaxTxInSequenceNum},
			want:      false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tx := wire.NewMsgTx(2)
			for i, sequence := range test.sequences {
				prevOut := wire.OutPoint{
					Hash:  hashFromByte(byte(i + 1)),
					Index: 0,
				}
				txIn := wire.NewTxIn(&prevOut, nil, nil)
				txIn.Sequence = sequence
				tx.AddTxIn(txIn)
			}
			require.Equal(t, test.want, signalsFullRBF(tx))
		})
	}
}
