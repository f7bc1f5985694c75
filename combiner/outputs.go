// Copyright (c) 2024-2026 The combinetx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package combiner

import (
	"bytes"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// scriptTotals accumulates output values per destination script while
// remembering the order in which scripts were first seen.  Output order
// is observable in the final transaction, so a plain map will not do.
type scriptTotals struct {
	order []string
	total map[string]btcutil.Amount
}

func newScriptTotals() *scriptTotals {
	return &scriptTotals{total: make(map[string]btcutil.Amount)}
}

// add folds value into the running total for pkScript and reports whether
// the script had been seen before.
func (s *scriptTotals) add(pkScript []byte, value btcutil.Amount) bool {
	key := string(pkScript)
	_, seen := s.total[key]
	if !seen {
		s.order = append(s.order, key)
	}
	s.total[key] += value
	return seen
}

// consolidated is the merged view of both transactions' outputs: one total
// per destination script, plus the subset of scripts the wallet owns.
type consolidated struct {
	totals *scriptTotals
	change [][]byte
}

// consolidateOutputs walks the outputs of tx1 then tx2, summing values per
// destination script and recording wallet-owned scripts in first-seen
// order.  Paying the same address from both transactions therefore
// collapses to a single output carrying the combined amount.
func (c *Combiner) consolidateOutputs(tx1, tx2 *wire.MsgTx) (*consolidated, error) {
	con := &consolidated{totals: newScriptTotals()}

	outs := make([]*wire.TxOut, 0, len(tx1.TxOut)+len(tx2.TxOut))
	outs = append(outs, tx1.TxOut...)
	outs = append(outs, tx2.TxOut...)

	for _, out := range outs {
		mine, err := c.cfg.Node.IsWalletScript(out.PkScript)
		if err != nil {
			return nil, err
		}
		if mine && !con.isChange(out.PkScript) {
			c.log.Debugf("Found wallet change script %x", out.PkScript)
			con.change = append(con.change, out.PkScript)
		}

		if con.totals.add(out.PkScript, btcutil.Amount(out.Value)) {
			c.log.Debugf("Duplicate destination script %x, "+
				"consolidating", out.PkScript)
		}
	}

	return con, nil
}

func (con *consolidated) isChange(pkScript []byte) bool {
	for _, script := range con.change {
		if bytes.Equal(script, pkScript) {
			return true
		}
	}
	return false
}

// payeeOutputs returns one output per consolidated destination the wallet
// does not own, in first-seen order.  Wallet-owned destinations are left
// out; the change output added during funding takes their place.
func (con *consolidated) payeeOutputs() []*wire.TxOut {
	var outs []*wire.TxOut
	for _, key := range con.totals.order {
		script := []byte(key)
		if con.isChange(script) {
			continue
		}
		outs = append(outs, wire.NewTxOut(int64(con.totals.total[key]), script))
	}
	return outs
}

// changeAnchor returns the first wallet-owned script seen across both
// transactions, or nil when neither pays the wallet.  When more than one
// self-owned output exists only this first one is reused as the change
// destination, which is probably not optimal, but matches the documented
// behavior.
func (con *consolidated) changeAnchor() []byte {
	if len(con.change) == 0 {
		return nil
	}
	return con.change[0]
}
