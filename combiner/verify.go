// Copyright (c) 2024-2026 The combinetx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package combiner

import (
	"fmt"

	"github.com/btcsuite/btcd/wire"
)

// verifyConflicts checks that the final transaction still spends the
// first input of each original, which is what guarantees it evicts both
// from the mempool.  A failure here is a bug in the builder, not a user
// error.
//
// Note this check is unsound when the originals spend from each other:
// the builder legitimately drops one of the two inputs in that case and
// the replacement then conflicts with only one original directly.
func verifyConflicts(newTx *wire.MsgTx, tx1, tx2 *candidate) error {
	if len(newTx.TxIn) < 2 {
		return fmt.Errorf("%w: replacement has %d inputs",
			ErrConflictInvariant, len(newTx.TxIn))
	}

	if newTx.TxIn[0].PreviousOutPoint != tx1.tx.TxIn[0].PreviousOutPoint {
		return fmt.Errorf("%w: first input %v does not match %v",
			ErrConflictInvariant, newTx.TxIn[0].PreviousOutPoint,
			tx1.tx.TxIn[0].PreviousOutPoint)
	}
	if newTx.TxIn[1].PreviousOutPoint != tx2.tx.TxIn[0].PreviousOutPoint {
		return fmt.Errorf("%w: second input %v does not match %v",
			ErrConflictInvariant, newTx.TxIn[1].PreviousOutPoint,
			tx2.tx.TxIn[0].PreviousOutPoint)
	}

	return nil
}
