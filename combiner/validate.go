// Copyright (c) 2024-2026 The combinetx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package combiner

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// candidate is one of the two transactions to be replaced, along with the
// values derived from it that later stages need.
type candidate struct {
	id   *chainhash.Hash
	tx   *wire.MsgTx
	size int
}

// signalsFullRBF reports whether every input of tx signals opt-in
// replaceability, i.e. carries a sequence number strictly below the
// maximum minus one.
func signalsFullRBF(tx *wire.MsgTx) bool {
	for _, txIn := range tx.TxIn {
		if txIn.Sequence >= wire.MaxTxInSequenceNum-1 {
			return false
		}
	}
	return true
}

// parseTxID parses one transaction id argument.  The id must be exactly
// 64 hex characters; NewHashFromStr zero pads anything shorter, which
// would turn a typo into a lookup for a different transaction.
func parseTxID(label, arg string) (*chainhash.Hash, error) {
	if len(arg) != chainhash.MaxHashStringSize {
		return nil, fmt.Errorf("%w: %s: wrong length",
			ErrInvalidIdentifier, label)
	}

	id, err := chainhash.NewHashFromStr(arg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidIdentifier, label, err)
	}

	return id, nil
}

// loadCandidate fetches and validates the transaction named by id.  The
// label identifies the argument in error messages.  Only read-only
// lookups are performed.
func (c *Combiner) loadCandidate(label string, id *chainhash.Hash) (*candidate, error) {
	exists, err := c.cfg.Node.HasWalletTransaction(id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s %v", ErrNotInWallet, label, id)
	}

	tx, confirmations, err := c.cfg.Node.RawTransaction(id)
	if err != nil {
		return nil, err
	}
	if confirmations > 0 {
		return nil, fmt.Errorf("%w: %s has %d confirmations",
			ErrAlreadyConfirmed, label, confirmations)
	}

	if !signalsFullRBF(tx) {
		return nil, fmt.Errorf("%w: %s %v", ErrNotReplaceable, label, id)
	}

	return &candidate{id: id, tx: tx, size: tx.SerializeSize()}, nil
}
