// Copyright (c) 2024-2026 The combinetx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package combiner

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// MempoolEntry describes the mempool's view of a single unconfirmed
// transaction.  ModifiedFee is the fee the node will actually use when
// prioritizing the transaction, after any manual fee deltas.
type MempoolEntry struct {
	ModifiedFee btcutil.Amount
}

// FundedTx is the outcome of asking the wallet to balance a transaction:
// the updated transaction with any additional inputs and a change output,
// the fee the wallet chose, and the index of the change output it created
// (-1 when none was needed).
type FundedTx struct {
	Tx        *wire.MsgTx
	Fee       btcutil.Amount
	ChangePos int
}

// Node is the wallet node the combiner works against.  Every call is
// synchronous and may block on the underlying RPC transport; the combiner
// performs no retries or timeout handling of its own.
//
// Implementations must be safe to call sequentially from a single
// goroutine.  The production implementation lives in the rpcnode package;
// tests use an in-memory fake.
type Node interface {
	// HasWalletTransaction reports whether the wallet knows the given
	// transaction.
	HasWalletTransaction(txid *chainhash.Hash) (bool, error)

	// RawTransaction returns the full transaction along with its
	// current confirmation count.
	RawTransaction(txid *chainhash.Hash) (*wire.MsgTx, int64, error)

	// IsWalletScript reports whether the given output script pays to an
	// address owned by the wallet.
	IsWalletScript(pkScript []byte) (bool, error)

	// MempoolEntry returns the mempool entry for the given transaction,
	// or an error if it is no longer in the mempool.
	MempoolEntry(txid *chainhash.Hash) (*MempoolEntry, error)

	// MempoolDescendants returns the unconfirmed descendants of the
	// given transaction, keyed by their display-order txid.
	MempoolDescendants(txid *chainhash.Hash) (map[string]MempoolEntry, error)

	// FundTransaction selects additional inputs and adds a change
	// output so the transaction covers its outputs.  A non-nil
	// changeScript requests that the change be sent to that script
	// instead of a freshly derived address.
	FundTransaction(tx *wire.MsgTx, changeScript []byte) (*FundedTx, error)

	// SignTransaction signs the transaction with the wallet's keys and
	// reports whether all inputs were fully signed.
	SignTransaction(tx *wire.MsgTx) (*wire.MsgTx, bool, error)

	// Broadcast submits the transaction to the network and returns its
	// id.
	Broadcast(tx *wire.MsgTx) (*chainhash.Hash, error)

	// RelayFeePerKB returns the node's minimum relay feerate in
	// satoshis per 1000 bytes.
	RelayFeePerKB() (btcutil.Amount, error)
}
