// Copyright (c) 2024-2026 The combinetx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package combiner

import "errors"

// All failures below are terminal.  The combiner never retries: silently
// proceeding past any of them risks paying a recipient twice or
// broadcasting an underfunded replacement.
var (
	// ErrInvalidIdentifier is returned when a transaction id argument is
	// not valid hex or does not decode to exactly 32 bytes.
	ErrInvalidIdentifier = errors.New("invalid transaction id")

	// ErrNotInWallet is returned when the wallet has no record of one of
	// the transactions to be replaced.
	ErrNotInWallet = errors.New("transaction not found in wallet")

	// ErrAlreadyConfirmed is returned when one of the transactions to be
	// replaced has already been mined.  Confirmed transactions cannot be
	// evicted from the mempool.
	ErrAlreadyConfirmed = errors.New("transaction already mined")

	// ErrNotReplaceable is returned when an input of either transaction
	// does not signal replaceability via its sequence number.
	ErrNotReplaceable = errors.New("transaction does not signal replaceability")

	// ErrMempoolEntryUnavailable is returned when a transaction that
	// passed validation has left the mempool before its fee information
	// could be fetched.  This is a race with the node and is fatal.
	ErrMempoolEntryUnavailable = errors.New("transaction no longer in mempool")

	// ErrFundingFailed is returned when the wallet cannot balance the
	// replacement transaction, typically due to insufficient confirmed
	// funds.
	ErrFundingFailed = errors.New("unable to fund replacement transaction")

	// ErrNoChangeOutput is returned when funding the replacement did not
	// create a change output.  Without a change output there is nothing
	// to absorb the fee bump, and that case is not handled.
	ErrNoChangeOutput = errors.New("funding created no change output")

	// ErrSigningIncomplete is returned when the wallet reports the
	// replacement transaction as not fully signed.
	ErrSigningIncomplete = errors.New("replacement transaction not fully signed")

	// ErrInsufficientChange is returned when the change output's value
	// would drop to zero or below after the required fee deductions.  The
	// replacement cannot outbid the originals without user intervention.
	ErrInsufficientChange = errors.New("change too small to cover required fee")

	// ErrConflictInvariant is returned when the final transaction does
	// not spend the first input of each original.  This indicates a bug
	// in the builder, not a problem with the user's input.
	ErrConflictInvariant = errors.New("replacement does not conflict with both originals")
)
