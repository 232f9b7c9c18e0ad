package model

import "errors"

// Validation errors are surfaced synchronously to the caller before any replay
// is attempted; no partial mutation happens.
var (
	// ErrInvalidTransactionDate marks a transaction predating the first
	// disbursement, or arriving against an already-closed loan.
	ErrInvalidTransactionDate = errors.New("invalid transaction date")

	// ErrInvalidAmount marks a zero/negative amount, or a reversal/adjustment
	// referencing more than the original transaction carried.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrTransactionNotFound marks a reversal/adjustment referencing an
	// unknown ledger entry.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// ErrReplayInconsistency is an internal invariant violation: the sum of a
// transaction's breakdown portions diverged from its amount after rounding
// reconciliation. Always fatal; the previously committed state stays untouched.
var ErrReplayInconsistency = errors.New("replay inconsistency")
