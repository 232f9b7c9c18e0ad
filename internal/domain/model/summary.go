package model

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
)

// LoanSummary is the aggregate balance view derived from the post-replay
// schedule and ledger.
type LoanSummary struct {
	TotalOutstanding     decimal.Decimal
	TotalRepayment       decimal.Decimal
	PrincipalOutstanding decimal.Decimal
	PrincipalPaid        decimal.Decimal
	// TotalOverpaid is nil unless the loan status is OVERPAID.
	TotalOverpaid *decimal.Decimal
}

// Snapshot is the complete derived state produced by one replay pass. It is
// computed on the side and swapped into the aggregate atomically; a failed
// replay leaves the previously committed state untouched.
type Snapshot struct {
	Schedule    Schedule
	Ledger      []Transaction
	Overpayment decimal.Decimal
	ChargedOff  bool
	Reamortized bool
	Summary     LoanSummary
	Status      valueobject.LoanStatus
}

// Recomputer rebuilds the derived state from the baseline schedule and the
// full transaction history. Implemented by the replay orchestrator; the
// aggregate depends only on this interface.
type Recomputer interface {
	Recompute(baseline []Period, ledger []Transaction) (Snapshot, error)
}
