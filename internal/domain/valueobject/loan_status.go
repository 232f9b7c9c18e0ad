package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// LoanStatus – immutable value object
// ---------------------------------------------------------------------------

// LoanStatus represents the lifecycle stage of a serviced loan. It is derived
// by the balance resolver after every replay, never set directly.
type LoanStatus struct {
	value string
}

const (
	loanStatusActive     = "ACTIVE"
	loanStatusOverpaid   = "OVERPAID"
	loanStatusClosed     = "CLOSED_OBLIGATIONS_MET"
	loanStatusChargedOff = "CHARGED_OFF"
)

var (
	LoanStatusActive = LoanStatus{value: loanStatusActive}
	// LoanStatusOverpaid means every period is fully met and the overpayment
	// pool is positive.
	LoanStatusOverpaid = LoanStatus{value: loanStatusOverpaid}
	// LoanStatusClosed means every period is fully met and nothing is overpaid.
	LoanStatusClosed = LoanStatus{value: loanStatusClosed}
	// LoanStatusChargedOff marks loans written off the income ledger; the
	// schedule keeps allocating, only journal posting is redirected.
	LoanStatusChargedOff = LoanStatus{value: loanStatusChargedOff}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusActive:     LoanStatusActive,
	loanStatusOverpaid:   LoanStatusOverpaid,
	loanStatusClosed:     LoanStatusClosed,
	loanStatusChargedOff: LoanStatusChargedOff,
}

// NewLoanStatus creates a LoanStatus from a raw string.
func NewLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, fmt.Errorf("invalid loan status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s LoanStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }

// IsClosed reports whether no further obligations remain.
func (s LoanStatus) IsClosed() bool { return s.value == loanStatusClosed }

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
