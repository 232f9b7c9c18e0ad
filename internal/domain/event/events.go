package event

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-servicing/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// ---------------------------------------------------------------------------
// Loan lifecycle events
// ---------------------------------------------------------------------------

// LoanCreated is raised when a loan and its baseline schedule enter servicing.
type LoanCreated struct {
	events.BaseEvent
	Currency    string `json:"currency"`
	PeriodCount int    `json:"period_count"`
}

func NewLoanCreated(loanID, tenantID, currency string, periodCount int) LoanCreated {
	return LoanCreated{
		BaseEvent:   events.NewBaseEvent("servicing.loan.created", loanID, "Loan", tenantID),
		Currency:    currency,
		PeriodCount: periodCount,
	}
}

// LoanOverpaid is raised when the loan transitions into the overpaid state.
type LoanOverpaid struct {
	events.BaseEvent
	Overpayment decimal.Decimal `json:"overpayment"`
	Currency    string          `json:"currency"`
}

func NewLoanOverpaid(loanID, tenantID string, overpayment decimal.Decimal, currency string) LoanOverpaid {
	return LoanOverpaid{
		BaseEvent:   events.NewBaseEvent("servicing.loan.overpaid", loanID, "Loan", tenantID),
		Overpayment: overpayment,
		Currency:    currency,
	}
}

// LoanClosed is raised when every period's obligations are met with no
// overpayment remaining.
type LoanClosed struct {
	events.BaseEvent
}

func NewLoanClosed(loanID, tenantID string) LoanClosed {
	return LoanClosed{
		BaseEvent: events.NewBaseEvent("servicing.loan.closed", loanID, "Loan", tenantID),
	}
}

// LoanChargedOff is raised when the charge-off marker is recorded. Downstream
// journal posting redirects interest/fee income from this point on.
type LoanChargedOff struct {
	events.BaseEvent
}

func NewLoanChargedOff(loanID, tenantID string) LoanChargedOff {
	return LoanChargedOff{
		BaseEvent: events.NewBaseEvent("servicing.loan.charged_off", loanID, "Loan", tenantID),
	}
}

// ScheduleReamortized is raised when a replay regenerated period due amounts
// from a reduced outstanding principal.
type ScheduleReamortized struct {
	events.BaseEvent
}

func NewScheduleReamortized(loanID, tenantID string) ScheduleReamortized {
	return ScheduleReamortized{
		BaseEvent: events.NewBaseEvent("servicing.schedule.reamortized", loanID, "Loan", tenantID),
	}
}

// ---------------------------------------------------------------------------
// Ledger events
// ---------------------------------------------------------------------------

// TransactionRecorded is raised for every new ledger entry. The journal-entry
// poster reads the replayed breakdown from the persisted transaction, not from
// this event.
type TransactionRecorded struct {
	events.BaseEvent
	TransactionID   string          `json:"transaction_id"`
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
}

func NewTransactionRecorded(loanID, tenantID, transactionID, transactionType string, amount decimal.Decimal, currency string) TransactionRecorded {
	return TransactionRecorded{
		BaseEvent:       events.NewBaseEvent("servicing.transaction.recorded", loanID, "Loan", tenantID),
		TransactionID:   transactionID,
		TransactionType: transactionType,
		Amount:          amount,
		Currency:        currency,
	}
}

// TransactionReversed is raised when a ledger entry is flagged reversed.
type TransactionReversed struct {
	events.BaseEvent
	TransactionID   string          `json:"transaction_id"`
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
}

func NewTransactionReversed(loanID, tenantID, transactionID, transactionType string, amount decimal.Decimal, currency string) TransactionReversed {
	return TransactionReversed{
		BaseEvent:       events.NewBaseEvent("servicing.transaction.reversed", loanID, "Loan", tenantID),
		TransactionID:   transactionID,
		TransactionType: transactionType,
		Amount:          amount,
		Currency:        currency,
	}
}

// ---------------------------------------------------------------------------
// Charge events
// ---------------------------------------------------------------------------

// ChargeApplied is raised when the charge/tax subsystem adds a fee or penalty
// due amount to a period.
type ChargeApplied struct {
	events.BaseEvent
	PeriodSequence int             `json:"period_sequence"`
	Category       string          `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
}

func NewChargeApplied(loanID, tenantID string, periodSequence int, category string, amount decimal.Decimal, currency string) ChargeApplied {
	return ChargeApplied{
		BaseEvent:      events.NewBaseEvent("servicing.charge.applied", loanID, "Loan", tenantID),
		PeriodSequence: periodSequence,
		Category:       category,
		Amount:         amount,
		Currency:       currency,
	}
}

// ChargeWaived is raised when part or all of a charge is waived.
type ChargeWaived struct {
	events.BaseEvent
	PeriodSequence int             `json:"period_sequence"`
	Category       string          `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
}

func NewChargeWaived(loanID, tenantID string, periodSequence int, category string, amount decimal.Decimal, currency string) ChargeWaived {
	return ChargeWaived{
		BaseEvent:      events.NewBaseEvent("servicing.charge.waived", loanID, "Loan", tenantID),
		PeriodSequence: periodSequence,
		Category:       category,
		Amount:         amount,
		Currency:       currency,
	}
}
