package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-servicing/internal/domain/model"
	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// PeriodTermsRequest carries one baseline period of the product-generated
// repayment plan.
type PeriodTermsRequest struct {
	DueDate     time.Time       `json:"dueDate"`
	Principal   decimal.Decimal `json:"principal"`
	Interest    decimal.Decimal `json:"interest"`
	Fee         decimal.Decimal `json:"fee"`
	Penalty     decimal.Decimal `json:"penalty"`
	DownPayment bool            `json:"downPayment"`
}

// CreateLoanRequest carries the data needed to register a loan for servicing.
type CreateLoanRequest struct {
	TenantID string               `json:"tenantId"`
	Currency string               `json:"currency"`
	Periods  []PeriodTermsRequest `json:"periods"`
}

// RecordTransactionRequest carries one monetary event to append to a loan's
// ledger.
type RecordTransactionRequest struct {
	TenantID   string          `json:"tenantId"`
	LoanID     string          `json:"loanId"`
	Type       string          `json:"type"`
	Date       time.Time       `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	ExternalID string          `json:"externalId,omitempty"`
}

// ReverseTransactionRequest identifies a ledger entry to reverse.
type ReverseTransactionRequest struct {
	TenantID      string `json:"tenantId"`
	LoanID        string `json:"loanId"`
	TransactionID string `json:"transactionId"`
}

// AdjustTransactionRequest reverses a ledger entry and recreates it at a
// reduced amount, optionally on a different date.
type AdjustTransactionRequest struct {
	TenantID      string          `json:"tenantId"`
	LoanID        string          `json:"loanId"`
	TransactionID string          `json:"transactionId"`
	NewAmount     decimal.Decimal `json:"newAmount"`
	NewDate       *time.Time      `json:"newDate,omitempty"`
}

// ApplyChargeRequest adds or waives a fee/penalty due on one period.
type ApplyChargeRequest struct {
	TenantID       string          `json:"tenantId"`
	LoanID         string          `json:"loanId"`
	PeriodSequence int             `json:"periodSequence"`
	Category       string          `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	Waive          bool            `json:"waive"`
}

// GetLoanRequest identifies a loan to retrieve.
type GetLoanRequest struct {
	TenantID string `json:"tenantId"`
	LoanID   string `json:"loanId"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// PeriodResponse is the external representation of one schedule period after
// replay.
type PeriodResponse struct {
	Sequence                   int             `json:"sequence"`
	DueDate                    time.Time       `json:"dueDate"`
	DownPayment                bool            `json:"downPayment,omitempty"`
	PrincipalDue               decimal.Decimal `json:"principalDue"`
	InterestDue                decimal.Decimal `json:"interestDue"`
	FeeDue                     decimal.Decimal `json:"feeDue"`
	PenaltyDue                 decimal.Decimal `json:"penaltyDue"`
	PrincipalPaid              decimal.Decimal `json:"principalPaid"`
	InterestPaid               decimal.Decimal `json:"interestPaid"`
	FeePaid                    decimal.Decimal `json:"feePaid"`
	PenaltyPaid                decimal.Decimal `json:"penaltyPaid"`
	PrincipalOutstanding       decimal.Decimal `json:"principalOutstanding"`
	InterestOutstanding        decimal.Decimal `json:"interestOutstanding"`
	FeeOutstanding             decimal.Decimal `json:"feeOutstanding"`
	PenaltyOutstanding         decimal.Decimal `json:"penaltyOutstanding"`
	TotalPaidInAdvanceForPeriod decimal.Decimal `json:"totalPaidInAdvanceForPeriod"`
	TotalPaidLateForPeriod     decimal.Decimal `json:"totalPaidLateForPeriod"`
	ObligationsMetOnDate       *time.Time      `json:"obligationsMetOnDate,omitempty"`
}

// TransactionResponse is the external representation of one ledger entry with
// its replay-derived breakdown.
type TransactionResponse struct {
	ID                 string          `json:"id"`
	Sequence           int             `json:"sequence"`
	Date               time.Time       `json:"date"`
	Type               string          `json:"type"`
	Amount             decimal.Decimal `json:"amount"`
	ExternalID         string          `json:"externalId,omitempty"`
	Reversed           bool            `json:"reversed"`
	PrincipalPortion   decimal.Decimal `json:"principalPortion"`
	InterestPortion    decimal.Decimal `json:"interestPortion"`
	FeePortion         decimal.Decimal `json:"feePortion"`
	PenaltyPortion     decimal.Decimal `json:"penaltyPortion"`
	OverpaymentPortion decimal.Decimal `json:"overpaymentPortion"`
	OutstandingLoanBalance decimal.Decimal `json:"outstandingLoanBalance"`
	IncomeRedirected   bool            `json:"incomeRedirected,omitempty"`
}

// LoanResponse is the external representation of a serviced loan: the replayed
// schedule, the ledger and the derived balances.
type LoanResponse struct {
	ID                   string                `json:"id"`
	TenantID             string                `json:"tenantId"`
	Currency             string                `json:"currency"`
	Status               string                `json:"status"`
	TotalOutstanding     decimal.Decimal       `json:"totalOutstanding"`
	TotalRepayment       decimal.Decimal       `json:"totalRepayment"`
	PrincipalOutstanding decimal.Decimal       `json:"principalOutstanding"`
	PrincipalPaid        decimal.Decimal       `json:"principalPaid"`
	TotalOverpaid        *decimal.Decimal      `json:"totalOverpaid,omitempty"`
	Overpayment          decimal.Decimal       `json:"overpayment"`
	ChargedOff           bool                  `json:"chargedOff,omitempty"`
	Periods              []PeriodResponse      `json:"periods"`
	Transactions         []TransactionResponse `json:"transactions,omitempty"`
	CreatedAt            time.Time             `json:"createdAt"`
	UpdatedAt            time.Time             `json:"updatedAt"`
}

// RecordTransactionResponse is the result of appending (or adjusting) a ledger
// entry: the recorded entry with its allocation breakdown plus the loan-level
// figures the caller acts on.
type RecordTransactionResponse struct {
	LoanID           string              `json:"loanId"`
	Transaction      TransactionResponse `json:"transaction"`
	LoanStatus       string              `json:"loanStatus"`
	TotalOutstanding decimal.Decimal     `json:"totalOutstanding"`
	Overpayment      decimal.Decimal     `json:"overpayment"`
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

// FromLoan maps the aggregate to its external representation.
func FromLoan(loan model.Loan) LoanResponse {
	summary := loan.Summary()
	resp := LoanResponse{
		ID:                   loan.ID(),
		TenantID:             loan.TenantID(),
		Currency:             loan.Currency(),
		Status:               loan.Status().String(),
		TotalOutstanding:     summary.TotalOutstanding,
		TotalRepayment:       summary.TotalRepayment,
		PrincipalOutstanding: summary.PrincipalOutstanding,
		PrincipalPaid:        summary.PrincipalPaid,
		TotalOverpaid:        summary.TotalOverpaid,
		Overpayment:          loan.Overpayment(),
		ChargedOff:           loan.ChargedOff(),
		CreatedAt:            loan.CreatedAt(),
		UpdatedAt:            loan.UpdatedAt(),
	}
	for _, p := range loan.Schedule().Periods {
		resp.Periods = append(resp.Periods, FromPeriod(p))
	}
	for _, tx := range loan.Ledger() {
		resp.Transactions = append(resp.Transactions, FromTransaction(tx))
	}
	return resp
}

// FromPeriod maps one replayed period.
func FromPeriod(p model.Period) PeriodResponse {
	return PeriodResponse{
		Sequence:                    p.Sequence,
		DueDate:                     p.DueDate,
		DownPayment:                 p.DownPayment,
		PrincipalDue:                p.Due.Principal,
		InterestDue:                 p.Due.Interest,
		FeeDue:                      p.Due.Fee,
		PenaltyDue:                  p.Due.Penalty,
		PrincipalPaid:               p.Paid.Principal,
		InterestPaid:                p.Paid.Interest,
		FeePaid:                     p.Paid.Fee,
		PenaltyPaid:                 p.Paid.Penalty,
		PrincipalOutstanding:        p.Outstanding(valueobject.CategoryPrincipal),
		InterestOutstanding:         p.Outstanding(valueobject.CategoryInterest),
		FeeOutstanding:              p.Outstanding(valueobject.CategoryFee),
		PenaltyOutstanding:          p.Outstanding(valueobject.CategoryPenalty),
		TotalPaidInAdvanceForPeriod: p.TotalPaidInAdvance,
		TotalPaidLateForPeriod:      p.TotalPaidLate,
		ObligationsMetOnDate:        p.ObligationsMetOn,
	}
}

// FromTransaction maps one ledger entry.
func FromTransaction(tx model.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                     tx.ID,
		Sequence:               tx.Sequence,
		Date:                   tx.Date,
		Type:                   tx.Type.String(),
		Amount:                 tx.Amount,
		ExternalID:             tx.ExternalID,
		Reversed:               tx.Reversed,
		PrincipalPortion:       tx.Breakdown.Principal,
		InterestPortion:        tx.Breakdown.Interest,
		FeePortion:             tx.Breakdown.Fee,
		PenaltyPortion:         tx.Breakdown.Penalty,
		OverpaymentPortion:     tx.Breakdown.Overpayment,
		OutstandingLoanBalance: tx.OutstandingBalance,
		IncomeRedirected:       tx.IncomeRedirected,
	}
}
