package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-servicing/internal/domain/model"
	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
)

// BalanceResolver derives the loan-level summary and lifecycle status from a
// post-replay schedule. It never mutates state; status is a pure function of
// the schedule, the overpayment pool and the charge-off flag.
type BalanceResolver struct{}

func NewBalanceResolver() *BalanceResolver {
	return &BalanceResolver{}
}

// Resolve computes the aggregate balances and the status. Status resolution:
// every period met with a positive overpayment pool is OVERPAID; every period
// met with an empty pool is CLOSED_OBLIGATIONS_MET; otherwise the charge-off
// marker wins over ACTIVE.
func (r *BalanceResolver) Resolve(
	sched *model.Schedule,
	ledger []model.Transaction,
	overpayment decimal.Decimal,
	chargedOff bool,
) (model.LoanSummary, valueobject.LoanStatus) {
	summary := model.LoanSummary{
		TotalOutstanding:     sched.TotalOutstanding(),
		TotalRepayment:       totalRepayment(sched, overpayment),
		PrincipalOutstanding: sched.OutstandingByCategory(valueobject.CategoryPrincipal),
		PrincipalPaid:        sched.PaidByCategory(valueobject.CategoryPrincipal),
	}

	status := valueobject.LoanStatusActive
	switch {
	case sched.FullyMet() && overpayment.IsPositive():
		status = valueobject.LoanStatusOverpaid
		over := overpayment
		summary.TotalOverpaid = &over
	case sched.FullyMet() && hasFunding(ledger):
		status = valueobject.LoanStatusClosed
	case chargedOff:
		status = valueobject.LoanStatusChargedOff
	}
	return summary, status
}

// totalRepayment is everything the customer has settled and we retained: the
// paid amounts across every period plus the current overpayment pool.
func totalRepayment(sched *model.Schedule, overpayment decimal.Decimal) decimal.Decimal {
	total := overpayment
	for _, c := range valueobject.Categories {
		total = total.Add(sched.PaidByCategory(c))
	}
	return total
}

// hasFunding reports whether capital ever went out, which is what separates a
// genuinely settled loan from a blank one whose schedule is trivially met.
func hasFunding(ledger []model.Transaction) bool {
	for _, tx := range ledger {
		if !tx.Reversed && tx.Type == valueobject.TypeDisbursement {
			return true
		}
	}
	return false
}
