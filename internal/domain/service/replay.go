package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-servicing/internal/domain/model"
	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
)

// Replayer rebuilds the full derived loan state from the baseline schedule and
// the complete ledger. Every write to the loan runs through it: the schedule,
// the per-transaction breakdowns, the overpayment pool and the status are all
// a pure function of (baseline, ledger, rule table).
type Replayer struct {
	engine   *AllocationEngine
	resolver *BalanceResolver
}

// NewReplayer wires a replayer for one product rule table.
func NewReplayer(rules valueobject.RuleTable) *Replayer {
	return &Replayer{
		engine:   NewAllocationEngine(rules),
		resolver: NewBalanceResolver(),
	}
}

// Recompute implements model.Recomputer. It folds the ledger into a fresh
// working schedule in chronological order, skipping reversed entries, and
// returns the complete snapshot. The inputs are not mutated.
func (r *Replayer) Recompute(baseline []model.Period, ledger []model.Transaction) (model.Snapshot, error) {
	sched := model.NewSchedule(baseline)

	// Principal dues are not owed until capital is out the door; the stated
	// dues only record how disbursements spread across periods.
	weights := make([]decimal.Decimal, len(sched.Periods))
	for i := range sched.Periods {
		weights[i] = sched.Periods[i].Due.Principal
		sched.Periods[i].Due.Principal = decimal.Zero
	}

	// Work on a copy in ledger order; replay walks it chronologically via an
	// index permutation so derived fields land back on the right entries.
	result := make([]model.Transaction, len(ledger))
	copy(result, ledger)
	order := make([]int, len(result))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ta, tb := result[order[a]], result[order[b]]
		if ta.Date.Equal(tb.Date) {
			return ta.Sequence < tb.Sequence
		}
		return ta.Date.Before(tb.Date)
	})

	overpayment := decimal.Zero
	chargedOff := false
	reamortized := false
	var firstDisbursement *time.Time

	for _, idx := range order {
		tx := &result[idx]
		tx.Breakdown = model.Breakdown{}
		tx.IncomeRedirected = false

		if tx.Reversed {
			tx.OutstandingBalance = sched.TotalOutstanding()
			continue
		}

		if tx.Type != valueobject.TypeDisbursement {
			if firstDisbursement == nil || tx.Date.Before(*firstDisbursement) {
				return model.Snapshot{}, fmt.Errorf(
					"%w: %s dated %s precedes the first disbursement",
					model.ErrInvalidTransactionDate, tx.Type, tx.Date.Format("2006-01-02"))
			}
		}

		switch tx.Type {
		case valueobject.TypeDisbursement:
			spreadDisbursement(&sched, weights, tx.Amount)
			tx.Breakdown.Principal = tx.Amount
			if firstDisbursement == nil || tx.Date.Before(*firstDisbursement) {
				d := tx.Date
				firstDisbursement = &d
			}

		case valueobject.TypeChargeOff:
			chargedOff = true

		case valueobject.TypeAccrual:
			// Marker only; dues were already adjusted on the baseline.

		case valueobject.TypeCreditBalanceRefund:
			if tx.Amount.GreaterThan(overpayment) {
				return model.Snapshot{}, fmt.Errorf(
					"%w: credit balance refund %s exceeds overpayment %s",
					model.ErrInvalidAmount, tx.Amount, overpayment)
			}
			overpayment = overpayment.Sub(tx.Amount)
			tx.Breakdown.Overpayment = tx.Amount

		case valueobject.TypeChargeback:
			bd, pool, err := r.engine.Reinstate(&sched, *tx, overpayment)
			if err != nil {
				return model.Snapshot{}, err
			}
			tx.Breakdown = bd
			overpayment = pool

		default:
			bd, pool, ream, err := r.engine.Allocate(&sched, *tx, overpayment)
			if err != nil {
				return model.Snapshot{}, err
			}
			tx.Breakdown = bd
			overpayment = pool
			if ream {
				reamortized = true
			}
		}

		if chargedOff && tx.Type != valueobject.TypeChargeOff {
			tx.IncomeRedirected = true
		}
		tx.OutstandingBalance = sched.TotalOutstanding()
	}

	summary, status := r.resolver.Resolve(&sched, result, overpayment, chargedOff)

	return model.Snapshot{
		Schedule:    sched,
		Ledger:      result,
		Overpayment: overpayment,
		ChargedOff:  chargedOff,
		Reamortized: reamortized,
		Summary:     summary,
		Status:      status,
	}, nil
}

// spreadDisbursement turns disbursed capital into owed principal. Periods fill
// earliest first up to their stated baseline weight; capital beyond the total
// weights lands on the final period. When the product carries no principal
// plan at all the amount splits evenly, remainder to the last period.
func spreadDisbursement(sched *model.Schedule, weights []decimal.Decimal, amount decimal.Decimal) {
	if len(sched.Periods) == 0 {
		return
	}

	totalWeight := decimal.Zero
	for _, w := range weights {
		totalWeight = totalWeight.Add(w)
	}

	remaining := amount
	if totalWeight.IsZero() {
		n := int64(len(sched.Periods))
		share := amount.Div(decimal.NewFromInt(n)).RoundDown(2)
		for i := range sched.Periods {
			add := share
			if i == len(sched.Periods)-1 {
				add = remaining
			}
			addPrincipalDue(&sched.Periods[i], add)
			remaining = remaining.Sub(add)
		}
		return
	}

	for i := range sched.Periods {
		if !remaining.IsPositive() {
			return
		}
		capacity := weights[i].Sub(sched.Periods[i].Due.Principal)
		if capacity.IsPositive() {
			add := decimal.Min(remaining, capacity)
			addPrincipalDue(&sched.Periods[i], add)
			remaining = remaining.Sub(add)
		}
	}
	if remaining.IsPositive() {
		addPrincipalDue(&sched.Periods[len(sched.Periods)-1], remaining)
	}
}

// addPrincipalDue raises a period's principal due and reopens the period if
// the new obligation makes it unmet again.
func addPrincipalDue(p *model.Period, amount decimal.Decimal) {
	p.Due.Principal = p.Due.Principal.Add(amount)
	if !p.IsMet() {
		p.ObligationsMetOn = nil
	}
}
