package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
)

// Schedule is the ordered sequence of repayment periods for one loan.
// It is only ever mutated inside a replay pass; every externally visible
// schedule is a snapshot swapped in wholesale.
type Schedule struct {
	Periods []Period
}

// NewSchedule deep-copies the baseline periods into a fresh working schedule.
func NewSchedule(baseline []Period) Schedule {
	periods := make([]Period, len(baseline))
	for i, p := range baseline {
		periods[i] = p.clone()
	}
	return Schedule{Periods: periods}
}

// Clone returns a deep copy of the schedule.
func (s Schedule) Clone() Schedule {
	return NewSchedule(s.Periods)
}

// TotalOutstanding sums outstanding across all periods and categories.
func (s *Schedule) TotalOutstanding() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Periods {
		total = total.Add(s.Periods[i].TotalOutstanding())
	}
	return total
}

// OutstandingByCategory sums one category's outstanding across all periods.
func (s *Schedule) OutstandingByCategory(c valueobject.Category) decimal.Decimal {
	total := decimal.Zero
	for i := range s.Periods {
		total = total.Add(s.Periods[i].Outstanding(c))
	}
	return total
}

// PaidByCategory sums one category's paid amount across all periods.
func (s *Schedule) PaidByCategory(c valueobject.Category) decimal.Decimal {
	total := decimal.Zero
	for i := range s.Periods {
		total = total.Add(s.Periods[i].Paid.Get(c))
	}
	return total
}

// FullyMet reports whether every period's outstanding is zero in all
// categories.
func (s *Schedule) FullyMet() bool {
	for i := range s.Periods {
		if !s.Periods[i].IsMet() {
			return false
		}
	}
	return true
}

// currentIndex returns the index of the earliest period still carrying
// outstanding, or -1 when fully met.
func (s *Schedule) currentIndex() int {
	for i := range s.Periods {
		if !s.Periods[i].IsMet() {
			return i
		}
	}
	return -1
}

// Reamortize spends up to amount by reducing outstanding principal directly
// and regenerating the not-yet-met periods' due amounts from the reduced
// principal: principal due is redistributed evenly (rounding remainder to the
// last open period) and interest due is scaled by the same reduction ratio.
// Paid amounts are sunk; due is never regenerated below what was already paid.
// Returns the principal actually consumed.
func (s *Schedule) Reamortize(amount decimal.Decimal, asOf time.Time) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}

	var open []int
	remaining := decimal.Zero
	for i := range s.Periods {
		if s.Periods[i].Outstanding(valueobject.CategoryPrincipal).IsPositive() {
			open = append(open, i)
			remaining = remaining.Add(s.Periods[i].Outstanding(valueobject.CategoryPrincipal))
		}
	}
	if len(open) == 0 {
		return decimal.Zero
	}

	applied := decimal.Min(amount, remaining)
	reduced := remaining.Sub(applied)
	ratio := reduced.Div(remaining)

	n := decimal.NewFromInt(int64(len(open)))
	share := reduced.Div(n).RoundDown(2)
	for k, i := range open {
		p := &s.Periods[i]

		principalShare := share
		if k == len(open)-1 {
			principalShare = reduced.Sub(share.Mul(decimal.NewFromInt(int64(len(open) - 1))))
		}
		p.Due.Principal = p.Paid.Principal.Add(principalShare)

		// Interest follows the reduced principal at the same ratio.
		scaledInterest := p.Outstanding(valueobject.CategoryInterest).Mul(ratio).Round(2)
		p.Due.Interest = p.Paid.Interest.Add(scaledInterest)

		if p.ObligationsMetOn == nil && p.IsMet() {
			met := asOf
			p.ObligationsMetOn = &met
		}
	}

	return applied
}
