package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
)

// CategoryAmounts holds one monetary figure per allocation category.
type CategoryAmounts struct {
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Fee       decimal.Decimal
	Penalty   decimal.Decimal
}

// Get returns the amount for a category.
func (a CategoryAmounts) Get(c valueobject.Category) decimal.Decimal {
	switch c {
	case valueobject.CategoryPrincipal:
		return a.Principal
	case valueobject.CategoryInterest:
		return a.Interest
	case valueobject.CategoryFee:
		return a.Fee
	case valueobject.CategoryPenalty:
		return a.Penalty
	}
	return decimal.Zero
}

// Add increases the amount for a category.
func (a *CategoryAmounts) Add(c valueobject.Category, amt decimal.Decimal) {
	a.Set(c, a.Get(c).Add(amt))
}

// Set assigns the amount for a category.
func (a *CategoryAmounts) Set(c valueobject.Category, amt decimal.Decimal) {
	switch c {
	case valueobject.CategoryPrincipal:
		a.Principal = amt
	case valueobject.CategoryInterest:
		a.Interest = amt
	case valueobject.CategoryFee:
		a.Fee = amt
	case valueobject.CategoryPenalty:
		a.Penalty = amt
	}
}

// Total sums all four categories.
func (a CategoryAmounts) Total() decimal.Decimal {
	return a.Principal.Add(a.Interest).Add(a.Fee).Add(a.Penalty)
}

// Period is one scheduled repayment installment, including the disbursement
// "period zero" and a synthetic down-payment period where applicable.
// Outstanding amounts are derived (due − paid) so that
// paid + outstanding == due holds for every category at all times.
type Period struct {
	Sequence    int
	DueDate     time.Time
	DownPayment bool

	Due  CategoryAmounts
	Paid CategoryAmounts

	TotalPaidInAdvance decimal.Decimal
	TotalPaidLate      decimal.Decimal
	ObligationsMetOn   *time.Time
}

// Outstanding returns the remaining obligation for a category, never negative.
func (p *Period) Outstanding(c valueobject.Category) decimal.Decimal {
	out := p.Due.Get(c).Sub(p.Paid.Get(c))
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// TotalOutstanding sums the outstanding across all categories.
func (p *Period) TotalOutstanding() decimal.Decimal {
	total := decimal.Zero
	for _, c := range valueobject.Categories {
		total = total.Add(p.Outstanding(c))
	}
	return total
}

// IsMet reports whether every category reached zero outstanding.
func (p *Period) IsMet() bool {
	return p.TotalOutstanding().IsZero()
}

// ApplyAmount applies up to amount against the outstanding balance of the
// category and returns the amount actually consumed. Applying to an
// already-met category is a no-op returning zero. Zero or negative amounts
// are rejected.
func (p *Period) ApplyAmount(c valueobject.Category, amount decimal.Decimal, asOf time.Time) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: apply %s to period %d", ErrInvalidAmount, amount, p.Sequence)
	}

	outstanding := p.Outstanding(c)
	if outstanding.IsZero() {
		return decimal.Zero, nil
	}

	applied := decimal.Min(amount, outstanding)
	p.Paid.Add(c, applied)

	switch {
	case asOf.Before(p.DueDate):
		p.TotalPaidInAdvance = p.TotalPaidInAdvance.Add(applied)
	case asOf.After(p.DueDate):
		// The amount satisfies a previously past-due obligation.
		p.TotalPaidLate = p.TotalPaidLate.Add(applied)
	}

	if p.ObligationsMetOn == nil && p.IsMet() {
		met := asOf
		p.ObligationsMetOn = &met
	}

	return applied, nil
}

// Reinstate unwinds up to amount of previously paid funds from the category,
// returning what was actually reinstated. Used for chargebacks, which reverse
// a payment-network settled transaction.
func (p *Period) Reinstate(c valueobject.Category, amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	paid := p.Paid.Get(c)
	if paid.IsZero() {
		return decimal.Zero
	}
	reinstated := decimal.Min(amount, paid)
	p.Paid.Set(c, paid.Sub(reinstated))

	// Clawed-back funds no longer count toward the timing buckets. Which
	// bucket funded the unwound slice is not tracked per payment, so clamp
	// the buckets to what remains paid, late funds first as the most
	// recently settled.
	paidTotal := p.Paid.Total()
	excess := p.TotalPaidInAdvance.Add(p.TotalPaidLate).Sub(paidTotal)
	if excess.IsPositive() {
		fromLate := decimal.Min(excess, p.TotalPaidLate)
		p.TotalPaidLate = p.TotalPaidLate.Sub(fromLate)
		excess = excess.Sub(fromLate)
		if excess.IsPositive() {
			p.TotalPaidInAdvance = decimal.Max(decimal.Zero, p.TotalPaidInAdvance.Sub(excess))
		}
	}

	if !p.IsMet() {
		p.ObligationsMetOn = nil
	}
	return reinstated
}

// clone returns a deep copy.
func (p Period) clone() Period {
	cp := p
	if p.ObligationsMetOn != nil {
		met := *p.ObligationsMetOn
		cp.ObligationsMetOn = &met
	}
	return cp
}
