package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-servicing/internal/domain/model"
	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
)

// AllocationEngine spends one transaction against the schedule following the
// transaction type's allocation rule and returns the category breakdown.
// It only ever runs inside a replay pass, on the working schedule copy.
type AllocationEngine struct {
	rules valueobject.RuleTable
}

// NewAllocationEngine creates an engine bound to a product rule table.
func NewAllocationEngine(rules valueobject.RuleTable) *AllocationEngine {
	return &AllocationEngine{rules: rules}
}

// bands holds the period indexes per urgency relative to one transaction date.
type bands struct {
	pastDue   []int
	due       []int // at most one entry: the current obligation window
	inAdvance []int
}

// classify buckets every open period relative to the transaction date.
// PAST_DUE: due date before the transaction date with outstanding remaining.
// DUE: the earliest open period that is not past due.
// IN_ADVANCE: every later open period.
func classify(sched *model.Schedule, txDate time.Time) bands {
	var b bands
	for i := range sched.Periods {
		p := &sched.Periods[i]
		if p.IsMet() {
			continue
		}
		switch {
		case p.DueDate.Before(txDate):
			b.pastDue = append(b.pastDue, i)
		case len(b.due) == 0:
			b.due = append(b.due, i)
		default:
			b.inAdvance = append(b.inAdvance, i)
		}
	}
	return b
}

// Allocate applies one non-reversed transaction. It mutates the schedule,
// returns the breakdown and the updated loan-level overpayment pool, and
// reports whether the future-installment rule triggered a reamortization.
func (e *AllocationEngine) Allocate(
	sched *model.Schedule,
	tx model.Transaction,
	overpayment decimal.Decimal,
) (model.Breakdown, decimal.Decimal, bool, error) {
	rule, err := e.rules.RuleFor(tx.Type)
	if err != nil {
		return model.Breakdown{}, overpayment, false, err
	}

	remaining := tx.Amount
	var bd model.Breakdown

	spend := func(idx int, c valueobject.Category) error {
		if !remaining.IsPositive() {
			return nil
		}
		applied, err := sched.Periods[idx].ApplyAmount(c, remaining, tx.Date)
		if err != nil {
			return err
		}
		remaining = remaining.Sub(applied)
		bd.Add(c, applied)
		return nil
	}

	runBand := func(u valueobject.Urgency, periods []int) error {
		cats := categoriesFor(rule, u)
		if len(cats) == 0 || len(periods) == 0 {
			return nil
		}
		if rule.Orientation == valueobject.OrientationHorizontal {
			// One period across all its due categories, earliest first.
			for _, idx := range periods {
				for _, c := range cats {
					if err := spend(idx, c); err != nil {
						return err
					}
				}
			}
			return nil
		}
		// Vertical: one category across all matching periods before the next
		// target in the ordered list.
		for _, c := range cats {
			for _, idx := range periods {
				if err := spend(idx, c); err != nil {
					return err
				}
			}
		}
		return nil
	}

	b := classify(sched, tx.Date)

	if err := runBand(valueobject.UrgencyPastDue, b.pastDue); err != nil {
		return model.Breakdown{}, overpayment, false, err
	}
	if err := runBand(valueobject.UrgencyDue, b.due); err != nil {
		return model.Breakdown{}, overpayment, false, err
	}

	// Whatever is left beyond the currently-due obligations follows the
	// future-installment rule before any IN_ADVANCE target is considered.
	reamortized := false
	if remaining.IsPositive() {
		switch rule.Future {
		case valueobject.FutureReamortization:
			applied := sched.Reamortize(remaining, tx.Date)
			if applied.IsPositive() {
				bd.Add(valueobject.CategoryPrincipal, applied)
				remaining = remaining.Sub(applied)
				reamortized = true
			}
		case valueobject.FutureLastInstallment:
			if err := runBand(valueobject.UrgencyInAdvance, reverse(b.inAdvance)); err != nil {
				return model.Breakdown{}, overpayment, false, err
			}
		default: // NEXT_INSTALLMENT
			if err := runBand(valueobject.UrgencyInAdvance, b.inAdvance); err != nil {
				return model.Breakdown{}, overpayment, false, err
			}
		}
	}

	// Residual beyond total outstanding becomes overpayment, tracked at the
	// loan level, not attributed to any period.
	if remaining.IsPositive() {
		bd.Overpayment = bd.Overpayment.Add(remaining)
		overpayment = overpayment.Add(remaining)
		remaining = decimal.Zero
	}

	if !bd.Total().Equal(tx.Amount) {
		return model.Breakdown{}, overpayment, false, fmt.Errorf(
			"%w: %s breakdown %s diverges from amount %s",
			model.ErrReplayInconsistency, tx.Type, bd.Total(), tx.Amount)
	}

	return bd, overpayment, reamortized, nil
}

// Reinstate handles a chargeback: the payment network clawed settled funds
// back, so the obligation they met becomes outstanding again. The overpayment
// pool absorbs the debit first; the rest unwinds paid amounts latest period
// first, category order reversed from the repayment cascade.
func (e *AllocationEngine) Reinstate(
	sched *model.Schedule,
	tx model.Transaction,
	overpayment decimal.Decimal,
) (model.Breakdown, decimal.Decimal, error) {
	remaining := tx.Amount
	var bd model.Breakdown

	fromPool := decimal.Min(remaining, overpayment)
	if fromPool.IsPositive() {
		overpayment = overpayment.Sub(fromPool)
		bd.Overpayment = fromPool
		remaining = remaining.Sub(fromPool)
	}

	unwindOrder := []valueobject.Category{
		valueobject.CategoryInterest,
		valueobject.CategoryPrincipal,
		valueobject.CategoryFee,
		valueobject.CategoryPenalty,
	}
	for i := len(sched.Periods) - 1; i >= 0 && remaining.IsPositive(); i-- {
		for _, c := range unwindOrder {
			if !remaining.IsPositive() {
				break
			}
			reinstated := sched.Periods[i].Reinstate(c, remaining)
			remaining = remaining.Sub(reinstated)
			bd.Add(c, reinstated)
		}
	}

	if remaining.IsPositive() {
		return model.Breakdown{}, overpayment, fmt.Errorf(
			"%w: chargeback %s exceeds settled funds", model.ErrInvalidAmount, tx.Amount)
	}

	if !bd.Total().Equal(tx.Amount) {
		return model.Breakdown{}, overpayment, fmt.Errorf(
			"%w: chargeback breakdown %s diverges from amount %s",
			model.ErrReplayInconsistency, bd.Total(), tx.Amount)
	}

	return bd, overpayment, nil
}

// categoriesFor extracts the category order for one urgency from the rule's
// ordered target list.
func categoriesFor(rule valueobject.AllocationRule, u valueobject.Urgency) []valueobject.Category {
	var cats []valueobject.Category
	for _, t := range rule.Targets {
		if t.Urgency == u {
			cats = append(cats, t.Category)
		}
	}
	return cats
}

func reverse(in []int) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
