package valueobject

import (
	"errors"
	"fmt"
	"strings"
)

// Urgency classifies a period's obligation relative to a transaction date.
type Urgency string

const (
	UrgencyPastDue   Urgency = "PAST_DUE"
	UrgencyDue       Urgency = "DUE"
	UrgencyInAdvance Urgency = "IN_ADVANCE"
)

// AllocationTarget is one (urgency, category) pair in a rule's ordered list.
type AllocationTarget struct {
	Urgency  Urgency
	Category Category
}

// String returns the PAST_DUE_PENALTY style tag.
func (t AllocationTarget) String() string {
	return string(t.Urgency) + "_" + string(t.Category)
}

// ParseAllocationTarget parses a PAST_DUE_PENALTY style tag.
func ParseAllocationTarget(s string) (AllocationTarget, error) {
	for _, u := range []Urgency{UrgencyPastDue, UrgencyDue, UrgencyInAdvance} {
		prefix := string(u) + "_"
		if strings.HasPrefix(s, prefix) {
			c, err := ParseCategory(strings.TrimPrefix(s, prefix))
			if err != nil {
				return AllocationTarget{}, fmt.Errorf("allocation target %q: %w", s, err)
			}
			return AllocationTarget{Urgency: u, Category: c}, nil
		}
	}
	return AllocationTarget{}, fmt.Errorf("unknown allocation target %q", s)
}

// FutureInstallmentRule decides how a surplus beyond currently-due obligations
// is spent.
type FutureInstallmentRule string

const (
	FutureNextInstallment FutureInstallmentRule = "NEXT_INSTALLMENT"
	FutureLastInstallment FutureInstallmentRule = "LAST_INSTALLMENT"
	FutureReamortization  FutureInstallmentRule = "REAMORTIZATION"
)

// Orientation decides traversal order when spending across multiple periods
// within one urgency band.
type Orientation string

const (
	// OrientationHorizontal exhausts one period across all its due categories
	// before moving to the next period.
	OrientationHorizontal Orientation = "HORIZONTAL"
	// OrientationVertical exhausts one category across all matching periods
	// before advancing to the next target.
	OrientationVertical Orientation = "VERTICAL"
)

// AllocationRule is the immutable per-transaction-type allocation
// configuration. Targets must be grouped by urgency in PAST_DUE, DUE,
// IN_ADVANCE order: the engine spends band by band, so an interleaved list
// would not run in its stated order. NewRuleTable rejects one.
type AllocationRule struct {
	TransactionType TransactionType
	Targets         []AllocationTarget
	Future          FutureInstallmentRule
	Orientation     Orientation
}

// ErrAllocationRuleMissing indicates a product configuration defect: an
// allocating transaction type without a rule. Raised at table construction,
// never at transaction time.
var ErrAllocationRuleMissing = errors.New("allocation rule missing")

// RuleTable maps allocating transaction types to their rule.
type RuleTable struct {
	rules map[TransactionType]AllocationRule
}

// allocatingTypes must each have exactly one rule in every table.
var allocatingTypes = []TransactionType{
	TypeRepayment,
	TypeGoodwillCredit,
	TypeMerchantIssuedRefund,
	TypePayoutRefund,
	TypeInterestPaymentWaiver,
}

// NewRuleTable validates and builds a rule table.
func NewRuleTable(rules ...AllocationRule) (RuleTable, error) {
	byType := make(map[TransactionType]AllocationRule, len(rules))
	for _, r := range rules {
		if _, dup := byType[r.TransactionType]; dup {
			return RuleTable{}, fmt.Errorf("duplicate allocation rule for %s", r.TransactionType)
		}
		if len(r.Targets) == 0 {
			return RuleTable{}, fmt.Errorf("allocation rule for %s has no targets", r.TransactionType)
		}
		if r.Orientation != OrientationHorizontal && r.Orientation != OrientationVertical {
			return RuleTable{}, fmt.Errorf("allocation rule for %s: invalid orientation %q", r.TransactionType, r.Orientation)
		}
		if err := validateBandOrder(r); err != nil {
			return RuleTable{}, err
		}
		byType[r.TransactionType] = r
	}
	for _, t := range allocatingTypes {
		if _, ok := byType[t]; !ok {
			return RuleTable{}, fmt.Errorf("%w: %s", ErrAllocationRuleMissing, t)
		}
	}
	return RuleTable{rules: byType}, nil
}

// RuleFor returns the rule for a transaction type. Only allocating types have
// one; chargebacks unwind settled funds instead of spending through a rule.
func (rt RuleTable) RuleFor(t TransactionType) (AllocationRule, error) {
	r, ok := rt.rules[t]
	if !ok {
		return AllocationRule{}, fmt.Errorf("%w: %s", ErrAllocationRuleMissing, t)
	}
	return r, nil
}

// validateBandOrder rejects target lists whose urgencies interleave.
func validateBandOrder(r AllocationRule) error {
	rank := map[Urgency]int{UrgencyPastDue: 0, UrgencyDue: 1, UrgencyInAdvance: 2}
	last := -1
	for _, t := range r.Targets {
		k, ok := rank[t.Urgency]
		if !ok {
			return fmt.Errorf("allocation rule for %s: unknown urgency %q", r.TransactionType, t.Urgency)
		}
		if k < last {
			return fmt.Errorf("allocation rule for %s: target %s breaks the PAST_DUE, DUE, IN_ADVANCE band order",
				r.TransactionType, t)
		}
		last = k
	}
	return nil
}

// cascade builds the full 12-target list for a fixed category order across
// all three urgency bands.
func cascade(order ...Category) []AllocationTarget {
	targets := make([]AllocationTarget, 0, 3*len(order))
	for _, u := range []Urgency{UrgencyPastDue, UrgencyDue, UrgencyInAdvance} {
		for _, c := range order {
			targets = append(targets, AllocationTarget{Urgency: u, Category: c})
		}
	}
	return targets
}

// DefaultRuleTable returns the stock product configuration.
func DefaultRuleTable() RuleTable {
	penaltyFirst := cascade(CategoryPenalty, CategoryFee, CategoryPrincipal, CategoryInterest)

	rt, err := NewRuleTable(
		AllocationRule{
			TransactionType: TypeRepayment,
			Targets:         penaltyFirst,
			Future:          FutureNextInstallment,
			Orientation:     OrientationHorizontal,
		},
		AllocationRule{
			TransactionType: TypeGoodwillCredit,
			Targets:         penaltyFirst,
			Future:          FutureLastInstallment,
			Orientation:     OrientationVertical,
		},
		AllocationRule{
			TransactionType: TypeMerchantIssuedRefund,
			Targets:         penaltyFirst,
			Future:          FutureReamortization,
			Orientation:     OrientationHorizontal,
		},
		AllocationRule{
			TransactionType: TypePayoutRefund,
			Targets:         penaltyFirst,
			Future:          FutureNextInstallment,
			Orientation:     OrientationHorizontal,
		},
		AllocationRule{
			TransactionType: TypeInterestPaymentWaiver,
			Targets: []AllocationTarget{
				{Urgency: UrgencyPastDue, Category: CategoryInterest},
				{Urgency: UrgencyDue, Category: CategoryInterest},
				{Urgency: UrgencyInAdvance, Category: CategoryInterest},
			},
			Future:      FutureNextInstallment,
			Orientation: OrientationVertical,
		},
	)
	if err != nil {
		// The stock table is covered by tests; a failure here is a programming error.
		panic(err)
	}
	return rt
}
