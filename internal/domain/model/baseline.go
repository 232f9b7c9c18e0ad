package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodTerms is the product-supplied configuration for one repayment period.
// Due amounts come from schedule generation upstream; this engine only
// allocates against them.
type PeriodTerms struct {
	DueDate     time.Time
	Principal   decimal.Decimal
	Interest    decimal.Decimal
	Fee         decimal.Decimal
	Penalty     decimal.Decimal
	DownPayment bool
}

// GenerateBaselineSchedule expands product terms into baseline periods.
//
// Parameters:
//   - terms: one entry per period, in due-date order
//
// Principal due amounts in the terms act as fill weights: the replay zeroes
// principal dues at reset and funds them from disbursement transactions
// (filling each period up to its configured principal, earliest first), so
// that multi-tranche and reversed disbursements recompute correctly.
func GenerateBaselineSchedule(terms []PeriodTerms) []Period {
	if len(terms) == 0 {
		return nil
	}

	periods := make([]Period, 0, len(terms))
	for i, t := range terms {
		periods = append(periods, Period{
			Sequence:    i,
			DueDate:     t.DueDate,
			DownPayment: t.DownPayment,
			Due: CategoryAmounts{
				Principal: t.Principal,
				Interest:  t.Interest,
				Fee:       t.Fee,
				Penalty:   t.Penalty,
			},
		})
	}

	return periods
}
