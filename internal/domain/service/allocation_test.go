package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loan-servicing/internal/domain/model"
	"github.com/bibbank/loan-servicing/internal/domain/service"
	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
)

// orientationTable builds a rule table where every allocating type shares the
// same penalty-first cascade under the given orientation.
func orientationTable(t *testing.T, o valueobject.Orientation) valueobject.RuleTable {
	t.Helper()

	var targets []valueobject.AllocationTarget
	for _, u := range []valueobject.Urgency{valueobject.UrgencyPastDue, valueobject.UrgencyDue, valueobject.UrgencyInAdvance} {
		for _, c := range []valueobject.Category{
			valueobject.CategoryPenalty, valueobject.CategoryFee,
			valueobject.CategoryPrincipal, valueobject.CategoryInterest,
		} {
			targets = append(targets, valueobject.AllocationTarget{Urgency: u, Category: c})
		}
	}

	rules := make([]valueobject.AllocationRule, 0, 5)
	for _, txType := range []valueobject.TransactionType{
		valueobject.TypeRepayment,
		valueobject.TypeGoodwillCredit,
		valueobject.TypeMerchantIssuedRefund,
		valueobject.TypePayoutRefund,
		valueobject.TypeInterestPaymentWaiver,
	} {
		rules = append(rules, valueobject.AllocationRule{
			TransactionType: txType,
			Targets:         targets,
			Future:          valueobject.FutureNextInstallment,
			Orientation:     o,
		})
	}

	rt, err := valueobject.NewRuleTable(rules...)
	require.NoError(t, err)
	return rt
}

// penalizedSchedule builds two past-due periods, each carrying principal plus
// a penalty charge.
func penalizedSchedule() model.Schedule {
	return model.NewSchedule(model.GenerateBaselineSchedule([]model.PeriodTerms{
		{DueDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Principal: decimal.NewFromInt(100), Penalty: decimal.NewFromInt(20)},
		{DueDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Principal: decimal.NewFromInt(100), Penalty: decimal.NewFromInt(30)},
	}))
}

func TestAllocationEngine_Orientation(t *testing.T) {
	txDate := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	payment := model.Transaction{
		Type:   valueobject.TypeRepayment,
		Date:   txDate,
		Amount: decimal.NewFromInt(130),
	}

	t.Run("horizontal exhausts a period before moving on", func(t *testing.T) {
		sched := penalizedSchedule()
		engine := service.NewAllocationEngine(orientationTable(t, valueobject.OrientationHorizontal))

		bd, pool, reamortized, err := engine.Allocate(&sched, payment, decimal.Zero)
		require.NoError(t, err)
		assert.False(t, reamortized)
		assert.True(t, pool.IsZero())
		assert.True(t, bd.Total().Equal(payment.Amount))

		// Period 0 fully settled (20 penalty + 100 principal), the last 10
		// lands on period 1's penalty.
		assert.True(t, sched.Periods[0].IsMet())
		assert.True(t, sched.Periods[1].Paid.Penalty.Equal(decimal.NewFromInt(10)))
		assert.True(t, sched.Periods[1].Outstanding(valueobject.CategoryPenalty).Equal(decimal.NewFromInt(20)))
		assert.True(t, sched.Periods[1].Paid.Principal.IsZero())
	})

	t.Run("vertical drains a category across periods first", func(t *testing.T) {
		sched := penalizedSchedule()
		engine := service.NewAllocationEngine(orientationTable(t, valueobject.OrientationVertical))

		bd, pool, reamortized, err := engine.Allocate(&sched, payment, decimal.Zero)
		require.NoError(t, err)
		assert.False(t, reamortized)
		assert.True(t, pool.IsZero())
		assert.True(t, bd.Total().Equal(payment.Amount))

		// Both penalties clear before any principal (20 + 30 = 50), the
		// remaining 80 goes to period 0's principal.
		assert.True(t, sched.Periods[1].Outstanding(valueobject.CategoryPenalty).IsZero())
		assert.True(t, sched.Periods[0].Paid.Principal.Equal(decimal.NewFromInt(80)))
		assert.True(t, sched.Periods[1].Paid.Principal.IsZero())
		assert.False(t, sched.Periods[0].IsMet())
	})

	t.Run("same stream diverges per period across orientations", func(t *testing.T) {
		horizontal := penalizedSchedule()
		vertical := penalizedSchedule()

		_, _, _, err := service.NewAllocationEngine(orientationTable(t, valueobject.OrientationHorizontal)).
			Allocate(&horizontal, payment, decimal.Zero)
		require.NoError(t, err)
		_, _, _, err = service.NewAllocationEngine(orientationTable(t, valueobject.OrientationVertical)).
			Allocate(&vertical, payment, decimal.Zero)
		require.NoError(t, err)

		assert.False(t, horizontal.Periods[1].Paid.Penalty.Equal(vertical.Periods[1].Paid.Penalty))
		assert.False(t, horizontal.Periods[0].Paid.Principal.Equal(vertical.Periods[0].Paid.Principal))
	})
}
