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

var (
	feb1 = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	mar1 = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	apr1 = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
)

// threePeriodBaseline: 100 principal + 10 interest per month, due Feb/Mar/Apr.
func threePeriodBaseline() []model.Period {
	return model.GenerateBaselineSchedule([]model.PeriodTerms{
		{DueDate: feb1, Principal: decimal.NewFromInt(100), Interest: decimal.NewFromInt(10)},
		{DueDate: mar1, Principal: decimal.NewFromInt(100), Interest: decimal.NewFromInt(10)},
		{DueDate: apr1, Principal: decimal.NewFromInt(100), Interest: decimal.NewFromInt(10)},
	})
}

func tx(seq int, day time.Time, txType valueobject.TransactionType, amount int64) model.Transaction {
	return model.Transaction{
		ID:       string(rune('a'+seq)) + "-tx",
		Sequence: seq,
		Date:     day,
		Type:     txType,
		Amount:   decimal.NewFromInt(amount),
	}
}

func TestReplayer_Disbursement(t *testing.T) {
	r := service.NewReplayer(valueobject.DefaultRuleTable())

	t.Run("single disbursement restores principal dues", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			tx(0, feb1.AddDate(0, 0, -17), valueobject.TypeDisbursement, 300),
		})
		require.NoError(t, err)

		for _, p := range snap.Schedule.Periods {
			assert.True(t, p.Due.Principal.Equal(decimal.NewFromInt(100)))
		}
		assert.True(t, snap.Schedule.TotalOutstanding().Equal(decimal.NewFromInt(330)))
		assert.True(t, snap.Ledger[0].Breakdown.Principal.Equal(decimal.NewFromInt(300)))
		assert.True(t, snap.Status.Equal(valueobject.LoanStatusActive))
	})

	t.Run("partial disbursement fills earliest periods first", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			tx(0, feb1.AddDate(0, 0, -17), valueobject.TypeDisbursement, 150),
		})
		require.NoError(t, err)

		periods := snap.Schedule.Periods
		assert.True(t, periods[0].Due.Principal.Equal(decimal.NewFromInt(100)))
		assert.True(t, periods[1].Due.Principal.Equal(decimal.NewFromInt(50)))
		assert.True(t, periods[2].Due.Principal.IsZero())
	})

	t.Run("second tranche tops up remaining weights", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			tx(0, feb1.AddDate(0, 0, -17), valueobject.TypeDisbursement, 150),
			tx(1, feb1.AddDate(0, 0, -10), valueobject.TypeDisbursement, 150),
		})
		require.NoError(t, err)

		for _, p := range snap.Schedule.Periods {
			assert.True(t, p.Due.Principal.Equal(decimal.NewFromInt(100)))
		}
	})

	t.Run("repayment before disbursement is rejected", func(t *testing.T) {
		_, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			tx(0, feb1.AddDate(0, 0, -17), valueobject.TypeDisbursement, 300),
			tx(1, feb1.AddDate(0, 0, -20), valueobject.TypeRepayment, 50),
		})
		assert.ErrorIs(t, err, model.ErrInvalidTransactionDate)
	})
}

func TestReplayer_RepaymentAllocation(t *testing.T) {
	r := service.NewReplayer(valueobject.DefaultRuleTable())
	disburse := tx(0, feb1.AddDate(0, 0, -17), valueobject.TypeDisbursement, 300)

	t.Run("payment before due date counts as paid in advance", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			disburse,
			tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeRepayment, 110),
		})
		require.NoError(t, err)

		p0 := snap.Schedule.Periods[0]
		assert.True(t, p0.IsMet())
		assert.True(t, p0.TotalPaidInAdvance.Equal(decimal.NewFromInt(110)))
		assert.True(t, p0.TotalPaidLate.IsZero())
		require.NotNil(t, p0.ObligationsMetOn)

		bd := snap.Ledger[1].Breakdown
		assert.True(t, bd.Principal.Equal(decimal.NewFromInt(100)))
		assert.True(t, bd.Interest.Equal(decimal.NewFromInt(10)))
		assert.True(t, snap.Ledger[1].OutstandingBalance.Equal(decimal.NewFromInt(220)))
	})

	t.Run("payment after due date settles past-due first and counts as late", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			disburse,
			tx(1, mar1.AddDate(0, 0, 4), valueobject.TypeRepayment, 110),
		})
		require.NoError(t, err)

		// Feb is the oldest past-due period and absorbs the whole payment.
		p0 := snap.Schedule.Periods[0]
		assert.True(t, p0.IsMet())
		assert.True(t, p0.TotalPaidLate.Equal(decimal.NewFromInt(110)))
		assert.False(t, snap.Schedule.Periods[1].IsMet())
	})

	t.Run("penalty and fee are settled before principal and interest", func(t *testing.T) {
		baseline := threePeriodBaseline()
		baseline[0].Due.Penalty = decimal.NewFromInt(25)
		baseline[0].Due.Fee = decimal.NewFromInt(5)

		snap, err := r.Recompute(baseline, []model.Transaction{
			disburse,
			tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeRepayment, 30),
		})
		require.NoError(t, err)

		bd := snap.Ledger[1].Breakdown
		assert.True(t, bd.Penalty.Equal(decimal.NewFromInt(25)))
		assert.True(t, bd.Fee.Equal(decimal.NewFromInt(5)))
		assert.True(t, bd.Principal.IsZero())
	})

	t.Run("surplus flows into the next installment", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			disburse,
			tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeRepayment, 150),
		})
		require.NoError(t, err)

		assert.True(t, snap.Schedule.Periods[0].IsMet())
		// 40 lands on March: penalty, fee, then principal per the rule order.
		p1 := snap.Schedule.Periods[1]
		assert.True(t, p1.Paid.Principal.Equal(decimal.NewFromInt(40)))
		assert.True(t, snap.Overpayment.IsZero())
	})

	t.Run("residual beyond all obligations becomes overpayment", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			disburse,
			tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeRepayment, 370),
		})
		require.NoError(t, err)

		assert.True(t, snap.Schedule.FullyMet())
		assert.True(t, snap.Overpayment.Equal(decimal.NewFromInt(40)))
		assert.True(t, snap.Ledger[1].Breakdown.Overpayment.Equal(decimal.NewFromInt(40)))
		assert.True(t, snap.Status.Equal(valueobject.LoanStatusOverpaid))
		require.NotNil(t, snap.Summary.TotalOverpaid)
		assert.True(t, snap.Summary.TotalOverpaid.Equal(decimal.NewFromInt(40)))
	})

	t.Run("exact payoff closes the loan", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			disburse,
			tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeRepayment, 330),
		})
		require.NoError(t, err)

		assert.True(t, snap.Status.Equal(valueobject.LoanStatusClosed))
		assert.Nil(t, snap.Summary.TotalOverpaid)
		assert.True(t, snap.Summary.TotalRepayment.Equal(decimal.NewFromInt(330)))
	})
}

func TestReplayer_FutureInstallmentRules(t *testing.T) {
	r := service.NewReplayer(valueobject.DefaultRuleTable())
	disburse := tx(0, feb1.AddDate(0, 0, -17), valueobject.TypeDisbursement, 300)

	t.Run("goodwill credit surplus lands on the last installment", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			disburse,
			tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeGoodwillCredit, 150),
		})
		require.NoError(t, err)

		assert.True(t, snap.Schedule.Periods[0].IsMet())
		assert.True(t, snap.Schedule.Periods[1].Paid.Principal.IsZero())
		assert.True(t, snap.Schedule.Periods[2].Paid.Principal.Equal(decimal.NewFromInt(40)))
	})

	t.Run("merchant refund surplus reamortizes open periods", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			disburse,
			tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeMerchantIssuedRefund, 120),
		})
		require.NoError(t, err)
		assert.True(t, snap.Reamortized)

		// 110 settles February; 10 reduces the 200 of remaining principal to
		// 190, split 95/95, with interest scaled by the same ratio.
		p1, p2 := snap.Schedule.Periods[1], snap.Schedule.Periods[2]
		assert.True(t, p1.Due.Principal.Equal(decimal.NewFromInt(95)))
		assert.True(t, p2.Due.Principal.Equal(decimal.NewFromInt(95)))
		assert.True(t, p1.Due.Interest.Equal(decimal.RequireFromString("9.5")))
		assert.True(t, p2.Due.Interest.Equal(decimal.RequireFromString("9.5")))

		bd := snap.Ledger[1].Breakdown
		assert.True(t, bd.Total().Equal(decimal.NewFromInt(120)))
	})

	t.Run("interest waiver touches interest only", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			disburse,
			tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeInterestPaymentWaiver, 10),
		})
		require.NoError(t, err)

		bd := snap.Ledger[1].Breakdown
		assert.True(t, bd.Interest.Equal(decimal.NewFromInt(10)))
		assert.True(t, bd.Principal.IsZero())
		assert.True(t, snap.Schedule.Periods[0].Paid.Interest.Equal(decimal.NewFromInt(10)))
	})
}

func TestReplayer_ReversalAndChargeback(t *testing.T) {
	r := service.NewReplayer(valueobject.DefaultRuleTable())
	disburse := tx(0, feb1.AddDate(0, 0, -17), valueobject.TypeDisbursement, 300)

	t.Run("reversed transaction contributes nothing", func(t *testing.T) {
		payment := tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeRepayment, 110)
		payment.Reversed = true

		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{disburse, payment})
		require.NoError(t, err)

		assert.False(t, snap.Schedule.Periods[0].IsMet())
		assert.True(t, snap.Ledger[1].Breakdown.Total().IsZero())
		assert.True(t, snap.Schedule.TotalOutstanding().Equal(decimal.NewFromInt(330)))
	})

	t.Run("reversal restores the exact pre-transaction state", func(t *testing.T) {
		payment := tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeRepayment, 110)

		before, err := r.Recompute(threePeriodBaseline(), []model.Transaction{disburse})
		require.NoError(t, err)

		payment.Reversed = true
		after, err := r.Recompute(threePeriodBaseline(), []model.Transaction{disburse, payment})
		require.NoError(t, err)

		assert.True(t, before.Schedule.TotalOutstanding().Equal(after.Schedule.TotalOutstanding()))
		for i := range before.Schedule.Periods {
			assert.True(t, before.Schedule.Periods[i].Paid.Total().Equal(after.Schedule.Periods[i].Paid.Total()))
		}
	})

	t.Run("chargeback reinstates the obligation on its booked date", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			disburse,
			tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeRepayment, 110),
			tx(2, mar1.AddDate(0, 0, 9), valueobject.TypeChargeback, 50),
		})
		require.NoError(t, err)

		// Unwind runs latest-first: February's interest then principal give
		// back 50 in total.
		p0 := snap.Schedule.Periods[0]
		assert.False(t, p0.IsMet())
		assert.True(t, p0.TotalOutstanding().Equal(decimal.NewFromInt(50)))
		assert.True(t, snap.Ledger[2].Breakdown.Total().Equal(decimal.NewFromInt(50)))
	})

	t.Run("chargeback draws the overpayment pool before unwinding periods", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			disburse,
			tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeRepayment, 370),
			tx(2, mar1.AddDate(0, 0, 9), valueobject.TypeChargeback, 30),
		})
		require.NoError(t, err)

		assert.True(t, snap.Overpayment.Equal(decimal.NewFromInt(10)))
		assert.True(t, snap.Ledger[2].Breakdown.Overpayment.Equal(decimal.NewFromInt(30)))
		assert.True(t, snap.Schedule.FullyMet())
	})

	t.Run("repayment after a chargeback does not double-count advance funds", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			disburse,
			tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeRepayment, 110),
			tx(2, feb1.AddDate(0, 0, -8), valueobject.TypeChargeback, 110),
			tx(3, feb1.AddDate(0, 0, -4), valueobject.TypeRepayment, 110),
		})
		require.NoError(t, err)

		p0 := snap.Schedule.Periods[0]
		assert.True(t, p0.IsMet())
		assert.True(t, p0.Paid.Total().Equal(decimal.NewFromInt(110)))
		assert.True(t, p0.TotalPaidInAdvance.Equal(decimal.NewFromInt(110)))
		assert.True(t, p0.TotalPaidLate.IsZero())
	})

	t.Run("chargeback exceeding settled funds fails", func(t *testing.T) {
		_, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			disburse,
			tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeRepayment, 110),
			tx(2, mar1.AddDate(0, 0, 9), valueobject.TypeChargeback, 200),
		})
		assert.ErrorIs(t, err, model.ErrInvalidAmount)
	})
}

func TestReplayer_CreditBalanceRefundAndChargeOff(t *testing.T) {
	r := service.NewReplayer(valueobject.DefaultRuleTable())
	disburse := tx(0, feb1.AddDate(0, 0, -17), valueobject.TypeDisbursement, 300)

	t.Run("refund drains the overpayment pool and closes the loan", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			disburse,
			tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeRepayment, 370),
			tx(2, mar1, valueobject.TypeCreditBalanceRefund, 40),
		})
		require.NoError(t, err)

		assert.True(t, snap.Overpayment.IsZero())
		assert.True(t, snap.Status.Equal(valueobject.LoanStatusClosed))
	})

	t.Run("refund beyond the pool fails", func(t *testing.T) {
		_, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			disburse,
			tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeRepayment, 370),
			tx(2, mar1, valueobject.TypeCreditBalanceRefund, 50),
		})
		assert.ErrorIs(t, err, model.ErrInvalidAmount)
	})

	t.Run("transactions after charge-off are flagged for income redirection", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), []model.Transaction{
			disburse,
			tx(1, mar1, valueobject.TypeChargeOff, 0),
			tx(2, mar1.AddDate(0, 0, 9), valueobject.TypeRepayment, 110),
		})
		require.NoError(t, err)

		assert.True(t, snap.ChargedOff)
		assert.False(t, snap.Ledger[0].IncomeRedirected)
		assert.False(t, snap.Ledger[1].IncomeRedirected)
		assert.True(t, snap.Ledger[2].IncomeRedirected)
		assert.True(t, snap.Status.Equal(valueobject.LoanStatusChargedOff))

		// Allocation order itself is unchanged by the charge-off.
		assert.True(t, snap.Ledger[2].Breakdown.Total().Equal(decimal.NewFromInt(110)))
	})
}

func TestReplayer_Determinism(t *testing.T) {
	r := service.NewReplayer(valueobject.DefaultRuleTable())
	ledger := []model.Transaction{
		tx(0, feb1.AddDate(0, 0, -17), valueobject.TypeDisbursement, 300),
		tx(1, feb1.AddDate(0, 0, -12), valueobject.TypeRepayment, 80),
		tx(2, mar1.AddDate(0, 0, 2), valueobject.TypeRepayment, 150),
		tx(3, mar1.AddDate(0, 0, 9), valueobject.TypeChargeback, 40),
	}

	t.Run("replay is idempotent over the same ledger", func(t *testing.T) {
		first, err := r.Recompute(threePeriodBaseline(), ledger)
		require.NoError(t, err)
		second, err := r.Recompute(threePeriodBaseline(), first.Ledger)
		require.NoError(t, err)

		assert.True(t, first.Schedule.TotalOutstanding().Equal(second.Schedule.TotalOutstanding()))
		assert.True(t, first.Overpayment.Equal(second.Overpayment))
		for i := range first.Ledger {
			assert.True(t, first.Ledger[i].Breakdown.Total().Equal(second.Ledger[i].Breakdown.Total()))
			assert.True(t, first.Ledger[i].OutstandingBalance.Equal(second.Ledger[i].OutstandingBalance))
		}
	})

	t.Run("ledger order does not matter, only dates and sequences", func(t *testing.T) {
		shuffled := []model.Transaction{ledger[2], ledger[0], ledger[3], ledger[1]}

		inOrder, err := r.Recompute(threePeriodBaseline(), ledger)
		require.NoError(t, err)
		outOfOrder, err := r.Recompute(threePeriodBaseline(), shuffled)
		require.NoError(t, err)

		assert.True(t, inOrder.Schedule.TotalOutstanding().Equal(outOfOrder.Schedule.TotalOutstanding()))
		assert.True(t, inOrder.Overpayment.Equal(outOfOrder.Overpayment))
	})

	t.Run("every breakdown conserves the transaction amount", func(t *testing.T) {
		snap, err := r.Recompute(threePeriodBaseline(), ledger)
		require.NoError(t, err)
		for _, entry := range snap.Ledger {
			assert.True(t, entry.Breakdown.Total().Equal(entry.Amount),
				"transaction %s: breakdown %s vs amount %s", entry.ID, entry.Breakdown.Total(), entry.Amount)
		}
	})
}
