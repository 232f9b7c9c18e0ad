package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loan-servicing/internal/domain/model"
	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
)

func testPeriod() model.Period {
	return model.Period{
		Sequence: 1,
		DueDate:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Due: model.CategoryAmounts{
			Principal: decimal.NewFromInt(100),
			Interest:  decimal.NewFromInt(10),
		},
	}
}

func TestPeriod_ApplyAmount(t *testing.T) {
	t.Run("caps at the outstanding balance", func(t *testing.T) {
		p := testPeriod()
		applied, err := p.ApplyAmount(valueobject.CategoryPrincipal, decimal.NewFromInt(250), p.DueDate)
		require.NoError(t, err)

		assert.True(t, applied.Equal(decimal.NewFromInt(100)))
		assert.True(t, p.Outstanding(valueobject.CategoryPrincipal).IsZero())
	})

	t.Run("paid plus outstanding always equals due", func(t *testing.T) {
		p := testPeriod()
		_, err := p.ApplyAmount(valueobject.CategoryPrincipal, decimal.NewFromInt(40), p.DueDate)
		require.NoError(t, err)

		sum := p.Paid.Principal.Add(p.Outstanding(valueobject.CategoryPrincipal))
		assert.True(t, sum.Equal(p.Due.Principal))
	})

	t.Run("met category is a no-op", func(t *testing.T) {
		p := testPeriod()
		_, err := p.ApplyAmount(valueobject.CategoryPrincipal, decimal.NewFromInt(100), p.DueDate)
		require.NoError(t, err)

		applied, err := p.ApplyAmount(valueobject.CategoryPrincipal, decimal.NewFromInt(50), p.DueDate)
		require.NoError(t, err)
		assert.True(t, applied.IsZero())
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		p := testPeriod()
		_, err := p.ApplyAmount(valueobject.CategoryPrincipal, decimal.Zero, p.DueDate)
		assert.ErrorIs(t, err, model.ErrInvalidAmount)

		_, err = p.ApplyAmount(valueobject.CategoryPrincipal, decimal.NewFromInt(-5), p.DueDate)
		assert.ErrorIs(t, err, model.ErrInvalidAmount)
	})

	t.Run("buckets by timing relative to the due date", func(t *testing.T) {
		p := testPeriod()
		early := p.DueDate.AddDate(0, 0, -5)
		late := p.DueDate.AddDate(0, 0, 5)

		_, err := p.ApplyAmount(valueobject.CategoryPrincipal, decimal.NewFromInt(30), early)
		require.NoError(t, err)
		_, err = p.ApplyAmount(valueobject.CategoryPrincipal, decimal.NewFromInt(30), late)
		require.NoError(t, err)
		_, err = p.ApplyAmount(valueobject.CategoryPrincipal, decimal.NewFromInt(30), p.DueDate)
		require.NoError(t, err)

		assert.True(t, p.TotalPaidInAdvance.Equal(decimal.NewFromInt(30)))
		assert.True(t, p.TotalPaidLate.Equal(decimal.NewFromInt(30)))
	})

	t.Run("stamps the met date when the last category closes", func(t *testing.T) {
		p := testPeriod()
		asOf := p.DueDate.AddDate(0, 0, -3)

		_, err := p.ApplyAmount(valueobject.CategoryPrincipal, decimal.NewFromInt(100), asOf)
		require.NoError(t, err)
		assert.Nil(t, p.ObligationsMetOn)

		_, err = p.ApplyAmount(valueobject.CategoryInterest, decimal.NewFromInt(10), asOf)
		require.NoError(t, err)
		require.NotNil(t, p.ObligationsMetOn)
		assert.True(t, p.ObligationsMetOn.Equal(asOf))
	})
}

func TestPeriod_Reinstate(t *testing.T) {
	t.Run("unwinds paid funds and reopens the period", func(t *testing.T) {
		p := testPeriod()
		_, err := p.ApplyAmount(valueobject.CategoryPrincipal, decimal.NewFromInt(100), p.DueDate)
		require.NoError(t, err)
		_, err = p.ApplyAmount(valueobject.CategoryInterest, decimal.NewFromInt(10), p.DueDate)
		require.NoError(t, err)
		require.NotNil(t, p.ObligationsMetOn)

		reinstated := p.Reinstate(valueobject.CategoryPrincipal, decimal.NewFromInt(60))
		assert.True(t, reinstated.Equal(decimal.NewFromInt(60)))
		assert.True(t, p.Outstanding(valueobject.CategoryPrincipal).Equal(decimal.NewFromInt(60)))
		assert.Nil(t, p.ObligationsMetOn)
	})

	t.Run("caps at what was paid", func(t *testing.T) {
		p := testPeriod()
		_, err := p.ApplyAmount(valueobject.CategoryPrincipal, decimal.NewFromInt(40), p.DueDate)
		require.NoError(t, err)

		reinstated := p.Reinstate(valueobject.CategoryPrincipal, decimal.NewFromInt(100))
		assert.True(t, reinstated.Equal(decimal.NewFromInt(40)))
	})

	t.Run("nothing paid means nothing reinstated", func(t *testing.T) {
		p := testPeriod()
		assert.True(t, p.Reinstate(valueobject.CategoryInterest, decimal.NewFromInt(10)).IsZero())
	})

	t.Run("unwinds the timing buckets with the funds", func(t *testing.T) {
		p := testPeriod()
		early := p.DueDate.AddDate(0, 0, -5)

		_, err := p.ApplyAmount(valueobject.CategoryPrincipal, decimal.NewFromInt(60), early)
		require.NoError(t, err)
		require.True(t, p.TotalPaidInAdvance.Equal(decimal.NewFromInt(60)))

		p.Reinstate(valueobject.CategoryPrincipal, decimal.NewFromInt(60))
		assert.True(t, p.TotalPaidInAdvance.IsZero())
		assert.True(t, p.TotalPaidLate.IsZero())
	})

	t.Run("late funds unwind before advance funds", func(t *testing.T) {
		p := testPeriod()
		early := p.DueDate.AddDate(0, 0, -5)
		late := p.DueDate.AddDate(0, 0, 5)

		_, err := p.ApplyAmount(valueobject.CategoryPrincipal, decimal.NewFromInt(40), early)
		require.NoError(t, err)
		_, err = p.ApplyAmount(valueobject.CategoryPrincipal, decimal.NewFromInt(30), late)
		require.NoError(t, err)

		p.Reinstate(valueobject.CategoryPrincipal, decimal.NewFromInt(50))

		assert.True(t, p.TotalPaidLate.IsZero())
		assert.True(t, p.TotalPaidInAdvance.Equal(decimal.NewFromInt(20)))
	})
}

func TestSchedule_Reamortize(t *testing.T) {
	baseline := []model.Period{
		testPeriod(),
		{
			Sequence: 2,
			DueDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			Due: model.CategoryAmounts{
				Principal: decimal.NewFromInt(100),
				Interest:  decimal.NewFromInt(10),
			},
		},
		{
			Sequence: 3,
			DueDate:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			Due: model.CategoryAmounts{
				Principal: decimal.NewFromInt(100),
				Interest:  decimal.NewFromInt(10),
			},
		},
	}

	t.Run("splits reduced principal evenly with remainder on the last period", func(t *testing.T) {
		s := model.NewSchedule(baseline)
		asOf := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

		applied := s.Reamortize(decimal.NewFromInt(50), asOf)
		require.True(t, applied.Equal(decimal.NewFromInt(50)))

		// 300 - 50 = 250 over three periods: 83.33 + 83.33 + 83.34.
		assert.True(t, s.Periods[0].Due.Principal.Equal(decimal.RequireFromString("83.33")))
		assert.True(t, s.Periods[1].Due.Principal.Equal(decimal.RequireFromString("83.33")))
		assert.True(t, s.Periods[2].Due.Principal.Equal(decimal.RequireFromString("83.34")))

		total := decimal.Zero
		for i := range s.Periods {
			total = total.Add(s.Periods[i].Due.Principal)
		}
		assert.True(t, total.Equal(decimal.NewFromInt(250)))
	})

	t.Run("scales interest by the principal reduction ratio", func(t *testing.T) {
		s := model.NewSchedule(baseline)
		asOf := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

		s.Reamortize(decimal.NewFromInt(150), asOf)

		// Ratio 150/300: each 10 of interest becomes 5.
		for i := range s.Periods {
			assert.True(t, s.Periods[i].Due.Interest.Equal(decimal.NewFromInt(5)))
		}
	})

	t.Run("never regenerates a partially-paid period's due below its paid", func(t *testing.T) {
		s := model.NewSchedule(baseline)
		asOf := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

		_, err := s.Periods[0].ApplyAmount(valueobject.CategoryPrincipal, decimal.NewFromInt(90), asOf)
		require.NoError(t, err)

		// Outstanding principal is 10 + 100 + 100 = 210; applying 190 leaves
		// 20 to respread. Paid amounts are sunk, so the first period's due
		// stays anchored at 90 + its share instead of dropping to 6.66.
		applied := s.Reamortize(decimal.NewFromInt(190), asOf)
		require.True(t, applied.Equal(decimal.NewFromInt(190)))

		p0 := s.Periods[0]
		assert.True(t, p0.Due.Principal.Equal(decimal.RequireFromString("96.66")))
		assert.True(t, p0.Due.Principal.GreaterThanOrEqual(p0.Paid.Principal))
		assert.True(t, s.Periods[1].Due.Principal.Equal(decimal.RequireFromString("6.66")))
		assert.True(t, s.Periods[2].Due.Principal.Equal(decimal.RequireFromString("6.68")))
		assert.True(t, s.OutstandingByCategory(valueobject.CategoryPrincipal).Equal(decimal.NewFromInt(20)))
	})

	t.Run("caps at remaining principal", func(t *testing.T) {
		s := model.NewSchedule(baseline)
		asOf := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

		applied := s.Reamortize(decimal.NewFromInt(1000), asOf)
		assert.True(t, applied.Equal(decimal.NewFromInt(300)))
		assert.True(t, s.OutstandingByCategory(valueobject.CategoryPrincipal).IsZero())
	})
}
