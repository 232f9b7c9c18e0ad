package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loan-servicing/internal/application/dto"
	"github.com/bibbank/loan-servicing/internal/application/usecase"
	"github.com/bibbank/loan-servicing/internal/domain/model"
	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
)

func createRequest() dto.CreateLoanRequest {
	return dto.CreateLoanRequest{
		TenantID: "tenant-001",
		Currency: "USD",
		Periods: []dto.PeriodTermsRequest{
			{DueDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Principal: decimal.NewFromInt(100), Interest: decimal.NewFromInt(10)},
			{DueDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Principal: decimal.NewFromInt(100), Interest: decimal.NewFromInt(10)},
		},
	}
}

func TestCreateLoan_Execute(t *testing.T) {
	clock := fixedClock{now: testNow, business: testBusinessDate}

	t.Run("successfully registers a loan", func(t *testing.T) {
		loanRepo := &mockLoanRepository{}
		publisher := &mockEventPublisher{}

		uc := usecase.NewCreateLoanUseCase(loanRepo, publisher, clock, valueobject.DefaultRuleTable())

		resp, err := uc.Execute(context.Background(), createRequest())

		require.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "tenant-001", resp.TenantID)
		assert.Equal(t, "ACTIVE", resp.Status)
		assert.True(t, decimal.NewFromInt(220).Equal(resp.TotalOutstanding))
		require.Len(t, resp.Periods, 2)
		assert.True(t, decimal.NewFromInt(100).Equal(resp.Periods[0].PrincipalDue))
		assert.Empty(t, resp.Transactions, "ledger starts empty")

		require.Len(t, loanRepo.savedLoans, 1)
		assert.NotEmpty(t, publisher.publishedEvents)
	})

	t.Run("fails without a tenant", func(t *testing.T) {
		loanRepo := &mockLoanRepository{}
		publisher := &mockEventPublisher{}

		uc := usecase.NewCreateLoanUseCase(loanRepo, publisher, clock, valueobject.DefaultRuleTable())

		req := createRequest()
		req.TenantID = ""
		_, err := uc.Execute(context.Background(), req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "create loan")
		assert.Empty(t, loanRepo.savedLoans)
	})

	t.Run("fails when persistence fails", func(t *testing.T) {
		loanRepo := &mockLoanRepository{
			saveFunc: func(ctx context.Context, _ model.Loan) error {
				return fmt.Errorf("connection lost")
			},
		}
		publisher := &mockEventPublisher{}

		uc := usecase.NewCreateLoanUseCase(loanRepo, publisher, clock, valueobject.DefaultRuleTable())

		_, err := uc.Execute(context.Background(), createRequest())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "save loan")
		assert.Empty(t, publisher.publishedEvents)
	})
}
