package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/loan-servicing/internal/application/dto"
	"github.com/bibbank/loan-servicing/internal/domain/model"
	"github.com/bibbank/loan-servicing/internal/domain/port"
	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
)

// CreateLoanUseCase registers a loan for servicing from its product-generated
// repayment plan.
type CreateLoanUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
	clock     port.Clock
	rules     valueobject.RuleTable
}

// NewCreateLoanUseCase wires dependencies.
func NewCreateLoanUseCase(
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	clock port.Clock,
	rules valueobject.RuleTable,
) *CreateLoanUseCase {
	return &CreateLoanUseCase{
		loanRepo:  loanRepo,
		publisher: publisher,
		clock:     clock,
		rules:     rules,
	}
}

// Execute creates the loan with an empty ledger.
func (uc *CreateLoanUseCase) Execute(
	ctx context.Context,
	req dto.CreateLoanRequest,
) (dto.LoanResponse, error) {
	now := uc.clock.Now().UTC()

	// 1. Translate the requested plan into baseline periods.
	terms := make([]model.PeriodTerms, 0, len(req.Periods))
	for _, p := range req.Periods {
		terms = append(terms, model.PeriodTerms{
			DueDate:     p.DueDate,
			Principal:   p.Principal,
			Interest:    p.Interest,
			Fee:         p.Fee,
			Penalty:     p.Penalty,
			DownPayment: p.DownPayment,
		})
	}
	baseline := model.GenerateBaselineSchedule(terms)

	// 2. Create the aggregate.
	loan, err := model.NewLoan(req.TenantID, req.Currency, baseline, uc.rules, now)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("create loan: %w", err)
	}

	// 3. Persist.
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	// 4. Publish events.
	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return dto.FromLoan(loan), nil
}
