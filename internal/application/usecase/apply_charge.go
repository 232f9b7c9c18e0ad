package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/loan-servicing/internal/application/dto"
	"github.com/bibbank/loan-servicing/internal/domain/model"
	"github.com/bibbank/loan-servicing/internal/domain/port"
	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
)

// ApplyChargeUseCase adds or waives a fee/penalty due amount on one period.
// The charge itself is computed upstream; here it only lands on the baseline
// and triggers a replay.
type ApplyChargeUseCase struct {
	loanRepo   port.LoanRepository
	publisher  port.EventPublisher
	recomputer model.Recomputer
	clock      port.Clock
	locks      *LoanLocker
}

// NewApplyChargeUseCase wires dependencies.
func NewApplyChargeUseCase(
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	recomputer model.Recomputer,
	clock port.Clock,
	locks *LoanLocker,
) *ApplyChargeUseCase {
	return &ApplyChargeUseCase{
		loanRepo:   loanRepo,
		publisher:  publisher,
		recomputer: recomputer,
		clock:      clock,
		locks:      locks,
	}
}

// Execute applies or waives the charge depending on req.Waive.
func (uc *ApplyChargeUseCase) Execute(
	ctx context.Context,
	req dto.ApplyChargeRequest,
) (dto.LoanResponse, error) {
	now := uc.clock.Now().UTC()

	category, err := valueobject.ParseCategory(req.Category)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("parse category: %w", err)
	}

	unlock := uc.locks.Lock(req.LoanID)
	defer unlock()

	// 1. Retrieve the loan.
	loan, err := uc.loanRepo.FindByID(ctx, req.TenantID, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}

	// 2. Mutate the baseline and replay.
	if req.Waive {
		loan, err = loan.WaiveCharge(uc.recomputer, req.PeriodSequence, category, req.Amount, now)
	} else {
		loan, err = loan.ApplyCharge(uc.recomputer, req.PeriodSequence, category, req.Amount, now)
	}
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("apply charge: %w", err)
	}

	// 3. Persist updated loan.
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	// 4. Publish events.
	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return dto.FromLoan(loan), nil
}
