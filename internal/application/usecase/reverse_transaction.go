package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/loan-servicing/internal/application/dto"
	"github.com/bibbank/loan-servicing/internal/domain/model"
	"github.com/bibbank/loan-servicing/internal/domain/port"
)

// ReverseTransactionUseCase flags a ledger entry as reversed and replays the
// remaining history.
type ReverseTransactionUseCase struct {
	loanRepo   port.LoanRepository
	publisher  port.EventPublisher
	recomputer model.Recomputer
	clock      port.Clock
	locks      *LoanLocker
}

// NewReverseTransactionUseCase wires dependencies.
func NewReverseTransactionUseCase(
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	recomputer model.Recomputer,
	clock port.Clock,
	locks *LoanLocker,
) *ReverseTransactionUseCase {
	return &ReverseTransactionUseCase{
		loanRepo:   loanRepo,
		publisher:  publisher,
		recomputer: recomputer,
		clock:      clock,
		locks:      locks,
	}
}

// Execute reverses the transaction.
func (uc *ReverseTransactionUseCase) Execute(
	ctx context.Context,
	req dto.ReverseTransactionRequest,
) (dto.LoanResponse, error) {
	now := uc.clock.Now().UTC()

	unlock := uc.locks.Lock(req.LoanID)
	defer unlock()

	// 1. Retrieve the loan.
	loan, err := uc.loanRepo.FindByID(ctx, req.TenantID, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}

	// 2. Flag and replay.
	loan, err = loan.ReverseTransaction(uc.recomputer, req.TransactionID, now)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("reverse transaction: %w", err)
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
