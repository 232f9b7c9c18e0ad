package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/loan-servicing/internal/application/dto"
	"github.com/bibbank/loan-servicing/internal/domain/model"
	"github.com/bibbank/loan-servicing/internal/domain/port"
)

// AdjustTransactionUseCase corrects a mis-keyed ledger entry: the original is
// reversed and a replacement at the reduced amount is appended, with one
// replay over the final ledger.
type AdjustTransactionUseCase struct {
	loanRepo   port.LoanRepository
	publisher  port.EventPublisher
	recomputer model.Recomputer
	clock      port.Clock
	locks      *LoanLocker
}

// NewAdjustTransactionUseCase wires dependencies.
func NewAdjustTransactionUseCase(
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	recomputer model.Recomputer,
	clock port.Clock,
	locks *LoanLocker,
) *AdjustTransactionUseCase {
	return &AdjustTransactionUseCase{
		loanRepo:   loanRepo,
		publisher:  publisher,
		recomputer: recomputer,
		clock:      clock,
		locks:      locks,
	}
}

// Execute adjusts the transaction.
func (uc *AdjustTransactionUseCase) Execute(
	ctx context.Context,
	req dto.AdjustTransactionRequest,
) (dto.RecordTransactionResponse, error) {
	now := uc.clock.Now().UTC()

	unlock := uc.locks.Lock(req.LoanID)
	defer unlock()

	// 1. Retrieve the loan.
	loan, err := uc.loanRepo.FindByID(ctx, req.TenantID, req.LoanID)
	if err != nil {
		return dto.RecordTransactionResponse{}, fmt.Errorf("find loan: %w", err)
	}

	// 2. Reverse and recreate, then replay.
	loan, recorded, err := loan.AdjustTransaction(uc.recomputer, req.TransactionID, req.NewAmount, req.NewDate, now)
	if err != nil {
		return dto.RecordTransactionResponse{}, fmt.Errorf("adjust transaction: %w", err)
	}

	// 3. Persist updated loan.
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.RecordTransactionResponse{}, fmt.Errorf("save loan: %w", err)
	}

	// 4. Publish events.
	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		return dto.RecordTransactionResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return toRecordResponse(loan, recorded), nil
}
