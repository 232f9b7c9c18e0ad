package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/loan-servicing/internal/application/dto"
	"github.com/bibbank/loan-servicing/internal/domain/model"
	"github.com/bibbank/loan-servicing/internal/domain/port"
	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
)

// RecordTransactionUseCase appends one monetary event to a loan's ledger and
// replays the full history.
type RecordTransactionUseCase struct {
	loanRepo   port.LoanRepository
	publisher  port.EventPublisher
	recomputer model.Recomputer
	clock      port.Clock
	locks      *LoanLocker
}

// NewRecordTransactionUseCase wires dependencies.
func NewRecordTransactionUseCase(
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	recomputer model.Recomputer,
	clock port.Clock,
	locks *LoanLocker,
) *RecordTransactionUseCase {
	return &RecordTransactionUseCase{
		loanRepo:   loanRepo,
		publisher:  publisher,
		recomputer: recomputer,
		clock:      clock,
		locks:      locks,
	}
}

// Execute records the transaction. Requests carrying an external ID that was
// already recorded on the loan return the original entry unchanged, so
// payment-gateway retries stay idempotent.
func (uc *RecordTransactionUseCase) Execute(
	ctx context.Context,
	req dto.RecordTransactionRequest,
) (dto.RecordTransactionResponse, error) {
	now := uc.clock.Now().UTC()

	txType, err := valueobject.ParseTransactionType(req.Type)
	if err != nil {
		return dto.RecordTransactionResponse{}, fmt.Errorf("parse transaction type: %w", err)
	}

	unlock := uc.locks.Lock(req.LoanID)
	defer unlock()

	// 1. Retrieve the loan.
	loan, err := uc.loanRepo.FindByID(ctx, req.TenantID, req.LoanID)
	if err != nil {
		return dto.RecordTransactionResponse{}, fmt.Errorf("find loan: %w", err)
	}

	// 2. Short-circuit retries on the external ID.
	if req.ExternalID != "" {
		for _, existing := range loan.Ledger() {
			if existing.ExternalID == req.ExternalID && !existing.Reversed {
				return toRecordResponse(loan, existing), nil
			}
		}
	}

	// 3. Append and replay. Charge-offs go through the aggregate's lifecycle
	// guard so a written-off loan cannot be written off twice.
	var recorded model.Transaction
	if txType == valueobject.TypeChargeOff {
		loan, err = loan.ChargeOff(uc.recomputer, req.Date, now)
		if err != nil {
			return dto.RecordTransactionResponse{}, fmt.Errorf("record transaction: %w", err)
		}
		ledger := loan.Ledger()
		recorded = ledger[len(ledger)-1]
	} else {
		loan, recorded, err = loan.RecordTransaction(
			uc.recomputer, txType, req.Date, req.Amount, req.ExternalID, uc.clock.BusinessDate(), now,
		)
		if err != nil {
			return dto.RecordTransactionResponse{}, fmt.Errorf("record transaction: %w", err)
		}
	}

	// 4. Persist updated loan.
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.RecordTransactionResponse{}, fmt.Errorf("save loan: %w", err)
	}

	// 5. Publish events.
	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		return dto.RecordTransactionResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return toRecordResponse(loan, recorded), nil
}

func toRecordResponse(loan model.Loan, tx model.Transaction) dto.RecordTransactionResponse {
	return dto.RecordTransactionResponse{
		LoanID:           loan.ID(),
		Transaction:      dto.FromTransaction(tx),
		LoanStatus:       loan.Status().String(),
		TotalOutstanding: loan.Summary().TotalOutstanding,
		Overpayment:      loan.Overpayment(),
	}
}
