package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/loan-servicing/internal/application/dto"
	"github.com/bibbank/loan-servicing/internal/domain/port"
)

// GetLoanUseCase retrieves a loan with its replayed schedule and ledger.
type GetLoanUseCase struct {
	loanRepo port.LoanRepository
}

// NewGetLoanUseCase wires dependencies.
func NewGetLoanUseCase(loanRepo port.LoanRepository) *GetLoanUseCase {
	return &GetLoanUseCase{loanRepo: loanRepo}
}

// Execute retrieves the loan.
func (uc *GetLoanUseCase) Execute(
	ctx context.Context,
	req dto.GetLoanRequest,
) (dto.LoanResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, req.TenantID, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}
	return dto.FromLoan(loan), nil
}
