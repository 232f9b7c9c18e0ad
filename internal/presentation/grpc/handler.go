package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/loan-servicing/internal/application/usecase"
	"github.com/bibbank/loan-servicing/internal/domain/model"
	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
	"github.com/bibbank/loan-servicing/internal/infrastructure/persistence/postgres"
)

// ServicingHandler exposes loan-servicing operations over gRPC.
type ServicingHandler struct {
	UnimplementedServicingServiceServer

	createLoan  *usecase.CreateLoanUseCase
	getLoan     *usecase.GetLoanUseCase
	record      *usecase.RecordTransactionUseCase
	reverse     *usecase.ReverseTransactionUseCase
	adjust      *usecase.AdjustTransactionUseCase
	applyCharge *usecase.ApplyChargeUseCase
}

// NewServicingHandler creates a handler with all use-case dependencies.
func NewServicingHandler(
	createLoan *usecase.CreateLoanUseCase,
	getLoan *usecase.GetLoanUseCase,
	record *usecase.RecordTransactionUseCase,
	reverse *usecase.ReverseTransactionUseCase,
	adjust *usecase.AdjustTransactionUseCase,
	applyCharge *usecase.ApplyChargeUseCase,
) *ServicingHandler {
	return &ServicingHandler{
		createLoan:  createLoan,
		getLoan:     getLoan,
		record:      record,
		reverse:     reverse,
		adjust:      adjust,
		applyCharge: applyCharge,
	}
}

// CreateLoan registers a loan for servicing.
func (h *ServicingHandler) CreateLoan(ctx context.Context, req *CreateLoanRequest) (*LoanResponse, error) {
	resp, err := h.createLoan.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// GetLoan retrieves a loan with its replayed schedule and ledger.
func (h *ServicingHandler) GetLoan(ctx context.Context, req *GetLoanRequest) (*LoanResponse, error) {
	resp, err := h.getLoan.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// RecordTransaction appends a monetary event to the ledger.
func (h *ServicingHandler) RecordTransaction(ctx context.Context, req *RecordTransactionRequest) (*RecordTransactionResponse, error) {
	resp, err := h.record.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// ReverseTransaction flags a ledger entry as reversed.
func (h *ServicingHandler) ReverseTransaction(ctx context.Context, req *ReverseTransactionRequest) (*LoanResponse, error) {
	resp, err := h.reverse.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// AdjustTransaction reverses a ledger entry and recreates it at a reduced amount.
func (h *ServicingHandler) AdjustTransaction(ctx context.Context, req *AdjustTransactionRequest) (*RecordTransactionResponse, error) {
	resp, err := h.adjust.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// ApplyCharge adds or waives a fee/penalty due on one period.
func (h *ServicingHandler) ApplyCharge(ctx context.Context, req *ApplyChargeRequest) (*LoanResponse, error) {
	resp, err := h.applyCharge.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// toStatus maps domain errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, postgres.ErrLoanNotFound), errors.Is(err, model.ErrTransactionNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, model.ErrInvalidAmount), errors.Is(err, model.ErrInvalidTransactionDate):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, valueobject.ErrInvalidStatusTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, postgres.ErrVersionConflict):
		return status.Error(codes.Aborted, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
