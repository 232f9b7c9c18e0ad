package grpc

// proto.go defines the gRPC server interface derived from bib/servicing/v1/servicing.proto.
// This file serves as a stand-in for buf-generated code. Once `buf generate` is run,
// replace this file with the import from github.com/bibbank/bib/api/gen/go/bib/servicing/v1.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/loan-servicing/internal/application/dto"
)

// Wire messages ride the registered JSON codec, so the DTO shapes are the
// message shapes.
type (
	CreateLoanRequest          = dto.CreateLoanRequest
	GetLoanRequest             = dto.GetLoanRequest
	RecordTransactionRequest   = dto.RecordTransactionRequest
	ReverseTransactionRequest  = dto.ReverseTransactionRequest
	AdjustTransactionRequest   = dto.AdjustTransactionRequest
	ApplyChargeRequest         = dto.ApplyChargeRequest
	LoanResponse               = dto.LoanResponse
	RecordTransactionResponse  = dto.RecordTransactionResponse
)

// ServicingServiceServer is the server API for ServicingService.
// It mirrors the proto-generated interface from bib.servicing.v1.ServicingService.
type ServicingServiceServer interface {
	CreateLoan(context.Context, *CreateLoanRequest) (*LoanResponse, error)
	GetLoan(context.Context, *GetLoanRequest) (*LoanResponse, error)
	RecordTransaction(context.Context, *RecordTransactionRequest) (*RecordTransactionResponse, error)
	ReverseTransaction(context.Context, *ReverseTransactionRequest) (*LoanResponse, error)
	AdjustTransaction(context.Context, *AdjustTransactionRequest) (*RecordTransactionResponse, error)
	ApplyCharge(context.Context, *ApplyChargeRequest) (*LoanResponse, error)
	mustEmbedUnimplementedServicingServiceServer()
}

// UnimplementedServicingServiceServer provides forward-compatible default implementations.
type UnimplementedServicingServiceServer struct{}

func (UnimplementedServicingServiceServer) CreateLoan(context.Context, *CreateLoanRequest) (*LoanResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateLoan not implemented")
}
func (UnimplementedServicingServiceServer) GetLoan(context.Context, *GetLoanRequest) (*LoanResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetLoan not implemented")
}
func (UnimplementedServicingServiceServer) RecordTransaction(context.Context, *RecordTransactionRequest) (*RecordTransactionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RecordTransaction not implemented")
}
func (UnimplementedServicingServiceServer) ReverseTransaction(context.Context, *ReverseTransactionRequest) (*LoanResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ReverseTransaction not implemented")
}
func (UnimplementedServicingServiceServer) AdjustTransaction(context.Context, *AdjustTransactionRequest) (*RecordTransactionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AdjustTransaction not implemented")
}
func (UnimplementedServicingServiceServer) ApplyCharge(context.Context, *ApplyChargeRequest) (*LoanResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ApplyCharge not implemented")
}
func (UnimplementedServicingServiceServer) mustEmbedUnimplementedServicingServiceServer() {}

// RegisterServicingServiceServer registers the ServicingServiceServer with the gRPC server.
func RegisterServicingServiceServer(s *grpclib.Server, srv ServicingServiceServer) {
	s.RegisterService(&_ServicingService_serviceDesc, srv) //nolint:revive // gRPC handler registration
}

//nolint:revive // gRPC handler registration
var _ServicingService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: "bib.servicing.v1.ServicingService",
	HandlerType: (*ServicingServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "CreateLoan", Handler: _ServicingService_CreateLoan_Handler},                 //nolint:revive // gRPC handler registration
		{MethodName: "GetLoan", Handler: _ServicingService_GetLoan_Handler},                       //nolint:revive // gRPC handler registration
		{MethodName: "RecordTransaction", Handler: _ServicingService_RecordTransaction_Handler},   //nolint:revive // gRPC handler registration
		{MethodName: "ReverseTransaction", Handler: _ServicingService_ReverseTransaction_Handler}, //nolint:revive // gRPC handler registration
		{MethodName: "AdjustTransaction", Handler: _ServicingService_AdjustTransaction_Handler},   //nolint:revive // gRPC handler registration
		{MethodName: "ApplyCharge", Handler: _ServicingService_ApplyCharge_Handler},               //nolint:revive // gRPC handler registration
	},
	Streams: []grpclib.StreamDesc{},
}

//nolint:revive,errcheck // gRPC handler registration
func _ServicingService_CreateLoan_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreateLoanRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ServicingServiceServer).CreateLoan(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/bib.servicing.v1.ServicingService/CreateLoan",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ServicingServiceServer).CreateLoan(ctx, req.(*CreateLoanRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _ServicingService_GetLoan_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetLoanRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ServicingServiceServer).GetLoan(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/bib.servicing.v1.ServicingService/GetLoan",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ServicingServiceServer).GetLoan(ctx, req.(*GetLoanRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _ServicingService_RecordTransaction_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(RecordTransactionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ServicingServiceServer).RecordTransaction(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/bib.servicing.v1.ServicingService/RecordTransaction",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ServicingServiceServer).RecordTransaction(ctx, req.(*RecordTransactionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _ServicingService_ReverseTransaction_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReverseTransactionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ServicingServiceServer).ReverseTransaction(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/bib.servicing.v1.ServicingService/ReverseTransaction",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ServicingServiceServer).ReverseTransaction(ctx, req.(*ReverseTransactionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _ServicingService_AdjustTransaction_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(AdjustTransactionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ServicingServiceServer).AdjustTransaction(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/bib.servicing.v1.ServicingService/AdjustTransaction",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ServicingServiceServer).AdjustTransaction(ctx, req.(*AdjustTransactionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _ServicingService_ApplyCharge_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(ApplyChargeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ServicingServiceServer).ApplyCharge(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/bib.servicing.v1.ServicingService/ApplyCharge",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ServicingServiceServer).ApplyCharge(ctx, req.(*ApplyChargeRequest))
	}
	return interceptor(ctx, in, info, handler)
}
