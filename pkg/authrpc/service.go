// Package authrpc declares the auth delegation RPC: package "auth", service
// AuthService, unary method Authenticate. Messages travel as
// google.protobuf.Struct values so no generated code is needed:
//
//	request:  {"token": string}
//	response: {"subjectId": string, "email": string}
package authrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName        = "auth.AuthService"
	AuthenticateMethod = "/auth.AuthService/Authenticate"
)

// AuthenticateRequest carries the credential to verify.
type AuthenticateRequest struct {
	Token string
}

// AuthenticateResponse describes the verified subject.
type AuthenticateResponse struct {
	SubjectID string
	Email     string
}

// AuthServiceServer is implemented by the identity service.
type AuthServiceServer interface {
	Authenticate(ctx context.Context, req *AuthenticateRequest) (*AuthenticateResponse, error)
}

func (r *AuthenticateRequest) toStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"token": structpb.NewStringValue(r.Token),
	}}
}

func requestFromStruct(s *structpb.Struct) *AuthenticateRequest {
	return &AuthenticateRequest{Token: stringField(s, "token")}
}

func (r *AuthenticateResponse) toStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"subjectId": structpb.NewStringValue(r.SubjectID),
		"email":     structpb.NewStringValue(r.Email),
	}}
}

func responseFromStruct(s *structpb.Struct) *AuthenticateResponse {
	return &AuthenticateResponse{
		SubjectID: stringField(s, "subjectId"),
		Email:     stringField(s, "email"),
	}
}

// stringField returns "" for missing or non-string fields.
func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[key].GetStringValue()
}

func authenticateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	call := func(ctx context.Context, req any) (any, error) {
		resp, err := srv.(AuthServiceServer).Authenticate(ctx, requestFromStruct(req.(*structpb.Struct)))
		if err != nil {
			return nil, err
		}
		return resp.toStruct(), nil
	}

	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AuthenticateMethod,
	}
	return interceptor(ctx, in, info, call)
}

// ServiceDesc describes auth.AuthService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Authenticate",
			Handler:    authenticateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "auth.proto",
}

// RegisterAuthServiceServer registers srv on s.
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
