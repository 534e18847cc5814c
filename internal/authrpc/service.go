package authrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "gophauth.AuthService"

const (
	FullMethodPing           = "/" + ServiceName + "/Ping"
	FullMethodRegister       = "/" + ServiceName + "/Register"
	FullMethodLogin          = "/" + ServiceName + "/Login"
	FullMethodRefresh        = "/" + ServiceName + "/Refresh"
	FullMethodMe             = "/" + ServiceName + "/Me"
	FullMethodGetUser        = "/" + ServiceName + "/GetUser"
	FullMethodListUsers      = "/" + ServiceName + "/ListUsers"
	FullMethodUpdateUser     = "/" + ServiceName + "/UpdateUser"
	FullMethodDeactivateUser = "/" + ServiceName + "/DeactivateUser"
	FullMethodDeleteUser     = "/" + ServiceName + "/DeleteUser"
)

type AuthServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*UserResponse, error)
	Login(context.Context, *LoginRequest) (*TokenResponse, error)
	Refresh(context.Context, *RefreshRequest) (*TokenResponse, error)
	Me(context.Context, *MeRequest) (*UserResponse, error)
	GetUser(context.Context, *GetUserRequest) (*UserResponse, error)
	ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error)
	UpdateUser(context.Context, *UpdateUserRequest) (*UserResponse, error)
	DeactivateUser(context.Context, *DeactivateUserRequest) (*UserResponse, error)
	DeleteUser(context.Context, *DeleteUserRequest) (*DeleteUserResponse, error)
}

// UnimplementedAuthServiceServer answers every method with
// codes.Unimplemented. Embed it to stay compatible as methods are added.
type UnimplementedAuthServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedAuthServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented("Ping")
}
func (UnimplementedAuthServiceServer) Register(context.Context, *RegisterRequest) (*UserResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedAuthServiceServer) Login(context.Context, *LoginRequest) (*TokenResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedAuthServiceServer) Refresh(context.Context, *RefreshRequest) (*TokenResponse, error) {
	return nil, unimplemented("Refresh")
}
func (UnimplementedAuthServiceServer) Me(context.Context, *MeRequest) (*UserResponse, error) {
	return nil, unimplemented("Me")
}
func (UnimplementedAuthServiceServer) GetUser(context.Context, *GetUserRequest) (*UserResponse, error) {
	return nil, unimplemented("GetUser")
}
func (UnimplementedAuthServiceServer) ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error) {
	return nil, unimplemented("ListUsers")
}
func (UnimplementedAuthServiceServer) UpdateUser(context.Context, *UpdateUserRequest) (*UserResponse, error) {
	return nil, unimplemented("UpdateUser")
}
func (UnimplementedAuthServiceServer) DeactivateUser(context.Context, *DeactivateUserRequest) (*UserResponse, error) {
	return nil, unimplemented("DeactivateUser")
}
func (UnimplementedAuthServiceServer) DeleteUser(context.Context, *DeleteUserRequest) (*DeleteUserResponse, error) {
	return nil, unimplemented("DeleteUser")
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary adapts a typed method to grpc.MethodHandler, routing through the
// server interceptor chain when one is installed.
func unary[Req, Resp any](fullMethod string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(AuthServiceServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unary(FullMethodPing, AuthServiceServer.Ping)},
		{MethodName: "Register", Handler: unary(FullMethodRegister, AuthServiceServer.Register)},
		{MethodName: "Login", Handler: unary(FullMethodLogin, AuthServiceServer.Login)},
		{MethodName: "Refresh", Handler: unary(FullMethodRefresh, AuthServiceServer.Refresh)},
		{MethodName: "Me", Handler: unary(FullMethodMe, AuthServiceServer.Me)},
		{MethodName: "GetUser", Handler: unary(FullMethodGetUser, AuthServiceServer.GetUser)},
		{MethodName: "ListUsers", Handler: unary(FullMethodListUsers, AuthServiceServer.ListUsers)},
		{MethodName: "UpdateUser", Handler: unary(FullMethodUpdateUser, AuthServiceServer.UpdateUser)},
		{MethodName: "DeactivateUser", Handler: unary(FullMethodDeactivateUser, AuthServiceServer.DeactivateUser)},
		{MethodName: "DeleteUser", Handler: unary(FullMethodDeleteUser, AuthServiceServer.DeleteUser)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/auth",
}
