package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/gophauth/internal/authrpc"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

func toUser(u *models.User) *authrpc.User {
	return &authrpc.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

func toTokenResponse(p *services.TokenPair) *authrpc.TokenResponse {
	return &authrpc.TokenResponse{
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		TokenType:        p.TokenType,
		ExpiresIn:        int64(p.ExpiresIn.Seconds()),
		RefreshExpiresIn: int64(p.RefreshExpiresIn.Seconds()),
	}
}

func (s *GRPCServer) caller(ctx context.Context) (auth.Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		// the interceptor did not run for a protected method
		s.logger.Error(ctx, "no principal in context")
		return auth.Principal{}, status.Error(codes.Internal, "internal error")
	}
	return p, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *authrpc.PingRequest) (*authrpc.PingResponse, error) {
	return &authrpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *authrpc.RegisterRequest) (*authrpc.UserResponse, error) {
	s.logger.Info(ctx, "Registration request", "username", req.Username)

	u, err := s.users.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		s.logger.Warn(ctx, "registration failed", "username", req.Username, "error", err)
		return nil, toStatus(err)
	}

	return &authrpc.UserResponse{User: toUser(u)}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *authrpc.LoginRequest) (*authrpc.TokenResponse, error) {
	pair, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return toTokenResponse(pair), nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *authrpc.RefreshRequest) (*authrpc.TokenResponse, error) {
	p, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	pair, err := s.users.Refresh(ctx, p)
	if err != nil {
		return nil, toStatus(err)
	}
	return toTokenResponse(pair), nil
}

func (s *GRPCServer) Me(ctx context.Context, req *authrpc.MeRequest) (*authrpc.UserResponse, error) {
	p, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetUserByID(ctx, p.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &authrpc.UserResponse{User: toUser(u)}, nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *authrpc.GetUserRequest) (*authrpc.UserResponse, error) {
	if req.Username == "" {
		return nil, status.Error(codes.InvalidArgument, "username is required")
	}
	u, err := s.users.GetUser(ctx, req.Username)
	if err != nil {
		return nil, toStatus(err)
	}
	return &authrpc.UserResponse{User: toUser(u)}, nil
}

func (s *GRPCServer) ListUsers(ctx context.Context, req *authrpc.ListUsersRequest) (*authrpc.ListUsersResponse, error) {
	list, err := s.users.ListUsers(ctx, services.ListParams{
		Order:  req.Order,
		Offset: int(req.Offset),
		Limit:  int(req.Limit),
	})
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &authrpc.ListUsersResponse{Users: make([]*authrpc.User, 0, len(list))}
	for _, u := range list {
		resp.Users = append(resp.Users, toUser(u))
	}
	return resp, nil
}

func (s *GRPCServer) UpdateUser(ctx context.Context, req *authrpc.UpdateUserRequest) (*authrpc.UserResponse, error) {
	p, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.UpdateUser(ctx, p, req.ID, services.UserUpdate{Username: req.Username, Email: req.Email})
	if err != nil {
		return nil, toStatus(err)
	}
	return &authrpc.UserResponse{User: toUser(u)}, nil
}

func (s *GRPCServer) DeactivateUser(ctx context.Context, req *authrpc.DeactivateUserRequest) (*authrpc.UserResponse, error) {
	p, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.DeactivateUser(ctx, p, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &authrpc.UserResponse{User: toUser(u)}, nil
}

func (s *GRPCServer) DeleteUser(ctx context.Context, req *authrpc.DeleteUserRequest) (*authrpc.DeleteUserResponse, error) {
	p, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.users.DeleteUser(ctx, p, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &authrpc.DeleteUserResponse{}, nil
}
