package grpc

import (
	"context"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/gophauth/internal/authrpc"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
)

type ctxKey string

const principalKey ctxKey = "principal"

// methodKinds lists the protected methods and the token kind each accepts.
// Methods not listed are public.
var methodKinds = map[string]auth.Kind{
	authrpc.FullMethodRefresh:        auth.KindRefresh,
	authrpc.FullMethodMe:             auth.KindAccess,
	authrpc.FullMethodGetUser:        auth.KindAccess,
	authrpc.FullMethodListUsers:      auth.KindAccess,
	authrpc.FullMethodUpdateUser:     auth.KindAccess,
	authrpc.FullMethodDeactivateUser: auth.KindAccess,
	authrpc.FullMethodDeleteUser:     auth.KindAccess,
}

func withPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the caller resolved by the auth interceptor.
func PrincipalFromContext(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(auth.Principal)
	return p, ok
}

// bearerToken extracts the token from "authorization: Bearer <token>".
// Anything else yields "".
func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AuthorizationHeaderName)
	if len(values) == 0 {
		return ""
	}
	scheme, token, found := strings.Cut(values[0], " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	want, protected := methodKinds[info.FullMethod]
	if !protected {
		return handler(ctx, req)
	}

	token := bearerToken(ctx)
	p, err := s.users.Authorize(ctx, token, want)
	if err != nil {
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}
		return nil, toStatus(err)
	}

	return handler(withPrincipal(ctx, p), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	if code == codes.Internal || code == codes.Unknown {
		s.logger.Error(ctx, "request failed", args...)
	} else {
		s.logger.Debug(ctx, "request", args...)
	}
	return resp, err
}
