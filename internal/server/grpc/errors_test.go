package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
		msg  string
	}{
		{"expired", &auth.StageError{Stage: auth.StageExpiryChecked, Err: common.ErrTokenExpired}, codes.Unauthenticated, MsgTokenExpired},
		{"credentials", common.ErrInvalidCredentials, codes.Unauthenticated, "invalid username or password"},
		{"invalid token", fmt.Errorf("%w: bad", common.ErrInvalidToken), codes.Unauthenticated, "invalid token"},
		{"wrong kind", common.ErrWrongTokenKind, codes.Unauthenticated, "wrong token type"},
		{"principal gone", common.ErrPrincipalNotFound, codes.Unauthenticated, "unknown principal"},
		{"disabled", common.ErrAccountDisabled, codes.PermissionDenied, "account disabled"},
		{"forbidden", common.ErrForbidden, codes.PermissionDenied, "forbidden"},
		{"not found", common.ErrorNotFound, codes.NotFound, "not found"},
		{"exists", fmt.Errorf("error creating user: %w", common.ErrAlreadyExists), codes.AlreadyExists, "username or email already taken"},
		{"cancelled", context.Canceled, codes.Canceled, "request cancelled"},
		{"internal", errors.New("pq: connection refused"), codes.Internal, "internal error"},
		{"status passes", status.Error(codes.ResourceExhausted, "slow down"), codes.ResourceExhausted, "slow down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := status.Convert(toStatus(tt.err))
			assert.Equal(t, tt.code, st.Code())
			assert.Equal(t, tt.msg, st.Message())
		})
	}

	assert.NoError(t, toStatus(nil))
}

func TestToStatus_InvalidArgumentKeepsDetail(t *testing.T) {
	err := toStatus(fmt.Errorf("%w: username must be 3 to 64 characters", common.ErrInvalidArgument))
	st := status.Convert(err)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Contains(t, st.Message(), "username must be 3 to 64 characters")
}
