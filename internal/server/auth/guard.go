package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Stage names a step of bearer-token authorization. Steps run in the order
// declared here and the first failure stops the pipeline.
type Stage string

const (
	StageReceived          Stage = "received"
	StageSignatureVerified Stage = "signature_verified"
	StageExpiryChecked     Stage = "expiry_checked"
	StageKindChecked       Stage = "kind_checked"
	StagePrincipalResolved Stage = "principal_resolved"
	StageActiveChecked     Stage = "active_checked"
	StageAuthorized        Stage = "authorized"
)

// StageError records the stage a token was rejected at.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// RequireKind fails with common.ErrWrongTokenKind unless claims are of kind
// want.
func RequireKind(claims Claims, want Kind) error {
	if claims.Kind != want {
		return fmt.Errorf("%w: got %q, want %q", common.ErrWrongTokenKind, claims.Kind, want)
	}
	return nil
}

// ResolvePrincipal loads the current state of the token's subject rather
// than trusting the snapshot inside the token.
func ResolvePrincipal(ctx context.Context, claims Claims, lookup UserLookup) (Principal, error) {
	acct, err := lookup.FindByID(ctx, claims.Subject)
	if err != nil {
		return Principal{}, err
	}
	if acct == nil {
		return Principal{}, common.ErrPrincipalNotFound
	}
	return acct.Principal, nil
}

// Guard runs the bearer-token pipeline for protected calls.
type Guard struct {
	codec  *TokenCodec
	lookup UserLookup
}

func NewGuard(codec *TokenCodec, lookup UserLookup) *Guard {
	return &Guard{codec: codec, lookup: lookup}
}

// Authorize takes token from received to authorized. Failures are returned
// as *StageError; errors.Is sees the underlying taxonomy error. Lookup
// failures other than absence come back wrapped but otherwise unchanged.
func (g *Guard) Authorize(ctx context.Context, token string, want Kind, requireActive bool) (Principal, Claims, error) {
	if token == "" {
		return Principal{}, Claims{}, &StageError{Stage: StageReceived, Err: fmt.Errorf("%w: no token", common.ErrInvalidToken)}
	}

	// Decode verifies the signature before it looks at exp, so an expired
	// token has already passed the signature stage.
	claims, err := g.codec.Decode(token)
	if err != nil {
		stage := StageSignatureVerified
		if errors.Is(err, common.ErrTokenExpired) {
			stage = StageExpiryChecked
		}
		return Principal{}, Claims{}, &StageError{Stage: stage, Err: err}
	}

	if err := RequireKind(claims, want); err != nil {
		return Principal{}, claims, &StageError{Stage: StageKindChecked, Err: err}
	}

	p, err := ResolvePrincipal(ctx, claims, g.lookup)
	if err != nil {
		return Principal{}, claims, &StageError{Stage: StagePrincipalResolved, Err: err}
	}

	if requireActive && !p.IsActive {
		return Principal{}, claims, &StageError{Stage: StageActiveChecked, Err: common.ErrAccountDisabled}
	}

	return p, claims, nil
}
