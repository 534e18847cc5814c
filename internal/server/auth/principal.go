// Package auth verifies credentials and issues and checks the signed bearer
// tokens other services trust for identity.
package auth

import "context"

// Kind discriminates access tokens from refresh tokens. The values are
// embedded in the "type" claim.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

func (k Kind) Valid() bool {
	return k == KindAccess || k == KindRefresh
}

// Principal is the identity a credential check or a token resolves to.
type Principal struct {
	ID       string
	Username string
	Email    string
	IsActive bool
}

// Account is a Principal together with its stored password hash.
type Account struct {
	Principal
	PasswordHash string
}

// UserLookup resolves accounts from the user store. Both methods return
// (nil, nil) when nothing matches; any other error is passed through
// untouched.
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
}
