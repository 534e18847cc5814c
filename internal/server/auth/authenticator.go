package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Both wrap common.ErrInvalidCredentials and are only told apart in logs.
var (
	errUnknownUser      = fmt.Errorf("%w: unknown user", common.ErrInvalidCredentials)
	errPasswordMismatch = fmt.Errorf("%w: password mismatch", common.ErrInvalidCredentials)
)

// IsUnknownUser reports whether err came from a login for a username that
// does not exist. Intended for server-side logging only.
func IsUnknownUser(err error) bool {
	return errors.Is(err, errUnknownUser)
}

// Authenticator checks a username and password against the user store.
type Authenticator struct {
	lookup UserLookup
	hasher PasswordHasher
}

func NewAuthenticator(lookup UserLookup, hasher PasswordHasher) *Authenticator {
	return &Authenticator{lookup: lookup, hasher: hasher}
}

// Authenticate returns the account's principal when the password matches
// and the account is active. Unknown usernames still pay for a full
// verification so response times do not reveal which usernames exist.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (Principal, error) {
	acct, err := a.lookup.FindByUsername(ctx, username)
	if err != nil {
		return Principal{}, err
	}

	if acct == nil {
		if _, err := a.hasher.Verify(ctx, password, a.hasher.DummyHash()); err != nil {
			return Principal{}, err
		}
		return Principal{}, errUnknownUser
	}

	ok, err := a.hasher.Verify(ctx, password, acct.PasswordHash)
	if err != nil {
		return Principal{}, err
	}
	if !ok {
		return Principal{}, errPasswordMismatch
	}

	if !acct.IsActive {
		return Principal{}, common.ErrAccountDisabled
	}

	return acct.Principal, nil
}
