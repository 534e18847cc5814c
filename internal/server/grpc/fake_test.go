package grpc

import (
	"context"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

type issued struct {
	p    auth.Principal
	kind auth.Kind
}

// fakeUsers is an in-memory UserService. Tokens are opaque strings mapped to
// a principal and a kind.
type fakeUsers struct {
	users   map[string]*models.User
	tokens  map[string]issued
	expired map[string]bool
	err     error
	seq     int
}

func newFakeUsers() *fakeUsers {
	f := &fakeUsers{
		users:   map[string]*models.User{},
		tokens:  map[string]issued{},
		expired: map[string]bool{},
	}
	f.users["u-alice"] = &models.User{ID: "u-alice", Username: "alice", Email: "alice@example.com", PasswordHash: "correct-pw", IsActive: true, CreatedAt: time.Unix(1700000000, 0).UTC()}
	return f
}

func (f *fakeUsers) issue(p auth.Principal) *services.TokenPair {
	f.seq++
	access := "access-" + p.ID + "-" + strconv.Itoa(f.seq)
	refresh := "refresh-" + p.ID + "-" + strconv.Itoa(f.seq)
	f.tokens[access] = issued{p: p, kind: auth.KindAccess}
	f.tokens[refresh] = issued{p: p, kind: auth.KindRefresh}
	return &services.TokenPair{
		AccessToken: access, RefreshToken: refresh, TokenType: common.BearerScheme,
		ExpiresIn: 15 * time.Minute, RefreshExpiresIn: 24 * time.Hour,
	}
}

func (f *fakeUsers) byName(username string) *models.User {
	for _, u := range f.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (f *fakeUsers) Register(_ context.Context, username, email, password string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(username) < 3 {
		return nil, common.ErrInvalidArgument
	}
	if f.byName(username) != nil {
		return nil, common.ErrAlreadyExists
	}
	u := &models.User{ID: "u-" + username, Username: username, Email: email, PasswordHash: password, IsActive: true}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) Login(_ context.Context, username, password string) (*services.TokenPair, error) {
	if f.err != nil {
		return nil, f.err
	}
	u := f.byName(username)
	if u == nil || u.PasswordHash != password {
		return nil, common.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, common.ErrAccountDisabled
	}
	return f.issue(services.PrincipalOf(u)), nil
}

func (f *fakeUsers) Refresh(_ context.Context, p auth.Principal) (*services.TokenPair, error) {
	return f.issue(p), nil
}

func (f *fakeUsers) Authorize(_ context.Context, token string, want auth.Kind) (auth.Principal, error) {
	if token == "" {
		return auth.Principal{}, &auth.StageError{Stage: auth.StageReceived, Err: common.ErrInvalidToken}
	}
	if f.expired[token] {
		return auth.Principal{}, &auth.StageError{Stage: auth.StageExpiryChecked, Err: common.ErrTokenExpired}
	}
	it, ok := f.tokens[token]
	if !ok {
		return auth.Principal{}, &auth.StageError{Stage: auth.StageSignatureVerified, Err: common.ErrInvalidToken}
	}
	if err := auth.RequireKind(auth.Claims{Kind: it.kind}, want); err != nil {
		return auth.Principal{}, &auth.StageError{Stage: auth.StageKindChecked, Err: err}
	}
	u, ok := f.users[it.p.ID]
	if !ok {
		return auth.Principal{}, common.ErrPrincipalNotFound
	}
	if !u.IsActive {
		return auth.Principal{}, common.ErrAccountDisabled
	}
	return services.PrincipalOf(u), nil
}

func (f *fakeUsers) GetUser(_ context.Context, username string) (*models.User, error) {
	if u := f.byName(username); u != nil {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) ListUsers(_ context.Context, params services.ListParams) ([]*models.User, error) {
	if params.Limit < 0 {
		return nil, common.ErrInvalidArgument
	}
	var out []*models.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) UpdateUser(_ context.Context, actor auth.Principal, id string, upd services.UserUpdate) (*models.User, error) {
	if actor.ID != id {
		return nil, common.ErrForbidden
	}
	u := f.users[id]
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	return u, nil
}

func (f *fakeUsers) DeactivateUser(_ context.Context, actor auth.Principal, id string) (*models.User, error) {
	if actor.ID != id {
		return nil, common.ErrForbidden
	}
	f.users[id].IsActive = false
	return f.users[id], nil
}

func (f *fakeUsers) DeleteUser(_ context.Context, actor auth.Principal, id string) error {
	if actor.ID != id {
		return common.ErrForbidden
	}
	delete(f.users, id)
	return nil
}
