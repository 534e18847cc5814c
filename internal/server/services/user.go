// Package services contains server-side business logic. UserService handles
// registration, login, stateless token refresh, bearer-token authorization
// and self-service account management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

const (
	minUsernameLen   = 3
	maxUsernameLen   = 64
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	ExpiresIn        time.Duration
	RefreshExpiresIn time.Duration
}

// ListParams pages through users. Zero values mean order by id and the
// default limit.
type ListParams struct {
	Order  string
	Offset int
	Limit  int
}

// UserUpdate carries the fields to change; nil fields are left as they are.
type UserUpdate struct {
	Username *string
	Email    *string
}

type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	hasher        auth.PasswordHasher
	codec         *auth.TokenCodec
	authenticator *auth.Authenticator
	guard         *auth.Guard
	metrics       *metrics.Metrics
	logger        logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher, codec *auth.TokenCodec,
	mt *metrics.Metrics, l logging.Logger) *UserService {
	s := &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		codec:       codec,
		metrics:     mt,
		logger:      l.With("module", "user_service"),
	}
	lookup := s.UserLookup()
	s.authenticator = auth.NewAuthenticator(lookup, hasher)
	s.guard = auth.NewGuard(codec, lookup)
	return s
}

// Register creates an active account. Duplicate usernames or emails fail
// with common.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrInvalidArgument)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Login authenticates the credentials and issues a fresh token pair.
func (s *UserService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	p, err := s.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidCredentials):
			s.metrics.Login(metrics.ResultInvalidCredentials)
			s.logger.Warn(ctx, "login rejected", "username", username, "unknown_user", auth.IsUnknownUser(err))
			return nil, common.ErrInvalidCredentials
		case errors.Is(err, common.ErrAccountDisabled):
			s.metrics.Login(metrics.ResultDisabled)
			s.logger.Warn(ctx, "login for disabled account", "username", username)
			return nil, err
		default:
			s.metrics.Login(metrics.ResultError)
			return nil, fmt.Errorf("login: %w", err)
		}
	}

	s.metrics.Login(metrics.ResultSuccess)
	return s.issuePair(p)
}

// Refresh issues a new pair for a principal that presented a valid refresh
// token. Earlier tokens stay valid until they expire.
func (s *UserService) Refresh(ctx context.Context, p auth.Principal) (*TokenPair, error) {
	s.logger.Debug(ctx, "refreshing tokens", "user_id", p.ID)
	return s.issuePair(p)
}

// Authorize runs the bearer-token pipeline for a call that needs a token of
// kind want and an active account.
func (s *UserService) Authorize(ctx context.Context, token string, want auth.Kind) (auth.Principal, error) {
	p, _, err := s.guard.Authorize(ctx, token, want, true)
	if err != nil {
		var se *auth.StageError
		stage := "unknown"
		if errors.As(err, &se) {
			stage = string(se.Stage)
		}

		result := metrics.ResultRejected
		if !isAuthFailure(err) {
			result = metrics.ResultError
		}
		s.metrics.TokenCheck(string(want), stage, result)
		s.logger.Warn(ctx, "token rejected", "kind", want, "stage", stage, "error", err)
		return auth.Principal{}, err
	}

	s.metrics.TokenCheck(string(want), string(auth.StageAuthorized), metrics.ResultSuccess)
	return p, nil
}

func (s *UserService) GetUser(ctx context.Context, username string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByUsername(ctx, username)
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, params ListParams) ([]*models.User, error) {
	if params.Order == "" {
		params.Order = "id"
	}
	if _, ok := users.OrderColumns[params.Order]; !ok {
		return nil, fmt.Errorf("%w: cannot order by %q", common.ErrInvalidArgument, params.Order)
	}
	if params.Offset < 0 {
		return nil, fmt.Errorf("%w: offset can't be less than 0", common.ErrInvalidArgument)
	}
	if params.Limit == 0 {
		params.Limit = DefaultListLimit
	}
	if params.Limit < 1 || params.Limit > MaxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", common.ErrInvalidArgument, MaxListLimit)
	}

	return s.repomanager.Users(s.db).List(ctx, users.ListQuery{
		Order:  params.Order,
		Offset: params.Offset,
		Limit:  params.Limit,
	})
}

// UpdateUser changes the actor's own username and/or email.
func (s *UserService) UpdateUser(ctx context.Context, actor auth.Principal, id string, upd UserUpdate) (*models.User, error) {
	if upd.Username != nil {
		if err := validateUsername(*upd.Username); err != nil {
			return nil, err
		}
	}
	if upd.Email != nil {
		if err := validateEmail(*upd.Email); err != nil {
			return nil, err
		}
	}

	return s.modifySelf(ctx, actor, id, func(u *models.User) {
		if upd.Username != nil {
			u.Username = *upd.Username
		}
		if upd.Email != nil {
			u.Email = *upd.Email
		}
	})
}

// DeactivateUser disables the actor's own account. Tokens already issued
// stop working at their next check because authorization re-reads the flag.
func (s *UserService) DeactivateUser(ctx context.Context, actor auth.Principal, id string) (*models.User, error) {
	u, err := s.modifySelf(ctx, actor, id, func(u *models.User) { u.IsActive = false })
	if err == nil {
		s.logger.Info(ctx, "user deactivated", "user_id", id)
	}
	return u, err
}

func (s *UserService) DeleteUser(ctx context.Context, actor auth.Principal, id string) error {
	if actor.ID != id {
		return common.ErrForbidden
	}
	if err := s.repomanager.Users(s.db).Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}

func (s *UserService) modifySelf(ctx context.Context, actor auth.Principal, id string, apply func(*models.User)) (*models.User, error) {
	if actor.ID != id {
		return nil, common.ErrForbidden
	}

	var user *models.User
	err := dbx.WithTx(ctx, s.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		apply(u)
		if err := repo.Update(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UserLookup exposes the user store to the auth package.
func (s *UserService) UserLookup() auth.UserLookup {
	return userLookup{s: s}
}

type userLookup struct {
	s *UserService
}

func (l userLookup) FindByUsername(ctx context.Context, username string) (*auth.Account, error) {
	return toAccount(l.s.repomanager.Users(l.s.db).GetByUsername(ctx, username))
}

func (l userLookup) FindByID(ctx context.Context, id string) (*auth.Account, error) {
	return toAccount(l.s.repomanager.Users(l.s.db).GetByID(ctx, id))
}

func toAccount(u *models.User, err error) (*auth.Account, error) {
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &auth.Account{
		Principal:    PrincipalOf(u),
		PasswordHash: u.PasswordHash,
	}, nil
}

func PrincipalOf(u *models.User) auth.Principal {
	return auth.Principal{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsActive: u.IsActive,
	}
}

func (s *UserService) issuePair(p auth.Principal) (*TokenPair, error) {
	access, ac, err := s.codec.IssueAccess(p)
	if err != nil {
		return nil, fmt.Errorf("error issuing access token: %w", err)
	}
	refresh, rc, err := s.codec.IssueRefresh(p)
	if err != nil {
		return nil, fmt.Errorf("error issuing refresh token: %w", err)
	}
	s.metrics.TokenIssued(string(auth.KindAccess))
	s.metrics.TokenIssued(string(auth.KindRefresh))

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        common.BearerScheme,
		AccessExpiresAt:  ac.ExpiresAt,
		RefreshExpiresAt: rc.ExpiresAt,
		ExpiresIn:        ac.ExpiresAt.Sub(ac.IssuedAt),
		RefreshExpiresIn: rc.ExpiresAt.Sub(rc.IssuedAt),
	}, nil
}

func isAuthFailure(err error) bool {
	for _, target := range []error{
		common.ErrInvalidToken,
		common.ErrWrongTokenKind,
		common.ErrPrincipalNotFound,
		common.ErrAccountDisabled,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLen || n > maxUsernameLen {
		return fmt.Errorf("%w: username must be %d to %d characters", common.ErrInvalidArgument, minUsernameLen, maxUsernameLen)
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: username must not contain spaces", common.ErrInvalidArgument)
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email", common.ErrInvalidArgument)
	}
	return nil
}
