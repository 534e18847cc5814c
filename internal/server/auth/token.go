package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Claims is the decoded content of a token. Username, Email and IsActive are
// only carried by access tokens; refresh tokens carry the subject alone.
type Claims struct {
	Subject   string
	Kind      Kind
	IssuedAt  time.Time
	ExpiresAt time.Time
	Username  string
	Email     string
	IsActive  bool
}

// wireClaims is the signed payload. Field order fixes the JSON member order:
// sub, type, iat, exp, then the access-only snapshot.
type wireClaims struct {
	Subject   string           `json:"sub"`
	Type      Kind             `json:"type"`
	IssuedAt  *jwt.NumericDate `json:"iat"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
	Username  string           `json:"username,omitempty"`
	Email     string           `json:"email,omitempty"`
	IsActive  *bool            `json:"is_active,omitempty"`
}

func (w *wireClaims) GetExpirationTime() (*jwt.NumericDate, error) { return w.ExpiresAt, nil }
func (w *wireClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return w.IssuedAt, nil }
func (w *wireClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (w *wireClaims) GetIssuer() (string, error)                   { return "", nil }
func (w *wireClaims) GetSubject() (string, error)                  { return w.Subject, nil }
func (w *wireClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// TokenConfig is the signing secret and per-kind lifetimes.
type TokenConfig struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenCodec signs and verifies HS256 tokens with a single secret fixed at
// construction.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type TokenCodecOption func(*TokenCodec)

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) TokenCodecOption {
	return func(c *TokenCodec) { c.now = now }
}

func NewTokenCodec(cfg TokenConfig, opts ...TokenCodecOption) (*TokenCodec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token codec: empty secret")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token codec: ttl must be positive")
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	c := &TokenCodec{
		secret:     secret,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// TTL returns the configured lifetime for kind.
func (c *TokenCodec) TTL(kind Kind) time.Duration {
	if kind == KindRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Encode signs claims as they are. Timestamps must be whole seconds, the
// resolution of iat and exp on the wire, and exp must come after iat.
func (c *TokenCodec) Encode(claims Claims) (string, error) {
	if claims.Subject == "" || !claims.Kind.Valid() {
		return "", fmt.Errorf("%w: subject and kind are required", common.ErrInvalidArgument)
	}
	if !wholeSecond(claims.IssuedAt) || !wholeSecond(claims.ExpiresAt) {
		return "", fmt.Errorf("%w: iat and exp must be whole seconds", common.ErrInvalidArgument)
	}
	if !claims.ExpiresAt.After(claims.IssuedAt) {
		return "", fmt.Errorf("%w: exp must be after iat", common.ErrInvalidArgument)
	}

	w := &wireClaims{
		Subject:   claims.Subject,
		Type:      claims.Kind,
		IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
	}
	if claims.Kind == KindAccess {
		active := claims.IsActive
		w.Username = claims.Username
		w.Email = claims.Email
		w.IsActive = &active
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, w).SignedString(c.secret)
}

func wholeSecond(t time.Time) bool {
	return t.Nanosecond() == 0
}

// IssueAccess mints an access token carrying a snapshot of p.
func (c *TokenCodec) IssueAccess(p Principal) (string, Claims, error) {
	claims := c.newClaims(p.ID, KindAccess)
	claims.Username = p.Username
	claims.Email = p.Email
	claims.IsActive = p.IsActive

	tok, err := c.Encode(claims)
	return tok, claims, err
}

// IssueRefresh mints a refresh token naming only p's id.
func (c *TokenCodec) IssueRefresh(p Principal) (string, Claims, error) {
	claims := c.newClaims(p.ID, KindRefresh)
	tok, err := c.Encode(claims)
	return tok, claims, err
}

func (c *TokenCodec) newClaims(subject string, kind Kind) Claims {
	iat := c.now().UTC().Truncate(time.Second)
	return Claims{
		Subject:   subject,
		Kind:      kind,
		IssuedAt:  iat,
		ExpiresAt: iat.Add(c.TTL(kind)),
	}
}

// Decode verifies the signature and expiry of token and returns its claims.
// The kind is returned as found, whatever its value; see RequireKind. Every failure wraps
// common.ErrInvalidToken, expiry specifically as common.ErrTokenExpired.
func (c *TokenCodec) Decode(token string) (Claims, error) {
	var w wireClaims

	_, err := jwt.ParseWithClaims(token, &w,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, common.ErrTokenExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if w.Subject == "" || w.Type == "" || w.IssuedAt == nil {
		return Claims{}, fmt.Errorf("%w: missing claims", common.ErrInvalidToken)
	}

	claims := Claims{
		Subject:   w.Subject,
		Kind:      w.Type,
		IssuedAt:  w.IssuedAt.Time.UTC(),
		ExpiresAt: w.ExpiresAt.Time.UTC(),
		Username:  w.Username,
		Email:     w.Email,
	}
	if w.IsActive != nil {
		claims.IsActive = *w.IsActive
	}
	return claims, nil
}
