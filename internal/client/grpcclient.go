package client

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/gophauth/internal/authrpc"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Tokens is the pair handed out by Login and Refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Option func(*GRPCClient)

// WithTokens seeds the client with a previously saved pair.
func WithTokens(t Tokens) Option {
	return func(c *GRPCClient) { c.tokens = t }
}

// WithTokenHook registers fn to be called whenever a new pair is stored,
// including pairs obtained by a transparent refresh.
func WithTokenHook(fn func(Tokens)) Option {
	return func(c *GRPCClient) { c.onTokens = fn }
}

// WithDialOptions appends extra dial options, e.g. a custom dialer in tests.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *GRPCClient) { c.dialOpts = append(c.dialOpts, opts...) }
}

type GRPCClient struct {
	endpointURL string
	dialOpts    []grpc.DialOption
	conn        *grpc.ClientConn
	client      authrpc.AuthServiceClient

	mu       sync.Mutex
	tokens   Tokens
	onTokens func(Tokens)
}

func NewGRPCClient(endpointURL string, opts ...Option) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	for _, o := range opts {
		o(c)
	}
	if err := c.initGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *GRPCClient) initGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.tokenInterceptor),
	}, c.dialOpts...)

	conn, err := grpc.NewClient(c.endpointURL, opts...)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.endpointURL, err)
	}
	c.conn = conn
	c.client = authrpc.NewAuthServiceClient(conn)
	return nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// Tokens returns the pair currently held by the client.
func (c *GRPCClient) Tokens() Tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

func (c *GRPCClient) SetTokens(t Tokens) {
	c.mu.Lock()
	c.tokens = t
	hook := c.onTokens
	c.mu.Unlock()

	if hook != nil {
		hook(t)
	}
}

func withBearer(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AuthorizationHeaderName)
	if token != "" {
		md.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.TokenExpiredMessage
}

// tokenInterceptor attaches the bearer token each method expects and retries
// once with a fresh pair when the access token has expired.
func (c *GRPCClient) tokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	switch method {
	case authrpc.FullMethodPing, authrpc.FullMethodRegister, authrpc.FullMethodLogin:
		return invoker(withBearer(ctx, ""), method, req, reply, cc, opts...)
	case authrpc.FullMethodRefresh:
		return invoker(withBearer(ctx, c.Tokens().RefreshToken), method, req, reply, cc, opts...)
	}

	err := invoker(withBearer(ctx, c.Tokens().AccessToken), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) {
		return err
	}
	if c.Tokens().RefreshToken == "" {
		return err
	}

	if _, err := c.refresh(ctx); err != nil {
		return err
	}

	return invoker(withBearer(ctx, c.Tokens().AccessToken), method, req, reply, cc, opts...)
}

func (c *GRPCClient) refresh(ctx context.Context) (*authrpc.TokenResponse, error) {
	resp, err := c.client.Refresh(ctx, &authrpc.RefreshRequest{})
	if err != nil {
		return nil, err
	}
	c.SetTokens(Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken})
	return resp, nil
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	resp, err := c.client.Ping(ctx, &authrpc.PingRequest{})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *GRPCClient) Register(ctx context.Context, username, email, password string) (*authrpc.User, error) {
	resp, err := c.client.Register(ctx, &authrpc.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.User, nil
}

// Login exchanges credentials for a token pair and keeps it for later calls.
func (c *GRPCClient) Login(ctx context.Context, username, password string) (*authrpc.TokenResponse, error) {
	resp, err := c.client.Login(ctx, &authrpc.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, mapError(err)
	}
	c.SetTokens(Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken})
	return resp, nil
}

// Refresh trades the held refresh token for a new pair.
func (c *GRPCClient) Refresh(ctx context.Context) (*authrpc.TokenResponse, error) {
	if c.Tokens().RefreshToken == "" {
		return nil, ErrNoSession
	}
	resp, err := c.refresh(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

func (c *GRPCClient) Me(ctx context.Context) (*authrpc.User, error) {
	resp, err := c.client.Me(ctx, &authrpc.MeRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.User, nil
}

func (c *GRPCClient) GetUser(ctx context.Context, username string) (*authrpc.User, error) {
	resp, err := c.client.GetUser(ctx, &authrpc.GetUserRequest{Username: username})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.User, nil
}

func (c *GRPCClient) ListUsers(ctx context.Context, order string, offset, limit int32) ([]*authrpc.User, error) {
	resp, err := c.client.ListUsers(ctx, &authrpc.ListUsersRequest{Order: order, Offset: offset, Limit: limit})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Users, nil
}

func (c *GRPCClient) UpdateUser(ctx context.Context, id string, username, email *string) (*authrpc.User, error) {
	resp, err := c.client.UpdateUser(ctx, &authrpc.UpdateUserRequest{ID: id, Username: username, Email: email})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.User, nil
}

func (c *GRPCClient) DeactivateUser(ctx context.Context, id string) (*authrpc.User, error) {
	resp, err := c.client.DeactivateUser(ctx, &authrpc.DeactivateUserRequest{ID: id})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.User, nil
}

func (c *GRPCClient) DeleteUser(ctx context.Context, id string) error {
	if _, err := c.client.DeleteUser(ctx, &authrpc.DeleteUserRequest{ID: id}); err != nil {
		return mapError(err)
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrForbidden, st.Message())
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", common.ErrAlreadyExists, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrInvalidArgument, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
