// Package common contains shared constants and sentinel errors used across
// gophauth components.
package common

// AuthorizationHeaderName is the gRPC metadata key carrying the bearer token.
const AuthorizationHeaderName = "authorization"

// BearerScheme prefixes the token in the authorization header value.
const BearerScheme = "Bearer"

// TokenExpiredMessage is the Unauthenticated status message sent for an
// expired token. Clients refresh when they see it.
const TokenExpiredMessage = "token expired"
