// Package common defines shared constants and sentinel errors used across
// client and server layers of gophauth. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("forbidden")

	// Credential check errors. "Unknown user" and "wrong password" both wrap
	// ErrInvalidCredentials and must leave the server as the same status.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")

	// Bearer token errors.
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = fmt.Errorf("%w: token expired", ErrInvalidToken)
	ErrWrongTokenKind    = errors.New("wrong token kind")
	ErrPrincipalNotFound = errors.New("principal not found")
)
