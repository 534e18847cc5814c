// Package client is the gRPC client for the gophauth service.
//
// GRPCClient keeps the current access/refresh token pair, attaches the right
// one to every call as an "authorization: Bearer" header and, when the server
// answers Unauthenticated with "token expired", refreshes the pair once and
// retries the call.
package client
