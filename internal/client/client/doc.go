// Package client is the console side of the FieldLog operator API.
//
// Client is the transport-agnostic contract the console depends on; GRPCClient
// implements it over the SessionService descriptor declared in package api.
// The access token is injected by a unary interceptor, and gRPC status codes
// are mapped to the sentinel errors in errors.go (ErrUnavailable,
// ErrUnauthorized, ErrRejected) so callers can match them with errors.Is.
package client
