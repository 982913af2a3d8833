// Package auth defines how outgoing requests obtain bearer credentials.
//
// Providers are consulted once per request, immediately before the
// request is sent. Nothing in this package caches a token on behalf of
// the caller: a server process handling many users must source the
// credential from the current session every time, or concurrent requests
// would leak each other's tokens.
package auth

import "context"

// TokenProvider yields the bearer token for one outgoing request. An
// empty token with a nil error means the request goes out unauthenticated.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to the TokenProvider interface.
type TokenFunc func(ctx context.Context) (string, error)

// Token implements TokenProvider.
func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Static returns a provider that always yields the same token. Intended
// for single-user processes such as CLI tools; server processes should
// use a per-request session source instead.
func Static(token string) TokenProvider {
	return TokenFunc(func(context.Context) (string, error) {
		return token, nil
	})
}

// None returns a provider that yields no credential.
func None() TokenProvider {
	return Static("")
}
