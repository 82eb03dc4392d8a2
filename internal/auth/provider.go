// Package auth acquires bearer tokens for GraphQL endpoints.
//
// The GraphQL client itself only ever sees a token string; this package
// hides which identity flow produced it.
package auth

import (
	"context"
	"strings"

	"emperror.dev/errors"
	"github.com/fabriq-labs/gqlprobe/internal/graphql"
	"golang.org/x/oauth2"
)

// TokenProvider acquires an access token for a scope.
// Failures are reported as *graphql.AuthenticationError.
type TokenProvider interface {
	GetToken(ctx context.Context, scope string) (string, error)
}

// TokenProviderFunc adapts a plain function to TokenProvider.
type TokenProviderFunc func(ctx context.Context, scope string) (string, error)

func (f TokenProviderFunc) GetToken(ctx context.Context, scope string) (string, error) {
	return f(ctx, scope)
}

var errEmptyToken = errors.Sentinel("the identity provider returned an empty token")

type tokenSourceProvider struct {
	src oauth2.TokenSource
}

// FromTokenSource adapts an oauth2.TokenSource. The scope is ignored since
// the source is already bound to whatever it was issued for.
func FromTokenSource(src oauth2.TokenSource) TokenProvider {
	return tokenSourceProvider{src}
}

func (p tokenSourceProvider) GetToken(_ context.Context, scope string) (string, error) {
	tok, err := p.src.Token()
	if err != nil {
		return "", &graphql.AuthenticationError{Scope: scope, Err: err}
	}
	if strings.TrimSpace(tok.AccessToken) == "" {
		return "", &graphql.AuthenticationError{Scope: scope, Err: errEmptyToken}
	}
	return tok.AccessToken, nil
}

// Static returns a provider that always hands out the same token, e.g. a
// GitHub personal access token.
func Static(token string) TokenProvider {
	return FromTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
}
