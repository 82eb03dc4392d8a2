// Package fabric connects to Microsoft Fabric GraphQL APIs, either directly
// or through an Azure API Management gateway.
package fabric

import (
	"context"
	"net/http"

	"emperror.dev/errors"
	"github.com/fabriq-labs/gqlprobe/internal/auth"
	"github.com/fabriq-labs/gqlprobe/internal/config"
	"github.com/fabriq-labs/gqlprobe/internal/graphql"
	"github.com/sirupsen/logrus"
)

// SampleQuery reads the first page of the sample IoT lakehouse table.
const SampleQuery = `query {
	factory_iot_datas(first: 10) {
		items {
			Timestamp
			BuildingID
			DeviceID
		}
	}
}`

// Method returns the configured sign-in flow.
func Method(cfg *config.Config) (auth.Method, error) {
	return auth.ParseMethod(cfg.Fabric.AuthMethod)
}

// Scope returns the configured token scope, or the default for the
// configured sign-in flow.
func Scope(cfg *config.Config) (string, error) {
	if cfg.Fabric.Scope != "" {
		return cfg.Fabric.Scope, nil
	}
	method, err := Method(cfg)
	if err != nil {
		return "", err
	}
	return auth.DefaultScope(method, cfg.Fabric.ClientID), nil
}

// NewTokenProvider builds the credential for the configured sign-in flow.
func NewTokenProvider(cfg *config.Config) (auth.TokenProvider, error) {
	method, err := Method(cfg)
	if err != nil {
		return nil, err
	}
	cred, err := auth.NewAzureCredential(method, auth.AzureOptions{
		TenantID:     cfg.Fabric.TenantID,
		ClientID:     cfg.Fabric.ClientID,
		ClientSecret: cfg.Fabric.ClientSecret,
	})
	if err != nil {
		return nil, err
	}
	return auth.Azure(cred), nil
}

// CheckEndpoint validates the configured endpoint without contacting it or
// the identity provider.
func CheckEndpoint(cfg *config.Config) error {
	if cfg.Fabric.APIURL == "" {
		return &graphql.ConfigurationError{
			Reason: "no Fabric GraphQL endpoint configured (set FABRIC_GRAPHQL_API_URL)",
		}
	}
	if err := graphql.ValidateEndpoint(cfg.Fabric.APIURL); err != nil {
		return errors.WithMessage(err, "invalid Fabric endpoint")
	}
	return nil
}

// NewClient acquires a token from tokens and returns a client for the
// configured Fabric (or APIM) endpoint. The endpoint is checked before any
// token is requested, so a bad URL never starts an interactive sign-in.
func NewClient(ctx context.Context, cfg *config.Config, tokens auth.TokenProvider) (*graphql.Client, error) {
	if err := CheckEndpoint(cfg); err != nil {
		return nil, err
	}
	scope, err := Scope(cfg)
	if err != nil {
		return nil, err
	}
	token, err := tokens.GetToken(ctx, scope)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"endpoint": cfg.Fabric.APIURL,
		"scope":    scope,
		"apim":     cfg.Fabric.SubscriptionKey != "",
	}).Debug("acquired Fabric access token")

	client, err := graphql.NewClient(cfg.FabricClientConfig(token))
	if err != nil {
		return nil, errors.WithMessage(err, "invalid Fabric endpoint")
	}
	return client, nil
}

const notFoundHint = `# Fabric GraphQL endpoint returned 404

This usually means one of the following:

1. The GraphQL endpoint URL is incorrect.
2. The workspace ID or GraphQL API ID in the URL is wrong.
3. The API might not be published or accessible.
4. The authentication scope might be incorrect.

Please verify the endpoint URL in the Fabric portal.
`

const unauthorizedHint = `# Fabric GraphQL endpoint rejected the request

The endpoint did not accept the credentials that were sent.

1. Check that the token was requested for the right scope (` + "`FABRIC_SCOPE`" + `).
2. If the request goes through API Management, check ` + "`FABRIC_APIM_SUBSCRIPTION_KEY`" + `.
3. Make sure the signed-in identity has access to the workspace and the GraphQL API item.
`

// Hint returns troubleshooting markdown for err, or "" if there's nothing
// more useful to say than the error itself.
func Hint(err error) string {
	var httpErr *graphql.HTTPError
	if !errors.As(err, &httpErr) {
		return ""
	}
	switch httpErr.StatusCode {
	case http.StatusNotFound:
		return notFoundHint
	case http.StatusUnauthorized, http.StatusForbidden:
		return unauthorizedHint
	}
	return ""
}
