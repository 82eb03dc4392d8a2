package auth

import (
	"context"
	"strings"

	"emperror.dev/errors"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/dustin/go-humanize"
	"github.com/fabriq-labs/gqlprobe/internal/graphql"
	"github.com/sirupsen/logrus"
)

const (
	// FabricUserImpersonationScope is the delegated scope for Fabric/Power BI
	// APIs, used by interactive and CLI-based sign-ins.
	FabricUserImpersonationScope = "https://analysis.windows.net/powerbi/api/user_impersonation"
	// FabricDefaultScope requests all statically consented Fabric permissions.
	FabricDefaultScope = "https://api.fabric.microsoft.com/.default"
)

// ApplicationScope is the scope of an app registration exposing its own API,
// which is what a service principal requests for itself.
func ApplicationScope(clientID string) string {
	return "api://" + clientID + "/.default"
}

// Method is an Entra ID sign-in flow.
type Method string

const (
	MethodClientSecret       Method = "client-secret"
	MethodInteractiveBrowser Method = "interactive-browser"
	MethodAzureCLI           Method = "azure-cli"
	MethodAzureDeveloperCLI  Method = "azure-developer-cli"
	MethodDefault            Method = "default"
)

// Methods lists the supported flows in the order they're documented.
var Methods = []Method{
	MethodDefault,
	MethodClientSecret,
	MethodInteractiveBrowser,
	MethodAzureCLI,
	MethodAzureDeveloperCLI,
}

// ParseMethod parses a method name. The empty string means MethodDefault.
func ParseMethod(s string) (Method, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return MethodDefault, nil
	}
	switch s {
	case "azd":
		return MethodAzureDeveloperCLI, nil
	case "az", "cli":
		return MethodAzureCLI, nil
	case "browser", "interactive":
		return MethodInteractiveBrowser, nil
	}
	for _, m := range Methods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", &graphql.ConfigurationError{Reason: "unknown authentication method " + s}
}

// DefaultScope is the scope to request when none is configured.
func DefaultScope(method Method, clientID string) string {
	if method == MethodClientSecret && clientID != "" {
		return ApplicationScope(clientID)
	}
	return FabricUserImpersonationScope
}

// AzureOptions are the app registration details for an Entra ID flow. Which
// ones are required depends on the Method.
type AzureOptions struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// NewAzureCredential builds the azidentity credential for method.
func NewAzureCredential(method Method, opts AzureOptions) (azcore.TokenCredential, error) {
	var (
		cred azcore.TokenCredential
		err  error
	)
	switch method {
	case MethodClientSecret:
		var missing []string
		if opts.TenantID == "" {
			missing = append(missing, "tenant ID")
		}
		if opts.ClientID == "" {
			missing = append(missing, "client ID")
		}
		if opts.ClientSecret == "" {
			missing = append(missing, "client secret")
		}
		if len(missing) > 0 {
			return nil, &graphql.ConfigurationError{
				Reason: "client-secret authentication requires " + strings.Join(missing, ", "),
			}
		}
		cred, err = azidentity.NewClientSecretCredential(opts.TenantID, opts.ClientID, opts.ClientSecret, nil)
	case MethodInteractiveBrowser:
		cred, err = azidentity.NewInteractiveBrowserCredential(&azidentity.InteractiveBrowserCredentialOptions{
			TenantID: opts.TenantID,
			ClientID: opts.ClientID,
		})
	case MethodAzureCLI:
		cred, err = azidentity.NewAzureCLICredential(&azidentity.AzureCLICredentialOptions{
			TenantID: opts.TenantID,
		})
	case MethodAzureDeveloperCLI:
		cred, err = azidentity.NewAzureDeveloperCLICredential(&azidentity.AzureDeveloperCLICredentialOptions{
			TenantID: opts.TenantID,
		})
	case MethodDefault:
		cred, err = azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{
			TenantID: opts.TenantID,
		})
	default:
		return nil, &graphql.ConfigurationError{Reason: "unknown authentication method " + string(method)}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s credential", method)
	}
	return cred, nil
}

type azureProvider struct {
	cred azcore.TokenCredential
}

// Azure adapts an azidentity credential (or any azcore.TokenCredential).
func Azure(cred azcore.TokenCredential) TokenProvider {
	return azureProvider{cred}
}

func (p azureProvider) GetToken(ctx context.Context, scope string) (string, error) {
	if scope == "" {
		return "", &graphql.AuthenticationError{Err: errors.New("no scope requested")}
	}
	tok, err := p.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{scope}})
	if err != nil {
		return "", &graphql.AuthenticationError{Scope: scope, Err: err}
	}
	if strings.TrimSpace(tok.Token) == "" {
		return "", &graphql.AuthenticationError{Scope: scope, Err: errEmptyToken}
	}
	logrus.WithFields(logrus.Fields{
		"scope":   scope,
		"expires": humanize.Time(tok.ExpiresOn),
	}).Debug("access token acquired")
	return tok.Token, nil
}
