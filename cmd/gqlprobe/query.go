package main

import (
	"os"
	"strings"

	"emperror.dev/errors"
	"github.com/fabriq-labs/gqlprobe/internal/auth"
	"github.com/fabriq-labs/gqlprobe/internal/graphql"
	"github.com/fabriq-labs/gqlprobe/internal/utils/uiutils"
	"github.com/spf13/cobra"
)

var queryCmdFlags struct {
	queryFlags
	Endpoint string
	TokenEnv string
	Headers  []string
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a query against any GraphQL endpoint",
	Long: strings.TrimSpace(`
Run a query against any GraphQL endpoint that accepts a bearer token.

The endpoint defaults to the configured GitHub endpoint and the token to the
configured GitHub token. Use --token-env to read the token from another
environment variable.`),
	Example: strings.TrimSpace(`
  gqlprobe query -q '{ viewer { login } }'
  gqlprobe query --endpoint https://apim.example.net/graphql \
      --token-env MY_TOKEN --header Ocp-Apim-Subscription-Key=abc -f query.graphql`),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		query, err := queryCmdFlags.load(cmd, "")
		if err != nil {
			return err
		}
		variables, err := queryCmdFlags.variables()
		if err != nil {
			return err
		}
		headers, err := parseHeaders(queryCmdFlags.Headers)
		if err != nil {
			return err
		}

		endpoint := queryCmdFlags.Endpoint
		if endpoint == "" {
			endpoint = cfg.GitHub.APIURL
		}
		token := cfg.GitHub.Token
		if queryCmdFlags.TokenEnv != "" {
			token = os.Getenv(queryCmdFlags.TokenEnv)
		} else if token == "" {
			return uiutils.ErrNoGitHubToken
		}
		token, err = auth.Static(token).GetToken(cmd.Context(), "")
		if err != nil {
			return err
		}

		client, err := graphql.NewClient(graphql.Config{
			Endpoint: endpoint,
			Token:    token,
			Headers:  headers,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			return err
		}
		res, err := client.Execute(cmd.Context(), query, variables)
		if err != nil {
			return err
		}
		return writeData(cmd, res.Data)
	},
}

func init() {
	queryCmdFlags.register(queryCmd)
	queryCmd.Flags().StringVar(
		&queryCmdFlags.Endpoint, "endpoint", "",
		"GraphQL endpoint URL (default: the configured GitHub endpoint)",
	)
	queryCmd.Flags().StringVar(
		&queryCmdFlags.TokenEnv, "token-env", "",
		"environment variable holding the bearer token",
	)
	queryCmd.Flags().StringArrayVarP(
		&queryCmdFlags.Headers, "header", "H", nil,
		"extra request header as Name=value (repeatable)",
	)
}

func parseHeaders(kvs []string) (map[string]string, error) {
	if len(kvs) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			name, value, ok = strings.Cut(kv, ":")
		}
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Errorf("invalid --header %q (expected Name=value)", kv)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}
