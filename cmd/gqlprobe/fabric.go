package main

import (
	"strings"

	"github.com/fabriq-labs/gqlprobe/internal/fabric"
	"github.com/fabriq-labs/gqlprobe/internal/graphql"
	"github.com/spf13/cobra"
)

var fabricFlags struct {
	AuthMethod string
	Scope      string
}

var fabricQueryFlags queryFlags

var fabricCmd = &cobra.Command{
	Use:   "fabric",
	Short: "Query a Microsoft Fabric GraphQL API",
	Long: strings.TrimSpace(`
Query a Microsoft Fabric GraphQL API, either directly or through an Azure API
Management gateway.

The endpoint is read from FABRIC_GRAPHQL_API_URL. When
FABRIC_APIM_SUBSCRIPTION_KEY is set, it's sent as the Ocp-Apim-Subscription-Key
header. An Entra ID access token is always acquired and sent as a bearer token.`),
}

func init() {
	fabricCmd.PersistentFlags().StringVar(
		&fabricFlags.AuthMethod, "auth-method", "",
		"sign-in flow: default, client-secret, interactive-browser, azure-cli, azure-developer-cli",
	)
	fabricCmd.PersistentFlags().StringVar(
		&fabricFlags.Scope, "scope", "",
		"token scope (default depends on the sign-in flow)",
	)
	fabricQueryFlags.register(fabricQueryCmd)
	fabricCmd.AddCommand(fabricQueryCmd, fabricSchemaCmd)
}

func newFabricClient(cmd *cobra.Command) (*graphql.Client, error) {
	if fabricFlags.AuthMethod != "" {
		cfg.Fabric.AuthMethod = fabricFlags.AuthMethod
	}
	if fabricFlags.Scope != "" {
		cfg.Fabric.Scope = fabricFlags.Scope
	}
	// Fail before an interactive sign-in is started.
	if err := fabric.CheckEndpoint(cfg); err != nil {
		return nil, err
	}
	tokens, err := fabric.NewTokenProvider(cfg)
	if err != nil {
		return nil, err
	}
	return fabric.NewClient(cmd.Context(), cfg, tokens)
}

func runFabric(cmd *cobra.Command, query string, variables map[string]any) error {
	client, err := newFabricClient(cmd)
	if err != nil {
		return err
	}
	res, err := client.Execute(cmd.Context(), query, variables)
	if err != nil {
		return err
	}
	return writeData(cmd, res.Data)
}

var fabricQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a query (defaults to the sample IoT query)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		query, err := fabricQueryFlags.load(cmd, fabric.SampleQuery)
		if err != nil {
			return err
		}
		variables, err := fabricQueryFlags.variables()
		if err != nil {
			return err
		}
		return runFabric(cmd, query, variables)
	},
}

var fabricSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Introspect the root types and type names of the API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFabric(cmd, graphql.IntrospectionQuery, nil)
	},
}
