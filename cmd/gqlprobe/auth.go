package main

import (
	"fmt"
	"strings"

	"github.com/fabriq-labs/gqlprobe/internal/fabric"
	"github.com/fabriq-labs/gqlprobe/internal/gh"
	"github.com/fabriq-labs/gqlprobe/internal/utils/colors"
	"github.com/fabriq-labs/gqlprobe/internal/utils/logutils"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Check credentials for the configured endpoints",
}

var authTokenFlags struct {
	Method string
	Scope  string
	Full   bool
}

// tokenPreviewLen is how much of an access token is shown unless --full is set.
const tokenPreviewLen = 20

func init() {
	authTokenCmd.Flags().StringVar(
		&authTokenFlags.Method, "method", "",
		"sign-in flow (default: FABRIC_AUTH_METHOD or \"default\")",
	)
	authTokenCmd.Flags().StringVar(
		&authTokenFlags.Scope, "scope", "",
		"token scope (default depends on the sign-in flow)",
	)
	authTokenCmd.Flags().BoolVar(
		&authTokenFlags.Full, "full", false,
		"print the whole token instead of a prefix",
	)
	authCmd.AddCommand(authStatusCmd, authTokenCmd)
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the GitHub user the configured token belongs to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := cmd.OutOrStdout()
		client, err := newGitHubClient()
		if err != nil {
			return err
		}
		viewer, err := client.Viewer(cmd.Context())
		if err != nil {
			if gh.IsHTTPUnauthorized(err) {
				_, _ = fmt.Fprint(w,
					colors.Failure("The GitHub token is invalid or expired.\n"),
					colors.Troubleshooting("  - Create a new token and set it in GITHUB_TOKEN.\n"),
					colors.Troubleshooting("  - Then run "), colors.CliCmd("gqlprobe auth status"),
					colors.Troubleshooting(" again.\n"),
				)
				return errExitSilently{ExitCode: 1}
			}
			return err
		}
		_, _ = fmt.Fprint(w,
			colors.Success("Logged in to GitHub as "),
			colors.UserInput(string(viewer.Login)),
			colors.Success(" (", cfg.GitHub.APIURL, ").\n"),
		)
		return nil
	},
}

var authTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Acquire an Entra ID access token for Fabric",
	Long: strings.TrimSpace(`
Acquire an Entra ID access token with the configured sign-in flow and print
its first characters. This is useful to check the credential chain before
querying Fabric.`),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if authTokenFlags.Method != "" {
			cfg.Fabric.AuthMethod = authTokenFlags.Method
		}
		if authTokenFlags.Scope != "" {
			cfg.Fabric.Scope = authTokenFlags.Scope
		}
		scope, err := fabric.Scope(cfg)
		if err != nil {
			return err
		}
		tokens, err := fabric.NewTokenProvider(cfg)
		if err != nil {
			return err
		}
		token, err := tokens.GetToken(cmd.Context(), scope)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if authTokenFlags.Full {
			_, _ = fmt.Fprintln(w, token)
			return nil
		}
		_, _ = fmt.Fprint(w,
			colors.Success("Acquired a token for "), colors.UserInput(scope), "\n",
			"  ", logutils.Truncate(token, tokenPreviewLen), "\n",
		)
		return nil
	},
}
