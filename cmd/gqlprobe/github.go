package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"emperror.dev/errors"
	"github.com/dustin/go-humanize"
	"github.com/fabriq-labs/gqlprobe/internal/gh"
	"github.com/fabriq-labs/gqlprobe/internal/graphql"
	"github.com/fabriq-labs/gqlprobe/internal/utils/colors"
	"github.com/fabriq-labs/gqlprobe/internal/utils/uiutils"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var githubCmd = &cobra.Command{
	Use:   "github",
	Short: "Query the GitHub GraphQL API",
}

func init() {
	githubReposCmd.Flags().IntVar(
		&githubReposFlags.Limit, "limit", 10,
		"number of repositories to show",
	)
	githubSchemaCmd.Flags().StringVarP(
		&githubSchemaFlags.OutputDir, "output-dir", "o", ".",
		"directory to write the schema file to",
	)
	githubCmd.AddCommand(
		githubViewerCmd,
		githubReposCmd,
		githubRepoCmd,
		githubSchemaCmd,
	)
}

func newGitHubClient() (*gh.Client, error) {
	if cfg.GitHub.Token == "" {
		return nil, uiutils.ErrNoGitHubToken
	}
	client, err := graphql.NewClient(cfg.GitHubClientConfig())
	if err != nil {
		return nil, err
	}
	return gh.NewClient(client), nil
}

func orNA(s githubv4.String) string {
	if s == "" {
		return "N/A"
	}
	return string(s)
}

func heading(w io.Writer, title string) {
	_, _ = fmt.Fprintln(w, colors.Heading(title))
	_, _ = fmt.Fprintln(w, strings.Repeat("=", 50))
}

var githubViewerCmd = &cobra.Command{
	Use:   "viewer",
	Short: "Show the authenticated user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newGitHubClient()
		if err != nil {
			return err
		}
		viewer, err := client.Viewer(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		heading(w, "GitHub User Information")
		_, _ = fmt.Fprintf(w, "Username:     %s\n", colors.UserInput(string(viewer.Login)))
		_, _ = fmt.Fprintf(w, "Name:         %s\n", orNA(viewer.Name))
		_, _ = fmt.Fprintf(w, "Email:        %s\n", orNA(viewer.Email))
		_, _ = fmt.Fprintf(w, "Bio:          %s\n", orNA(viewer.Bio))
		_, _ = fmt.Fprintf(w, "Company:      %s\n", orNA(viewer.Company))
		_, _ = fmt.Fprintf(w, "Location:     %s\n", orNA(viewer.Location))
		_, _ = fmt.Fprintf(w, "Created At:   %s\n", viewer.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
		_, _ = fmt.Fprintf(w, "Followers:    %d\n", viewer.Followers.TotalCount)
		_, _ = fmt.Fprintf(w, "Following:    %d\n", viewer.Following.TotalCount)
		_, _ = fmt.Fprintf(w, "Repositories: %d\n", viewer.Repositories.TotalCount)
		return nil
	},
}

var githubReposFlags struct {
	Limit int
}

var githubReposCmd = &cobra.Command{
	Use:   "repos <username>",
	Short: "List a user's most recently updated repositories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGitHubClient()
		if err != nil {
			return err
		}
		user, err := client.UserRepositories(cmd.Context(), args[0], githubReposFlags.Limit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		repos := user.Repositories.Nodes
		heading(w, fmt.Sprintf("Top %d Repositories for %s", len(repos), user.Login))
		for i, repo := range repos {
			language := "N/A"
			if repo.PrimaryLanguage != nil {
				language = string(repo.PrimaryLanguage.Name)
			}
			description := string(repo.Description)
			if description == "" {
				description = "No description"
			}
			_, _ = fmt.Fprintf(w, "\n%d. %s (%s)\n", i+1, colors.Bold(string(repo.Name)), repo.Visibility())
			_, _ = fmt.Fprintf(w, "   URL:         %s\n", repo.URL.String())
			_, _ = fmt.Fprintf(w, "   Description: %s\n", description)
			_, _ = fmt.Fprintf(w, "   Language:    %s\n", language)
			_, _ = fmt.Fprintf(w, "   Stars:       %d\n", repo.StargazerCount)
			_, _ = fmt.Fprintf(w, "   Forks:       %d\n", repo.ForkCount)
			_, _ = fmt.Fprintf(w, "   Updated:     %s\n", humanize.Time(repo.UpdatedAt.Time))
		}
		return nil
	},
}

var githubRepoCmd = &cobra.Command{
	Use:   "repo <owner> <name> | repo <owner/name>",
	Short: "Show details about a repository",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var owner, name string
		if len(args) == 2 {
			owner, name = args[0], args[1]
		} else {
			var err error
			if owner, name, err = gh.ParseSlug(args[0]); err != nil {
				return err
			}
		}

		client, err := newGitHubClient()
		if err != nil {
			return err
		}
		repo, err := client.Repository(cmd.Context(), owner, name)
		if err != nil {
			return err
		}

		primaryLanguage := "N/A"
		if repo.PrimaryLanguage != nil {
			primaryLanguage = string(repo.PrimaryLanguage.Name)
		}
		languages := "N/A"
		if names := repo.LanguageNames(); len(names) > 0 {
			languages = strings.Join(names, ", ")
		}
		defaultBranch := "N/A"
		if repo.DefaultBranchRef != nil {
			defaultBranch = string(repo.DefaultBranchRef.Name)
		}
		description := string(repo.Description)
		if description == "" {
			description = "No description"
		}

		w := cmd.OutOrStdout()
		heading(w, fmt.Sprintf("Repository: %s (%s)", repo.Name, repo.Visibility()))
		_, _ = fmt.Fprintf(w, "URL:              %s\n", repo.URL.String())
		_, _ = fmt.Fprintf(w, "Description:      %s\n", description)
		_, _ = fmt.Fprintf(w, "Default Branch:   %s\n", defaultBranch)
		_, _ = fmt.Fprintf(w, "Primary Language: %s\n", primaryLanguage)
		_, _ = fmt.Fprintf(w, "Languages:        %s\n", languages)
		_, _ = fmt.Fprintf(w, "Stars:            %d\n", repo.StargazerCount)
		_, _ = fmt.Fprintf(w, "Forks:            %d\n", repo.ForkCount)
		_, _ = fmt.Fprintf(w, "Watchers:         %d\n", repo.Watchers.TotalCount)
		_, _ = fmt.Fprintf(w, "Issues:           %d\n", repo.Issues.TotalCount)
		_, _ = fmt.Fprintf(w, "Pull Requests:    %d\n", repo.PullRequests.TotalCount)
		_, _ = fmt.Fprintf(w, "Created At:       %s\n", repo.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
		_, _ = fmt.Fprintf(w, "Updated At:       %s\n", repo.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
		return nil
	},
}

var githubSchemaFlags struct {
	OutputDir string
}

var githubSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Write a GraphQL schema file for an API Management synthetic GraphQL API",
	Long: strings.TrimSpace(`
Checks connectivity to the GitHub GraphQL API by introspecting its schema and
writes a minimal SDL file that can be uploaded to Azure API Management.

If no token is configured, or the endpoint can't be reached, the minimal
schema is written on its own.`),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := cmd.OutOrStdout()
		summary, err := fetchSchemaSummary(cmd)
		if err != nil {
			if errors.Is(err, uiutils.ErrNoGitHubToken) {
				_, _ = fmt.Fprintln(w, colors.Warning("GITHUB_TOKEN not found; writing the minimal schema without introspection."))
			} else {
				logrus.WithError(err).Debug("schema introspection failed")
				_, _ = fmt.Fprintln(w, colors.Failure("Failed to fetch schema data: ", err.Error()))
				_, _ = fmt.Fprintln(w, "Writing the minimal schema as a fallback.")
			}
		} else {
			_, _ = fmt.Fprintln(w, colors.Success("Successfully connected to the GitHub GraphQL API!"))
			_, _ = fmt.Fprintf(w, "   Query type:        %s\n", summary.QueryTypeName())
			_, _ = fmt.Fprintf(w, "   Mutation type:     %s\n", summary.MutationTypeName())
			_, _ = fmt.Fprintf(w, "   Subscription type: %s\n", summary.SubscriptionTypeName())
			_, _ = fmt.Fprintf(w, "   Total types:       %d\n", len(summary.Types))
		}

		name, content := gh.RenderSchemaFile(summary)
		path := filepath.Join(githubSchemaFlags.OutputDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return errors.Wrap(err, "failed to write schema file")
		}
		_, _ = fmt.Fprintf(w, "\nSchema saved to: %s (%s)\n", colors.UserInput(path), humanize.Bytes(uint64(len(content))))
		return nil
	},
}

func fetchSchemaSummary(cmd *cobra.Command) (*gh.Schema, error) {
	client, err := newGitHubClient()
	if err != nil {
		return nil, err
	}
	return client.SchemaSummary(cmd.Context())
}
