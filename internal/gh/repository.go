package gh

import (
	"context"
	"strings"

	"emperror.dev/errors"
	"github.com/shurcooL/githubv4"
)

type Language struct {
	Name githubv4.String `json:"name"`
}

type Repository struct {
	Name            githubv4.String   `json:"name"`
	Description     githubv4.String   `json:"description"`
	URL             githubv4.URI      `json:"url"`
	IsPrivate       githubv4.Boolean  `json:"isPrivate"`
	StargazerCount  githubv4.Int      `json:"stargazerCount"`
	ForkCount       githubv4.Int      `json:"forkCount"`
	PrimaryLanguage *Language         `json:"primaryLanguage"`
	CreatedAt       githubv4.DateTime `json:"createdAt"`
	UpdatedAt       githubv4.DateTime `json:"updatedAt"`

	// Only populated by Client.Repository.
	Watchers     totalCount `json:"watchers"`
	Issues       totalCount `json:"issues"`
	PullRequests totalCount `json:"pullRequests"`
	Languages    struct {
		Nodes []Language `json:"nodes"`
	} `json:"languages"`
	DefaultBranchRef *struct {
		Name githubv4.String `json:"name"`
	} `json:"defaultBranchRef"`
}

type totalCount struct {
	TotalCount githubv4.Int `json:"totalCount"`
}

// Visibility is "Private" or "Public".
func (r *Repository) Visibility() string {
	if r.IsPrivate {
		return "Private"
	}
	return "Public"
}

// LanguageNames returns the names of the repository's top languages.
func (r *Repository) LanguageNames() []string {
	names := make([]string, 0, len(r.Languages.Nodes))
	for _, l := range r.Languages.Nodes {
		names = append(names, string(l.Name))
	}
	return names
}

const repositoryQuery = `query($owner: String!, $name: String!) {
	repository(owner: $owner, name: $name) {
		name
		description
		url
		isPrivate
		stargazerCount
		forkCount
		watchers { totalCount }
		issues { totalCount }
		pullRequests { totalCount }
		primaryLanguage { name }
		languages(first: 5) { nodes { name } }
		createdAt
		updatedAt
		defaultBranchRef { name }
	}
}`

// Repository returns details about owner/name. It returns ErrNotFound if
// the repository doesn't exist or isn't visible to the token.
func (c *Client) Repository(ctx context.Context, owner, name string) (*Repository, error) {
	var data struct {
		Repository *Repository `json:"repository"`
	}
	err := c.query(ctx, repositoryQuery, map[string]any{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(name),
	}, &data)
	if isNotFound(err) || (err == nil && data.Repository == nil) {
		return nil, errors.WithMessagef(ErrNotFound, "repository %s/%s", owner, name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to fetch repository from GitHub")
	}
	return data.Repository, nil
}

// ParseSlug splits an "<owner>/<repo>" string.
func ParseSlug(slug string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(slug, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", errors.Errorf(
			"unable to parse repository slug (expected <owner>/<repo>): %q",
			slug,
		)
	}
	return owner, name, nil
}

const latestReleaseQuery = `query($owner: String!, $name: String!) {
	repository(owner: $owner, name: $name) {
		latestRelease { tagName }
	}
}`

// LatestRelease returns the tag name of the repository's latest release.
func (c *Client) LatestRelease(ctx context.Context, owner, name string) (string, error) {
	var data struct {
		Repository *struct {
			LatestRelease *struct {
				TagName githubv4.String `json:"tagName"`
			} `json:"latestRelease"`
		} `json:"repository"`
	}
	err := c.query(ctx, latestReleaseQuery, map[string]any{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(name),
	}, &data)
	if isNotFound(err) || (err == nil && (data.Repository == nil || data.Repository.LatestRelease == nil)) {
		return "", errors.WithMessagef(ErrNotFound, "repository %s/%s", owner, name)
	}
	if err != nil {
		return "", errors.Wrap(err, "unable to fetch latest release from GitHub")
	}
	return string(data.Repository.LatestRelease.TagName), nil
}
