package gh

import (
	"context"

	"emperror.dev/errors"
	"github.com/shurcooL/githubv4"
)

// MaxRepositoriesPerPage is the largest page GitHub serves for a connection.
const MaxRepositoriesPerPage = 100

type UserRepositories struct {
	Login        githubv4.String `json:"login"`
	Repositories struct {
		Nodes []Repository `json:"nodes"`
	} `json:"repositories"`
}

const userRepositoriesQuery = `query($username: String!, $limit: Int!, $field: RepositoryOrderField!, $direction: OrderDirection!) {
	user(login: $username) {
		login
		repositories(first: $limit, orderBy: {field: $field, direction: $direction}) {
			nodes {
				name
				description
				url
				stargazerCount
				forkCount
				isPrivate
				primaryLanguage { name }
				updatedAt
			}
		}
	}
}`

// UserRepositories returns the limit most recently updated repositories of
// the given user.
func (c *Client) UserRepositories(ctx context.Context, login string, limit int) (*UserRepositories, error) {
	if limit < 1 || limit > MaxRepositoriesPerPage {
		return nil, errors.Errorf("limit must be between 1 and %d, got %d", MaxRepositoriesPerPage, limit)
	}
	var data struct {
		User *UserRepositories `json:"user"`
	}
	err := c.query(ctx, userRepositoriesQuery, map[string]any{
		"username":  githubv4.String(login),
		"limit":     githubv4.Int(limit),
		"field":     githubv4.RepositoryOrderFieldUpdatedAt,
		"direction": githubv4.OrderDirectionDesc,
	}, &data)
	if isNotFound(err) || (err == nil && data.User == nil) {
		return nil, errors.WithMessagef(ErrNotFound, "user %q", login)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "unable to fetch repositories of %q from GitHub", login)
	}
	return data.User, nil
}
