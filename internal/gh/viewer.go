package gh

import (
	"context"

	"github.com/shurcooL/githubv4"
)

type Viewer struct {
	Login     githubv4.String   `json:"login"`
	Name      githubv4.String   `json:"name"`
	Email     githubv4.String   `json:"email"`
	Bio       githubv4.String   `json:"bio"`
	Company   githubv4.String   `json:"company"`
	Location  githubv4.String   `json:"location"`
	CreatedAt githubv4.DateTime `json:"createdAt"`
	Followers struct {
		TotalCount githubv4.Int `json:"totalCount"`
	} `json:"followers"`
	Following struct {
		TotalCount githubv4.Int `json:"totalCount"`
	} `json:"following"`
	Repositories struct {
		TotalCount githubv4.Int `json:"totalCount"`
	} `json:"repositories"`
}

const viewerQuery = `query {
	viewer {
		login
		name
		email
		bio
		company
		location
		createdAt
		followers { totalCount }
		following { totalCount }
		repositories { totalCount }
	}
}`

// Viewer returns the user the token belongs to.
func (c *Client) Viewer(ctx context.Context) (*Viewer, error) {
	var data struct {
		Viewer Viewer `json:"viewer"`
	}
	if err := c.query(ctx, viewerQuery, nil, &data); err != nil {
		return nil, err
	}
	return &data.Viewer, nil
}
