package gh

import (
	"context"
	"time"

	"github.com/fabriq-labs/gqlprobe/internal/graphql"
	"github.com/fabriq-labs/gqlprobe/internal/utils/logutils"
	"github.com/sirupsen/logrus"
)

// Client runs typed GitHub queries on top of a generic GraphQL client.
type Client struct {
	gql *graphql.Client
}

func NewClient(gql *graphql.Client) *Client {
	return &Client{gql}
}

// query executes a query and decodes its data into result.
func (c *Client) query(ctx context.Context, query string, variables map[string]any, result any) (reterr error) {
	log := logrus.WithFields(logrus.Fields{
		"variables": logutils.Format("%#+v", variables),
	})
	log.Debug("executing GitHub API query...")
	startTime := time.Now()
	defer func() {
		log := log.WithFields(logrus.Fields{
			"elapsed": time.Since(startTime),
			"result":  logutils.Format("%#+v", result),
		})
		if reterr != nil {
			log.WithError(reterr).Debug("GitHub API query failed")
		} else {
			log.Debug("GitHub API query succeeded")
		}
	}()
	res, err := c.gql.Execute(ctx, query, variables)
	if err != nil {
		return err
	}
	return res.Decode(result)
}
