package gh

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/fabriq-labs/gqlprobe/internal/graphql"
	"github.com/shurcooL/githubv4"
)

//go:embed minimal.graphql
var minimalSchema string

const (
	ConnectedSchemaFile = "github-schema-connected.graphql"
	MinimalSchemaFile   = "github-schema-minimal.graphql"
)

type namedType struct {
	Name githubv4.String `json:"name"`
}

type SchemaType struct {
	Name        githubv4.String `json:"name"`
	Kind        githubv4.String `json:"kind"`
	Description githubv4.String `json:"description"`
}

type Schema struct {
	QueryType        *namedType   `json:"queryType"`
	MutationType     *namedType   `json:"mutationType"`
	SubscriptionType *namedType   `json:"subscriptionType"`
	Types            []SchemaType `json:"types"`
}

func rootName(t *namedType, fallback string) string {
	if t == nil || t.Name == "" {
		return fallback
	}
	return string(t.Name)
}

func (s *Schema) QueryTypeName() string        { return rootName(s.QueryType, "Unknown") }
func (s *Schema) MutationTypeName() string     { return rootName(s.MutationType, "None") }
func (s *Schema) SubscriptionTypeName() string { return rootName(s.SubscriptionType, "None") }

// SchemaSummary introspects the schema served by the endpoint.
func (c *Client) SchemaSummary(ctx context.Context) (*Schema, error) {
	var data struct {
		Schema Schema `json:"__schema"`
	}
	if err := c.query(ctx, graphql.IntrospectionQuery, nil, &data); err != nil {
		return nil, err
	}
	return &data.Schema, nil
}

// MinimalSchema is a small hand-written SDL covering the viewer, users and
// their repositories. It's a starting point for a synthetic GraphQL API in
// Azure API Management.
func MinimalSchema() string {
	return minimalSchema
}

// RenderSchemaFile returns the SDL file contents and the file name to use.
// A nil summary means the endpoint couldn't be reached and the minimal schema
// is written on its own.
func RenderSchemaFile(summary *Schema) (name string, content string) {
	if summary == nil {
		return MinimalSchemaFile, minimalSchema
	}
	content = fmt.Sprintf(`# GitHub GraphQL API Schema
# Connection successful! Found %d types
#
# Note: This is a minimal schema for Azure API Management testing.
# For the full schema, consider using GraphQL introspection tools or
# GitHub's schema.docs.graphql file from their public repository.

%s`, len(summary.Types), minimalSchema)
	return ConnectedSchemaFile, content
}
