package graphql

import (
	"encoding/json"

	"emperror.dev/errors"
)

// IntrospectionQuery asks for the root operation types and a flat list of
// every type in the schema.
const IntrospectionQuery = `query {
	__schema {
		queryType { name }
		mutationType { name }
		subscriptionType { name }
		types {
			name
			kind
			description
		}
	}
}`

// Request is the body of a single GraphQL-over-HTTP POST.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Response is the result of a successful Execute call.
type Response struct {
	StatusCode int
	// Data is the raw "data" member of the response body. It is nil if the
	// server omitted it or returned null.
	Data json.RawMessage
	// Errors is always empty for a Response returned by Execute; responses
	// that carry errors are reported as *GraphQLError instead.
	Errors []ErrorDetail
}

// Decode unmarshals the response data into v.
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return errors.New("GraphQL response has no data")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return errors.Wrap(err, "failed to decode GraphQL response data")
	}
	return nil
}

// Map returns the response data as a generic JSON object.
// It returns nil (and no error) when the data is null.
func (r *Response) Map() (map[string]any, error) {
	var m map[string]any
	if len(r.Data) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(r.Data, &m); err != nil {
		return nil, errors.Wrap(err, "failed to decode GraphQL response data")
	}
	return m, nil
}

// ErrorDetail is one entry of the "errors" array of a GraphQL response.
type ErrorDetail struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Locations  []Location     `json:"locations,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
	// Type is a non-standard classification some servers (GitHub) put at
	// the top level, e.g. "NOT_FOUND".
	Type string `json:"type,omitempty"`
}

type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// envelope is the wire shape of a response body.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []ErrorDetail   `json:"errors"`
}
