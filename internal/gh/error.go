package gh

import (
	"net/http"

	"emperror.dev/errors"
	"github.com/fabriq-labs/gqlprobe/internal/graphql"
)

var ErrNotFound = errors.Sentinel("not found on GitHub")

// IsHTTPUnauthorized returns true if the given error is an HTTP 401 Unauthorized error.
func IsHTTPUnauthorized(err error) bool {
	var httpErr *graphql.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized
}

// isNotFound reports whether every GraphQL error in err is a NOT_FOUND
// resolution failure, which GitHub returns alongside a null object.
func isNotFound(err error) bool {
	var gqlErr *graphql.GraphQLError
	if !errors.As(err, &gqlErr) || len(gqlErr.Errors) == 0 {
		return false
	}
	for _, detail := range gqlErr.Errors {
		code, _ := detail.Extensions["code"].(string)
		if detail.Type != "NOT_FOUND" && code != "NOT_FOUND" {
			return false
		}
	}
	return true
}
