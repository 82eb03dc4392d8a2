package graphql

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"emperror.dev/errors"
)

// Kind identifies which class of failure an error belongs to.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindAuthentication
	KindTransport
	KindHTTP
	KindMalformedResponse
	KindGraphQL
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindAuthentication:
		return "authentication"
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	case KindMalformedResponse:
		return "malformed response"
	case KindGraphQL:
		return "graphql"
	default:
		return "unknown"
	}
}

type kinded interface {
	error
	Kind() Kind
}

// KindOf returns the Kind of the most specific taxonomy error in err's chain,
// or KindUnknown if err doesn't carry one.
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

// IsRetryable reports whether a caller could reasonably retry the operation
// that produced err. The client itself never retries.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindAuthentication, KindTransport:
		return true
	case KindHTTP:
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			return httpErr.StatusCode == http.StatusTooManyRequests ||
				httpErr.StatusCode >= http.StatusInternalServerError
		}
	}
	return false
}

// ConfigurationError is returned when the client (or a query) is set up
// incorrectly. It is never retryable.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid GraphQL client configuration: " + e.Reason
}

func (e *ConfigurationError) Kind() Kind { return KindConfiguration }

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// AuthenticationError is returned by credential providers when a token for
// the given scope could not be acquired.
type AuthenticationError struct {
	Scope string
	Err   error
}

func (e *AuthenticationError) Error() string {
	if e.Scope == "" {
		return fmt.Sprintf("failed to acquire access token: %v", e.Err)
	}
	return fmt.Sprintf("failed to acquire access token for scope %q: %v", e.Scope, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

func (e *AuthenticationError) Kind() Kind { return KindAuthentication }

// TransportError means the request never produced an HTTP response
// (connection refused, DNS failure, timeout, cancellation).
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("GraphQL request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Kind() Kind { return KindTransport }

// HTTPError is returned for responses with a status code of 400 or above.
// Body holds the raw response body; it is not parsed.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *HTTPError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return "GraphQL endpoint returned HTTP " + status
}

func (e *HTTPError) Kind() Kind { return KindHTTP }

// MalformedResponseError means the endpoint answered with a successful
// status but the body was not a JSON document.
type MalformedResponseError struct {
	Body []byte
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("failed to decode GraphQL response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Kind() Kind { return KindMalformedResponse }

// GraphQLError carries the in-band errors returned by the server. It is
// returned even if the HTTP status was successful and data was present.
type GraphQLError struct {
	Errors []ErrorDetail
	// Data is whatever partial data accompanied the errors, if any.
	Data json.RawMessage
}

func (e *GraphQLError) Error() string {
	if len(e.Errors) == 1 {
		return "GraphQL error: " + e.Errors[0].Message
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, detail := range e.Errors {
		msgs = append(msgs, detail.Message)
	}
	return fmt.Sprintf("%d GraphQL errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

func (e *GraphQLError) Kind() Kind { return KindGraphQL }
