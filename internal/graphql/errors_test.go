package graphql

import (
	"fmt"
	"net/http"
	"testing"

	"emperror.dev/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("boom")
	for _, tt := range []struct {
		Err       error
		Kind      Kind
		Retryable bool
	}{
		{nil, KindUnknown, false},
		{cause, KindUnknown, false},
		{&ConfigurationError{Reason: "x"}, KindConfiguration, false},
		{&AuthenticationError{Scope: "s", Err: cause}, KindAuthentication, true},
		{&TransportError{Endpoint: "e", Err: cause}, KindTransport, true},
		{&HTTPError{StatusCode: http.StatusForbidden}, KindHTTP, false},
		{&HTTPError{StatusCode: http.StatusServiceUnavailable}, KindHTTP, true},
		{&MalformedResponseError{Err: cause}, KindMalformedResponse, false},
		{&GraphQLError{Errors: []ErrorDetail{{Message: "m"}}}, KindGraphQL, false},
		// Wrapping must not hide the kind.
		{errors.Wrap(&TransportError{Endpoint: "e", Err: cause}, "fetching viewer"), KindTransport, true},
		{fmt.Errorf("outer: %w", &HTTPError{StatusCode: http.StatusTooManyRequests}), KindHTTP, true},
	} {
		name := fmt.Sprintf("%v", tt.Err)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.Kind, KindOf(tt.Err))
			assert.Equal(t, tt.Retryable, IsRetryable(tt.Err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	assert.Equal(t,
		`failed to acquire access token for scope "api://x/.default": dial tcp: connection refused`,
		(&AuthenticationError{Scope: "api://x/.default", Err: cause}).Error(),
	)
	assert.Equal(t,
		"GraphQL request to https://api.example.com/graphql failed: dial tcp: connection refused",
		(&TransportError{Endpoint: "https://api.example.com/graphql", Err: cause}).Error(),
	)
	assert.Equal(t, "GraphQL endpoint returned HTTP 404 Not Found", (&HTTPError{StatusCode: 404}).Error())
	assert.Equal(t, "GraphQL error: a", (&GraphQLError{Errors: []ErrorDetail{{Message: "a"}}}).Error())
	assert.Equal(t, "2 GraphQL errors: a; b", (&GraphQLError{Errors: []ErrorDetail{{Message: "a"}, {Message: "b"}}}).Error())
	assert.True(t, errors.Is(&TransportError{Err: cause}, cause))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "graphql", KindGraphQL.String())
	assert.Equal(t, "malformed response", KindMalformedResponse.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
