package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/fabriq-labs/gqlprobe/internal/graphql/graphqltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, endpoint string, headers map[string]string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		Endpoint: endpoint,
		Token:    "abc123",
		Headers:  headers,
	})
	require.NoError(t, err)
	return client
}

func TestExecute_ReturnsData(t *testing.T) {
	server := graphqltest.RunServer(t, graphqltest.Data(map[string]any{
		"viewer": map[string]any{"login": "octocat"},
	}))
	client := newTestClient(t, server.URL, nil)

	res, err := client.Execute(context.Background(), "{ viewer { login } }", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, res.Errors)
	assert.JSONEq(t, `{"viewer":{"login":"octocat"}}`, string(res.Data))

	var data struct {
		Viewer struct {
			Login string `json:"login"`
		} `json:"viewer"`
	}
	require.NoError(t, res.Decode(&data))
	assert.Equal(t, "octocat", data.Viewer.Login)

	m, err := res.Map()
	require.NoError(t, err)
	assert.Equal(t, "octocat", m["viewer"].(map[string]any)["login"])
}

func TestExecute_RequestShape(t *testing.T) {
	server := graphqltest.RunServer(t, graphqltest.Data(map[string]any{}))
	client := newTestClient(t, server.URL, map[string]string{
		"Ocp-Apim-Subscription-Key": "sub-key",
	})

	_, err := client.Execute(context.Background(), "{ a }", nil)
	require.NoError(t, err)
	_, err = client.Execute(context.Background(), "query($n: Int!) { b(n: $n) }", map[string]any{"n": 3})
	require.NoError(t, err)

	reqs := server.Requests()
	require.Len(t, reqs, 2)

	first := reqs[0]
	assert.Equal(t, "Bearer abc123", first.Header.Get("Authorization"))
	assert.Equal(t, "application/json", first.Header.Get("Content-Type"))
	assert.Equal(t, "sub-key", first.Header.Get("Ocp-Apim-Subscription-Key"))
	assert.JSONEq(t, `{"query":"{ a }"}`, string(first.Raw))

	assert.JSONEq(t, `{"query":"query($n: Int!) { b(n: $n) }","variables":{"n":3}}`, string(reqs[1].Raw))
}

func TestExecute_GraphQLErrors(t *testing.T) {
	server := graphqltest.RunServer(t, func(graphqltest.Request) graphqltest.Reply {
		return graphqltest.Reply{
			Data: map[string]any{"viewer": nil},
			Errors: []map[string]any{
				{
					"message":   "Field 'nope' doesn't exist on type 'User'",
					"path":      []any{"query", "viewer", "nope"},
					"locations": []any{map[string]any{"line": 1, "column": 12}},
				},
				{
					"message":    "rate limited",
					"extensions": map[string]any{"code": "RATE_LIMITED"},
				},
			},
		}
	})
	client := newTestClient(t, server.URL, nil)

	res, err := client.Execute(context.Background(), "{ viewer { nope } }", nil)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, KindGraphQL, KindOf(err))

	var gqlErr *GraphQLError
	require.True(t, errors.As(err, &gqlErr))
	require.Len(t, gqlErr.Errors, 2)
	assert.Equal(t, "Field 'nope' doesn't exist on type 'User'", gqlErr.Errors[0].Message)
	assert.Equal(t, []any{"query", "viewer", "nope"}, gqlErr.Errors[0].Path)
	assert.Equal(t, []Location{{Line: 1, Column: 12}}, gqlErr.Errors[0].Locations)
	assert.Equal(t, "rate limited", gqlErr.Errors[1].Message)
	assert.Equal(t, "RATE_LIMITED", gqlErr.Errors[1].Extensions["code"])
	assert.JSONEq(t, `{"viewer":null}`, string(gqlErr.Data))
	assert.False(t, IsRetryable(err))
}

func TestExecute_EmptyErrorsArrayIsSuccess(t *testing.T) {
	server := graphqltest.RunServer(t, graphqltest.Raw(http.StatusOK, `{"data":{"ok":true},"errors":[]}`))
	client := newTestClient(t, server.URL, nil)

	res, err := client.Execute(context.Background(), "{ ok }", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(res.Data))
}

func TestExecute_NullData(t *testing.T) {
	server := graphqltest.RunServer(t, graphqltest.Raw(http.StatusOK, `{"data":null}`))
	client := newTestClient(t, server.URL, nil)

	res, err := client.Execute(context.Background(), "{ ok }", nil)
	require.NoError(t, err)
	assert.Nil(t, res.Data)
	m, err := res.Map()
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Error(t, res.Decode(&struct{}{}))
}

func TestExecute_HTTPError(t *testing.T) {
	for _, tt := range []struct {
		Name      string
		Status    int
		Retryable bool
	}{
		{"not found", http.StatusNotFound, false},
		{"unauthorized", http.StatusUnauthorized, false},
		{"too many requests", http.StatusTooManyRequests, true},
		{"bad gateway", http.StatusBadGateway, true},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			// The body is valid GraphQL JSON but must not be interpreted.
			server := graphqltest.RunServer(t, graphqltest.Raw(tt.Status, `{"errors":[{"message":"boom"}]}`))
			client := newTestClient(t, server.URL, nil)

			res, err := client.Execute(context.Background(), "{ viewer { login } }", nil)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, KindHTTP, KindOf(err))

			var httpErr *HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.Status, httpErr.StatusCode)
			assert.Equal(t, `{"errors":[{"message":"boom"}]}`, string(httpErr.Body))
			assert.Equal(t, tt.Retryable, IsRetryable(err))
		})
	}
}

func TestExecute_MalformedResponse(t *testing.T) {
	server := graphqltest.RunServer(t, graphqltest.Raw(http.StatusOK, `<html>gateway</html>`))
	client := newTestClient(t, server.URL, nil)

	res, err := client.Execute(context.Background(), "{ a }", nil)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, KindMalformedResponse, KindOf(err))

	var malformed *MalformedResponseError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "<html>gateway</html>", string(malformed.Body))
}

func TestExecute_Timeout(t *testing.T) {
	server := graphqltest.RunServer(t, func(graphqltest.Request) graphqltest.Reply {
		time.Sleep(300 * time.Millisecond)
		return graphqltest.Reply{Data: map[string]any{"late": true}}
	})
	client, err := NewClient(Config{
		Endpoint: server.URL,
		Token:    "abc123",
		Timeout:  20 * time.Millisecond,
	})
	require.NoError(t, err)

	res, err := client.Execute(context.Background(), "{ late }", nil)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.True(t, IsRetryable(err))
}

func TestExecute_ConnectionRefused(t *testing.T) {
	server := graphqltest.RunServer(t, graphqltest.Data(nil))
	endpoint := server.URL
	server.Close()

	client := newTestClient(t, endpoint, nil)
	res, err := client.Execute(context.Background(), "{ a }", nil)
	require.Error(t, err)
	assert.Nil(t, res)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, endpoint, transportErr.Endpoint)
	assert.NotNil(t, transportErr.Err)
}

func TestExecute_EmptyQuery(t *testing.T) {
	server := graphqltest.RunServer(t, graphqltest.Data(nil))
	client := newTestClient(t, server.URL, nil)

	_, err := client.Execute(context.Background(), "  \n", nil)
	assert.Equal(t, KindConfiguration, KindOf(err))
	assert.Empty(t, server.Requests())
}

func TestNewClient(t *testing.T) {
	for _, tt := range []struct {
		Name    string
		Config  Config
		WantErr bool
	}{
		{"empty token", Config{Endpoint: "https://api.example.com/graphql"}, true},
		{"blank token", Config{Endpoint: "https://api.example.com/graphql", Token: "  "}, true},
		{"relative endpoint", Config{Endpoint: "/graphql", Token: "t"}, true},
		{"no scheme", Config{Endpoint: "api.example.com/graphql", Token: "t"}, true},
		{"unsupported scheme", Config{Endpoint: "ftp://api.example.com/graphql", Token: "t"}, true},
		{"unparseable endpoint", Config{Endpoint: "http://[::1", Token: "t"}, true},
		{"authorization override", Config{Token: "t", Headers: map[string]string{"authorization": "x"}}, true},
		{"default endpoint", Config{Token: "t"}, false},
		{"fabric endpoint", Config{
			Endpoint: "https://0000.zcb.graphql.fabric.microsoft.com/v1/workspaces/w/graphqlapis/a/graphql",
			Token:    "t",
		}, false},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			client, err := NewClient(tt.Config)
			if tt.WantErr {
				require.Error(t, err)
				assert.Nil(t, client)
				assert.Equal(t, KindConfiguration, KindOf(err))
				assert.False(t, IsRetryable(err))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, client.Endpoint())
		})
	}

	client, err := NewClient(Config{Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, client.Endpoint())
	assert.Equal(t, DefaultTimeout, client.timeout)
}

func TestValidateEndpoint(t *testing.T) {
	assert.NoError(t, ValidateEndpoint("https://api.github.com/graphql"))
	assert.NoError(t, ValidateEndpoint("http://127.0.0.1:8080/graphql"))
	for _, endpoint := range []string{"", "not a url", "api.github.com/graphql", "ftp://example.net", "https://"} {
		assert.Equal(t, KindConfiguration, KindOf(ValidateEndpoint(endpoint)), "ValidateEndpoint(%q)", endpoint)
	}
}

func TestNewClient_CopiesHeaders(t *testing.T) {
	headers := map[string]string{"X-Test": "1"}
	client, err := NewClient(Config{Token: "t", Headers: headers})
	require.NoError(t, err)
	headers["X-Test"] = "2"
	assert.Equal(t, "1", client.headers["X-Test"])
}

func TestRequest_RoundTrip(t *testing.T) {
	for _, req := range []Request{
		{Query: "{ viewer { login } }"},
		{
			Query: "query($owner: String!, $name: String!) { repository(owner: $owner, name: $name) { name } }",
			Variables: map[string]any{
				"owner":  "octocat",
				"name":   "Hello-World",
				"nested": map[string]any{"flag": true, "n": float64(10)},
				"list":   []any{"a", "b"},
			},
		},
	} {
		bs, err := json.Marshal(req)
		require.NoError(t, err)

		var got Request
		require.NoError(t, json.Unmarshal(bs, &got))
		assert.Equal(t, req, got)
	}
}

func TestRequest_OmitsEmptyVariables(t *testing.T) {
	bs, err := json.Marshal(Request{Query: "{ a }", Variables: map[string]any{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"{ a }"}`, string(bs))
}
