package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/fabriq-labs/gqlprobe/internal/utils/logutils"
	"github.com/sirupsen/logrus"
)

// DefaultEndpoint is used when a Config doesn't name an endpoint.
const DefaultEndpoint = "https://api.github.com/graphql"

// DefaultTimeout bounds a single Execute call unless Config.Timeout is set.
const DefaultTimeout = 30 * time.Second

// Config holds the connection parameters for one GraphQL endpoint.
type Config struct {
	Endpoint string
	Token    string
	// Headers are sent with every request in addition to the standard ones,
	// e.g. an API Management subscription key.
	Headers map[string]string
	Timeout time.Duration
	// HTTPClient overrides the transport. If nil, a client without its own
	// timeout is used (the request context carries the deadline).
	HTTPClient *http.Client
}

// Client executes GraphQL queries against a single endpoint.
// It holds no mutable state and may be shared between goroutines.
type Client struct {
	endpoint   string
	token      string
	headers    map[string]string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, configErrorf("no bearer token provided (do you need to configure one?)")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if err := ValidateEndpoint(endpoint); err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		switch http.CanonicalHeaderKey(k) {
		case "Authorization", "Content-Type":
			return nil, configErrorf("header %q cannot be overridden", k)
		}
		headers[k] = v
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		endpoint:   endpoint,
		token:      cfg.Token,
		headers:    headers,
		timeout:    timeout,
		httpClient: httpClient,
	}, nil
}

// ValidateEndpoint returns a *ConfigurationError unless endpoint is an
// absolute http(s) URL with a host.
func ValidateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return configErrorf("endpoint %q is not a valid URL: %v", endpoint, err)
	}
	if !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return configErrorf("endpoint %q is not an absolute http(s) URL", endpoint)
	}
	return nil
}

// Endpoint returns the URL queries are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Execute sends one query and returns its data. Every failure is reported as
// one of the taxonomy errors in this package (see KindOf); a response whose
// body contains a non-empty "errors" array is a *GraphQLError regardless of
// the HTTP status.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) (_ *Response, reterr error) {
	if strings.TrimSpace(query) == "" {
		return nil, configErrorf("query must not be empty")
	}
	body, err := json.Marshal(Request{Query: query, Variables: variables})
	if err != nil {
		return nil, configErrorf("variables cannot be encoded as JSON: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Endpoint: c.endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	log := logrus.WithFields(logrus.Fields{
		"endpoint":  c.endpoint,
		"variables": logutils.Format("%#+v", variables),
	})
	log.WithField("headers", logutils.RedactHeaders(req.Header)).Debug("executing GraphQL query...")
	startTime := time.Now()
	defer func() {
		log := log.WithField("elapsed", time.Since(startTime))
		if reterr != nil {
			log.WithError(reterr).Debug("GraphQL query failed")
		} else {
			log.Debug("GraphQL query succeeded")
		}
	}()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: c.endpoint, Err: err}
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: c.endpoint, Err: errors.Wrap(err, "failed to read response body")}
	}
	log.WithField("status", res.StatusCode).Debug("GraphQL endpoint responded")

	if res.StatusCode >= http.StatusBadRequest {
		return nil, &HTTPError{StatusCode: res.StatusCode, Status: res.Status, Body: resBody}
	}

	var env envelope
	if err := json.Unmarshal(resBody, &env); err != nil {
		return nil, &MalformedResponseError{Body: resBody, Err: err}
	}
	data := env.Data
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		data = nil
	}
	if len(env.Errors) > 0 {
		return nil, &GraphQLError{Errors: env.Errors, Data: data}
	}
	return &Response{StatusCode: res.StatusCode, Data: data}, nil
}
