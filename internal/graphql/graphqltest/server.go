// Package graphqltest provides an in-process GraphQL endpoint for tests.
package graphqltest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Request is a decoded request as seen by the mock server.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
	// Raw is the exact request body.
	Raw    []byte      `json:"-"`
	Header http.Header `json:"-"`
}

// Reply describes what the server sends back for a request.
type Reply struct {
	Status int
	// Body is written verbatim when set; otherwise Data/Errors are encoded.
	Body   []byte
	Data   any
	Errors []map[string]any
}

// Handler produces the reply for one request.
type Handler func(req Request) Reply

type Server struct {
	t *testing.T

	mu       sync.Mutex
	handler  Handler
	requests []Request

	*httptest.Server
}

// RunServer starts a mock server that answers every request with handler.
// It is closed automatically when the test finishes.
func RunServer(t *testing.T, handler Handler) *Server {
	s := &Server{t: t, handler: handler}
	s.Server = httptest.NewServer(s)
	t.Cleanup(s.Close)
	return s
}

// Data returns a handler that always answers with the given data payload.
func Data(data any) Handler {
	return func(Request) Reply {
		return Reply{Data: data}
	}
}

// Raw returns a handler that always answers with a fixed status and body.
func Raw(status int, body string) Handler {
	return func(Request) Reply {
		return Reply{Status: status, Body: []byte(body)}
	}
}

// Requests returns all requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	dec := json.NewDecoder(r.Body)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		s.t.Logf("Failed to decode request: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		s.t.Logf("Failed to decode request: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	req.Raw = raw
	req.Header = r.Header.Clone()

	s.mu.Lock()
	s.requests = append(s.requests, req)
	handler := s.handler
	s.mu.Unlock()

	reply := handler(req)
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	if reply.Body != nil {
		w.WriteHeader(status)
		_, _ = w.Write(reply.Body)
		return
	}

	body := map[string]any{"data": reply.Data}
	if len(reply.Errors) > 0 {
		body["errors"] = reply.Errors
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.t.Logf("Failed to encode response: %v", err)
	}
}
