// Package testutil provides a fake case-management backend for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// Request is a request recorded by Backend.
type Request struct {
	Endpoint string
	Query    url.Values
	Header   http.Header
}

// Response is a canned reply for one endpoint.
type Response struct {
	Status int
	Body   string
}

// Backend is an httptest server that answers GETs with canned bodies and
// records every request it sees.
type Backend struct {
	Server *httptest.Server

	mu        sync.Mutex
	responses map[string]Response
	requests  []Request
}

// NewBackend starts a Backend that is closed when the test ends.
// Endpoints without a canned response return {"data": []}.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{responses: make(map[string]Response)}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.Trim(r.URL.Path, "/")

	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Endpoint: endpoint,
		Query:    r.URL.Query(),
		Header:   r.Header.Clone(),
	})
	resp, ok := b.responses[endpoint]
	b.mu.Unlock()

	if !ok {
		resp = Response{Status: http.StatusOK, Body: `{"data": []}`}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_, _ = w.Write([]byte(resp.Body))
}

// URL returns the base URL of the backend.
func (b *Backend) URL() string {
	return b.Server.URL
}

// SetData makes endpoint answer 200 with {"data": data}.
func (b *Backend) SetData(t *testing.T, endpoint string, data interface{}) {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"data": data})
	require.NoError(t, err)
	b.SetResponse(endpoint, http.StatusOK, string(body))
}

// SetRawData makes endpoint answer 200 with {"data": <raw>}.
func (b *Backend) SetRawData(endpoint, raw string) {
	b.SetResponse(endpoint, http.StatusOK, `{"data": `+raw+`}`)
}

// SetResponse sets a canned status and body for endpoint.
func (b *Backend) SetResponse(endpoint string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[strings.Trim(endpoint, "/")] = Response{Status: status, Body: body}
}

// Requests returns every recorded request in arrival order.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// RequestsFor returns the recorded requests for endpoint.
func (b *Backend) RequestsFor(endpoint string) []Request {
	endpoint = strings.Trim(endpoint, "/")
	var out []Request
	for _, r := range b.Requests() {
		if r.Endpoint == endpoint {
			out = append(out, r)
		}
	}
	return out
}

// Count returns how many requests hit endpoint.
func (b *Backend) Count(endpoint string) int {
	return len(b.RequestsFor(endpoint))
}

// Reset forgets recorded requests. Canned responses are kept.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
