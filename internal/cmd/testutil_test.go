package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/arabah/arabah-cli/internal/iocontext"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// routeHandler serves canned responses per "METHOD /path" and records every
// request it sees.
type routeHandler struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []recordedRequest
}

func newRouteHandler() *routeHandler {
	return &routeHandler{routes: make(map[string]http.HandlerFunc)}
}

// On registers handler for method and a path relative to the API base.
func (h *routeHandler) On(method, path string, handler http.HandlerFunc) *routeHandler {
	h.routes[method+" "+apiPrefix+strings.TrimPrefix(path, "/")] = handler
	return h
}

func (h *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	h.mu.Lock()
	h.requests = append(h.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	handler, ok := h.routes[r.Method+" "+r.URL.Path]
	h.mu.Unlock()

	if !ok {
		http.Error(w, `{"message":"no route"}`, http.StatusNotFound)
		return
	}
	handler(w, r)
}

func (h *routeHandler) Requests() []recordedRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]recordedRequest(nil), h.requests...)
}

func (h *routeHandler) Count(method, path string) int {
	n := 0
	for _, r := range h.Requests() {
		if r.Method == method && r.Path == apiPrefix+strings.TrimPrefix(path, "/") {
			n++
		}
	}
	return n
}

const apiPrefix = "/api/v1/"

// envelope wraps body the way the server does.
func envelope(body any) map[string]any {
	return map[string]any{"success": true, "code": 200, "message": "ok", "body": body}
}

func jsonResponse(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func okResponse(body any) http.HandlerFunc {
	return jsonResponse(http.StatusOK, envelope(body))
}

type testEnv struct {
	server  *httptest.Server
	handler *routeHandler
}

// setupTestEnv points the CLI at an httptest server with a signed-in,
// in-memory session and a private file cache.
func setupTestEnv(t *testing.T, handler *routeHandler) *testEnv {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("ARABAH_BASE_URL", server.URL+apiPrefix)
	t.Setenv("ARABAH_CONFIG", filepath.Join(t.TempDir(), "config.toml"))
	t.Setenv("ARABAH_CACHE_DIR", t.TempDir())
	t.Setenv("ARABAH_CACHE_BACKEND", "file")
	t.Setenv("ARABAH_REDIS_URL", "")
	t.Setenv("ARABAH_LANGUAGE", "")
	t.Setenv("ARABAH_SECRET_KEY", "")
	t.Setenv("ARABAH_PUBLISH_KEY", "")
	t.Setenv("ARABAH_KEYRING_BACKEND", "")
	t.Setenv("ARABAH_OUTPUT", "")
	t.Setenv("ARABAH_NO_CACHE", "")
	t.Setenv("LANG", "en_US.UTF-8")
	t.Setenv(envAllowPrivate, "1")
	t.Setenv(envNoKeychain, "1")
	t.Setenv(envToken, "test-token")

	return &testEnv{server: server, handler: handler}
}

// signOut starts the next commands without a stored token.
func signOut(t *testing.T) {
	t.Helper()
	t.Setenv(envToken, "")
}

type cliResult struct {
	Stdout string
	Stderr string
	Err    error
}

func (r cliResult) ExitCode() int {
	return ExitCode(r.Err)
}

type runOptions struct {
	stdin       string
	interactive bool
}

func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	return runCLIWith(t, runOptions{}, args...)
}

func runCLIWith(t *testing.T, opts runOptions, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	interactive := opts.interactive
	ctx := iocontext.WithIO(context.Background(), &iocontext.IO{
		Out:         &stdout,
		ErrOut:      &stderr,
		In:          strings.NewReader(opts.stdin),
		Interactive: &interactive,
	})
	err := Execute(ctx, args)
	return cliResult{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

func decodeBody(t *testing.T, r recordedRequest) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(r.Body, &m); err != nil {
		t.Fatalf("request body %q is not JSON: %v", r.Body, err)
	}
	return m
}
